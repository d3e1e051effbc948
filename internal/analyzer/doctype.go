package analyzer

import (
	"regexp"
	"strings"
)

// Document type labels. Versioned types are reported as "<label> <version>".
const (
	DocTypeHTML5   = "HTML5"
	DocTypeHTML    = "HTML"
	DocTypeXHTML   = "XHTML"
	DocTypeUnknown = "UNKNOWN"
)

// See https://en.wikipedia.org/wiki/Document_type_declaration.
var (
	html5Pattern     = regexp.MustCompile(`(?i)^<!DOCTYPE html>$`)
	htmlPattern      = regexp.MustCompile(`(?i)<!DOCTYPE html PUBLIC ".+ HTML (.+?)//.+".*>`)
	xhtmlPattern     = regexp.MustCompile(`(?i)<!DOCTYPE html PUBLIC ".+ XHTML (.+?)//.+".*>`)
	whitespaceRunsRe = regexp.MustCompile(`\s{2,}`)
)

// ClassifyDocumentType maps a <!DOCTYPE ...> declaration to a type label such
// as "HTML5", "HTML 4.01" or "XHTML 1.0 Strict".
func ClassifyDocumentType(declaration string) string {
	declaration = normalizeDeclaration(declaration)

	if html5Pattern.MatchString(declaration) {
		return DocTypeHTML5
	}
	if version, ok := matchVersion(declaration, htmlPattern); ok {
		return DocTypeHTML + " " + version
	}
	if version, ok := matchVersion(declaration, xhtmlPattern); ok {
		return DocTypeXHTML + " " + version
	}
	return DocTypeUnknown
}

func matchVersion(declaration string, pattern *regexp.Regexp) (string, bool) {
	m := pattern.FindStringSubmatch(declaration)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// normalizeDeclaration joins a multi-line declaration onto one line and
// squeezes repeated whitespace.
func normalizeDeclaration(declaration string) string {
	declaration = strings.ReplaceAll(declaration, "\n", " ")
	declaration = whitespaceRunsRe.ReplaceAllString(declaration, " ")
	return strings.TrimSpace(declaration)
}
