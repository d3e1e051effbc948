package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	headingSelector    = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")
	hypermediaSelector = cascadia.MustCompile("[href], [src]")
	titleSelector      = cascadia.MustCompile("title")
)

// absoluteLinkPattern matches scheme://host/... and //host/..., capturing host.
// The scheme stops at the first "://" so URLs embedded in a query are ignored.
var absoluteLinkPattern = regexp.MustCompile(`^(?:[^/:?#]+://|//)([^/?#]+)(?:[/?#].*)?$`)

// Parser turns fetched markup into a queryable document.
type Parser func(body string) (*goquery.Document, error)

// parseDocument decodes body as UTF-8, replacing invalid bytes with U+FFFD.
func parseDocument(body string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.ToValidUTF8(body, "\uFFFD")))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, nil
}

// findDocumentType classifies the top-level doctype node. The second result
// is false when the document has no doctype.
func findDocumentType(ctx context.Context, logger *slog.Logger, doc *goquery.Document) (string, bool, error) {
	logger.DebugContext(ctx, "Starting to determine document type")

	for _, root := range doc.Nodes {
		for n := root.FirstChild; n != nil; n = n.NextSibling {
			if n.Type != html.DoctypeNode {
				continue
			}

			var buf bytes.Buffer
			if err := html.Render(&buf, n); err != nil {
				return "", false, fmt.Errorf("render doctype: %w", err)
			}
			declaration := buf.String()
			logger.DebugContext(ctx, "Found doctype node", slog.String("declaration", declaration))

			docType := ClassifyDocumentType(declaration)
			logger.InfoContext(ctx, "Successfully determined document type", slog.String("document_type", docType))
			return docType, true, nil
		}
	}

	logger.InfoContext(ctx, "Document has no doctype declaration")
	return "", false, nil
}

// extractTitle returns the text of the first <title>, whitespace collapsed.
func extractTitle(doc *goquery.Document) string {
	title := doc.FindMatcher(titleSelector).First().Text()
	return strings.Join(strings.Fields(title), " ")
}

func countHeadings(ctx context.Context, logger *slog.Logger, doc *goquery.Document) map[string]int {
	logger.DebugContext(ctx, "Starting to count headings")

	headings := make(map[string]int)
	doc.FindMatcher(headingSelector).Each(func(i int, s *goquery.Selection) {
		headings[strings.ToLower(goquery.NodeName(s))]++
	})

	logger.InfoContext(
		ctx,
		"Successfully counted all headings",
		slog.Any("heading_counts", headings),
	)

	return headings
}

// sumLinks counts href/src references as internal or external to host.
func sumLinks(ctx context.Context, logger *slog.Logger, doc *goquery.Document, host string) LinkSums {
	logger.DebugContext(ctx, "Starting to classify links", slog.String("reference_host", host))

	var sums LinkSums
	doc.FindMatcher(hypermediaSelector).Each(func(i int, s *goquery.Selection) {
		link, ok := s.Attr("href")
		if !ok {
			link = s.AttrOr("src", "")
		}

		if isExternalLink(link, host) {
			logger.DebugContext(ctx, "Found external link", slog.String("link", link))
			sums.External++
		} else {
			sums.Internal++
		}
	})

	logger.InfoContext(ctx, "Finished classifying links",
		slog.Int("internal_links_found", sums.Internal),
		slog.Int("external_links_found", sums.External),
	)

	return sums
}

// isExternalLink reports whether link names an authority other than host.
// Relative, empty and malformed links are internal.
func isExternalLink(link, host string) bool {
	m := absoluteLinkPattern.FindStringSubmatch(link)
	return m != nil && m[1] != host
}
