package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"html-analyzer/internal/dictionary"
)

const formMethodPost = "POST"

var (
	formSelector  = cascadia.MustCompile("form")
	inputSelector = cascadia.MustCompile("input[type]")
)

// DictionaryError means the login detector could not load a word list and
// therefore could not run.
type DictionaryError struct {
	Name string
	Err  error
}

func (e *DictionaryError) Error() string {
	return fmt.Sprintf("login detection: dictionary %q unavailable: %v", e.Name, e.Err)
}

func (e *DictionaryError) Unwrap() error {
	return e.Err
}

// LoginDetector decides whether a document contains a login form.
type LoginDetector struct {
	store dictionary.Store
}

func NewLoginDetector(store dictionary.Store) *LoginDetector {
	return &LoginDetector{store: store}
}

// HasLoginForm reports whether any form in doc is a login form, either one
// with exactly one password field or a two-step login form. Dictionaries are
// loaded from the store on every call.
func (d *LoginDetector) HasLoginForm(ctx context.Context, logger *slog.Logger, doc *goquery.Document) (bool, error) {
	logger.DebugContext(ctx, "Starting login form detection")

	var (
		found  bool
		detErr error
	)
	doc.FindMatcher(formSelector).EachWithBreak(func(i int, form *goquery.Selection) bool {
		formLogger := logger.With(slog.Int("form_index", i))

		if hasSinglePasswordField(form) {
			formLogger.DebugContext(ctx, "Confirmed as login form: single password field")
			found = true
			return false
		}

		ok, err := d.isTwoStepLogin(ctx, form)
		if err != nil {
			detErr = err
			return false
		}
		if ok {
			formLogger.DebugContext(ctx, "Confirmed as login form: two-step login")
			found = true
			return false
		}
		return true
	})

	if detErr != nil {
		logger.ErrorContext(ctx, "Login form detection failed", slog.Any("error", detErr))
		return false, detErr
	}

	logger.InfoContext(ctx, "Login form detection finished", slog.Bool("login_form_found", found))
	return found, nil
}

// hasSinglePasswordField reports whether form has exactly one password input.
// Two or more usually means a registration form.
func hasSinglePasswordField(form *goquery.Selection) bool {
	return inputsOfType(form, "password").Length() == 1
}

// isTwoStepLogin detects forms that submit only the username, leaving the
// password for a second page: a POST to a login-like action with one text
// field named like a username.
func (d *LoginDetector) isTwoStepLogin(ctx context.Context, form *goquery.Selection) (bool, error) {
	method := strings.TrimSpace(form.AttrOr("method", ""))
	action := strings.TrimSpace(form.AttrOr("action", ""))
	if method == "" || action == "" {
		return false, nil
	}
	if !strings.EqualFold(method, formMethodPost) {
		return false, nil
	}

	actions, err := d.load(ctx, dictionary.LoginAction)
	if err != nil {
		return false, err
	}
	if !existsInDictionary(form.AttrOr("action", ""), actions) {
		return false, nil
	}

	textFields := inputsOfType(form, "text")
	if textFields.Length() != 1 {
		return false, nil
	}

	fieldName := textFields.AttrOr("name", "")
	if strings.TrimSpace(fieldName) == "" {
		fieldName = textFields.AttrOr("id", "")
	}
	if strings.TrimSpace(fieldName) == "" {
		return false, nil
	}

	usernames, err := d.load(ctx, dictionary.Username)
	if err != nil {
		return false, err
	}
	return existsInDictionary(fieldName, usernames), nil
}

func (d *LoginDetector) load(ctx context.Context, name string) (dictionary.Dictionary, error) {
	words, err := d.store.Load(ctx, name)
	if err != nil {
		return nil, &DictionaryError{Name: name, Err: err}
	}
	return words, nil
}

// inputsOfType selects the form's input elements whose type equals typ,
// ignoring case.
func inputsOfType(form *goquery.Selection, typ string) *goquery.Selection {
	return form.FindMatcher(inputSelector).FilterFunction(func(i int, s *goquery.Selection) bool {
		return strings.EqualFold(s.AttrOr("type", ""), typ)
	})
}

// existsInDictionary reports whether text, reduced to lowercase letters and
// spaces, contains any dictionary word.
func existsInDictionary(text string, dict dictionary.Dictionary) bool {
	text = normalizeForLookup(text)
	for _, word := range dict {
		if strings.Contains(text, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

func normalizeForLookup(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c == ' ':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}
