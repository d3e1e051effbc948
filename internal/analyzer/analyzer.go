package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"

	"github.com/PuerkitoBio/goquery"

	"html-analyzer/internal/dictionary"
)

// Analyzer runs the full pipeline for one URL at a time. It holds no
// per-page state and may be shared between goroutines.
type Analyzer struct {
	logger   *slog.Logger
	fetcher  *Fetcher
	parse    Parser
	detector *LoginDetector
}

type Option func(*Analyzer)

// WithHTTPClient replaces the client used to fetch pages.
func WithHTTPClient(client Doer) Option {
	return func(a *Analyzer) {
		a.fetcher = NewFetcherWithClient(a.logger, client)
	}
}

// WithParser replaces the markup parser.
func WithParser(p Parser) Option {
	return func(a *Analyzer) {
		a.parse = p
	}
}

func New(logger *slog.Logger, store dictionary.Store, opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:   logger,
		fetcher:  NewFetcher(logger),
		parse:    parseDocument,
		detector: NewLoginDetector(store),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzePage fetches pageURL and reports on it. Failures are described by
// the result, never returned as errors.
func (a *Analyzer) AnalyzePage(ctx context.Context, pageURL string) *AnalysisResult {
	logger := a.logger.With(slog.String("Analyzing page url", pageURL))
	logger.DebugContext(ctx, "Starting page analysis")

	result := &AnalysisResult{
		URL:      pageURL,
		Headings: make(map[string]int),
	}

	// --- 1. Validate URL ---
	baseURL, err := parsePageURL(pageURL)
	if err != nil {
		logger.WarnContext(ctx, "The url is not valid", slog.Any("error", err))
		result.fail(KindURLNotValid)
		return result
	}

	// --- 2. Load Web Page ---
	body, err := a.fetcher.Fetch(ctx, baseURL.String())
	if err != nil {
		kind := fetchFailureKind(err)
		logger.WarnContext(ctx, "Failed to load web page", slog.String("failure", kind.String()), slog.Any("error", err))
		result.fail(kind)
		return result
	}

	// --- 3. Parse ---
	doc, err := a.parse(body)
	if err != nil {
		logger.WarnContext(ctx, "Failed to parse HTML document", slog.Any("error", err))
		result.fail(KindHTMLNotValid)
		return result
	}
	logger.DebugContext(ctx, "Html has been parsed")

	// --- 4. Run All Analyses ---
	if err := a.runAnalyses(ctx, logger, doc, baseURL.Hostname(), result); err != nil {
		var dictErr *DictionaryError
		if errors.As(err, &dictErr) {
			logger.WarnContext(ctx, "Login detection failed", slog.Any("error", err))
			result.fail(KindLoginDetectionFailed)
		} else {
			logger.WarnContext(ctx, "Html cannot be analyzed", slog.Any("error", err))
			result.fail(KindHTMLNotValid)
		}
		return result
	}

	result.succeed()

	// --- 5. Final Summary Log ---
	logger.InfoContext(ctx, "Page analysis complete",
		slog.Group("results",
			slog.String("document_type", result.DocumentType),
			slog.String("title", result.Title),
			slog.Any("headings", result.Headings),
			slog.Int("internal_links", result.Links.Internal),
			slog.Int("external_links", result.Links.External),
			slog.Bool("has_login_form", result.HasLoginForm),
		),
	)

	return result
}

// runAnalyses fills result step by step so that a failing step leaves the
// earlier fields in place.
func (a *Analyzer) runAnalyses(ctx context.Context, logger *slog.Logger, doc *goquery.Document, host string, result *AnalysisResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Analysis panicked", slog.Any("panic", r), slog.String("trace", string(debug.Stack())))
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()

	// Document Type
	docType, found, err := findDocumentType(ctx, logger, doc)
	if err != nil {
		return err
	}
	if found {
		result.DocumentType = docType
	}

	// Title
	result.Title = extractTitle(doc)

	// Heading Counts
	result.Headings = countHeadings(ctx, logger, doc)

	// Link Classification
	result.Links = sumLinks(ctx, logger, doc, host)

	// Login Form Detection
	hasLogin, err := a.detector.HasLoginForm(ctx, logger, doc)
	if err != nil {
		return err
	}
	result.HasLoginForm = hasLogin

	return nil
}

func parsePageURL(pageURL string) (*url.URL, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

// fetchFailureKind maps fetch errors onto the failure kinds reported to
// callers. Non-HTML content is reported as an invalid URL.
func fetchFailureKind(err error) Kind {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return KindURLNotValid
	}
	switch fetchErr.Kind {
	case FetchURLNotFound:
		return KindURLNotFound
	case FetchNotHTML:
		return KindURLNotValid
	case FetchNotReadable:
		return KindURLNotValid
	default:
		return KindURLNotValid
	}
}
