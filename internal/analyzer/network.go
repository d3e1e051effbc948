package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	maxRedirects = 10
	fetchTimeout = 10 * time.Second
	userAgent    = "Mozilla"
)

// FetchFailure is the reason a page could not be fetched.
type FetchFailure int

const (
	FetchNotReadable FetchFailure = iota
	FetchURLNotFound
	FetchNotHTML
)

func (f FetchFailure) String() string {
	switch f {
	case FetchURLNotFound:
		return "url not found"
	case FetchNotHTML:
		return "not an html document"
	default:
		return "url not readable"
	}
}

type FetchError struct {
	Kind FetchFailure
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher retrieves HTML documents, following redirects itself so that each
// hop is counted and checked.
type Fetcher struct {
	client Doer
	logger *slog.Logger
}

func NewFetcher(logger *slog.Logger) *Fetcher {
	return NewFetcherWithClient(logger, newHTTPClient())
}

func NewFetcherWithClient(logger *slog.Logger, client Doer) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: fetchTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Fetch returns the body of the HTML document at pageURL. Failures are
// always *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	logger := f.logger.With(slog.String("analyzing_page_link", pageURL))
	logger.DebugContext(ctx, "Starting to load web page")

	target, err := url.Parse(pageURL)
	if err != nil {
		return "", &FetchError{Kind: FetchNotReadable, URL: pageURL, Err: err}
	}

	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			logger.WarnContext(ctx, "Redirect limit exceeded", slog.Int("max_redirects", maxRedirects))
			return "", &FetchError{
				Kind: FetchNotReadable,
				URL:  target.String(),
				Err:  fmt.Errorf("stopped after %d redirects", maxRedirects),
			}
		}

		resp, err := f.get(ctx, target.String())
		if err != nil {
			logger.WarnContext(ctx, "Request failed", slog.Int("hop", hops), slog.Any("error", err))
			return "", &FetchError{Kind: FetchNotReadable, URL: target.String(), Err: err}
		}

		switch resp.StatusCode {
		case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther:
			location := resp.Header.Get("Location")
			drain(resp)

			next, err := resolveLocation(target, location)
			if err != nil {
				return "", &FetchError{Kind: FetchNotReadable, URL: target.String(), Err: err}
			}
			logger.DebugContext(ctx, "Following redirect",
				slog.Int("status_code", resp.StatusCode),
				slog.Int("hop", hops+1),
				slog.String("location", next.String()),
			)
			target = next

		case http.StatusOK:
			defer resp.Body.Close()

			contentType := resp.Header.Get("Content-Type")
			if !strings.Contains(strings.ToLower(contentType), "text/html") {
				logger.WarnContext(ctx, "Page is not an html document", slog.String("content_type", contentType))
				return "", &FetchError{
					Kind: FetchNotHTML,
					URL:  target.String(),
					Err:  fmt.Errorf("content type %q", contentType),
				}
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return "", &FetchError{Kind: FetchNotReadable, URL: target.String(), Err: err}
			}

			logger.InfoContext(ctx, "Successfully fetched page",
				slog.Int("status_code", resp.StatusCode),
				slog.Int("redirects", hops),
				slog.Int("bytes", len(body)),
			)
			return string(body), nil

		case http.StatusNotFound:
			drain(resp)
			logger.WarnContext(ctx, "Page not found", slog.Int("status_code", resp.StatusCode))
			return "", &FetchError{Kind: FetchURLNotFound, URL: target.String()}

		default:
			drain(resp)
			logger.WarnContext(ctx, "Unexpected status", slog.Int("status_code", resp.StatusCode))
			return "", &FetchError{
				Kind: FetchNotReadable,
				URL:  target.String(),
				Err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
			}
		}
	}
}

func (f *Fetcher) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return f.client.Do(req)
}

func resolveLocation(current *url.URL, location string) (*url.URL, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("redirect without location")
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect location %q: %w", location, err)
	}
	return current.ResolveReference(ref), nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
