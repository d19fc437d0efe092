// Package dictionary looks up words on Cambridge Dictionary and extracts
// pronunciation audio, a definition and example sentences from the page.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the dictionary site all lookups go to.
	DefaultBaseURL = "https://dictionary.cambridge.org"

	// The site blocks default Go user agents, so requests identify as a
	// desktop browser.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"

	requestTimeout = 5 * time.Second

	// NoDefinition is the definition recorded when the page has none.
	NoDefinition = "No definition found."

	audioSelector   = `source[type="audio/mpeg"]`
	exampleSelector = "div.examp.dexamp"
	maxExamples     = 3
)

// ErrUnsupportedLanguage is returned when the requested language has no
// locale entry.
var ErrUnsupportedLanguage = errors.New("unsupported dictionary language")

// Entry is the result of one lookup. AudioURL is empty when the page
// carries no pronunciation audio. Definition is never empty: it falls back
// to NoDefinition. Examples holds at most three sentences and is never nil.
type Entry struct {
	AudioURL   string
	Definition string
	Examples   []string
}

// statusError reports a dictionary page response with a non-200 status.
type statusError int

func (e statusError) Error() string {
	return fmt.Sprintf("dictionary returned status %d", int(e))
}

// Client fetches and parses dictionary pages. A circuit breaker guards the
// site: repeated connection failures stop further requests for a while
// instead of hammering an unreachable host.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a dictionary client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "dictionary",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// Non-200 pages are per-word conditions, not a sign the
				// site is down. Only connection-level failures trip the
				// breaker.
				var se statusError
				return err == nil || errors.As(err, &se)
			},
		}),
		logger: logger,
	}
}

// Lookup fetches the page for word in the given language and extracts a
// pronunciation audio URL, a definition and up to three example sentences.
// A page without audio or definition is not an error: the entry comes back
// with an empty AudioURL and the NoDefinition placeholder. Spaces in the
// word become hyphens, matching the site's URL scheme.
func (c *Client) Lookup(ctx context.Context, word, language string) (*Entry, error) {
	loc, ok := locales[language]
	if !ok {
		c.logger.Error("language is not supported",
			zap.String("language", language))
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	pageURL := fmt.Sprintf("%s/dictionary/%s/%s",
		c.baseURL, loc.path, strings.ReplaceAll(word, " ", "-"))

	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		c.logger.Error("failed to fetch dictionary page",
			zap.String("url", pageURL),
			zap.String("word", word),
			zap.Error(err))
		return nil, fmt.Errorf("failed to fetch dictionary page: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dictionary page: %w", err)
	}

	return c.extract(doc, loc), nil
}

func (c *Client) fetch(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", browserUserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, statusError(resp.StatusCode)
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(io.ReadCloser), nil
}

func (c *Client) extract(doc *goquery.Document, loc locale) *Entry {
	entry := &Entry{
		Definition: NoDefinition,
		Examples:   []string{},
	}

	if src, ok := doc.Find(audioSelector).First().Attr("src"); ok && src != "" {
		entry.AudioURL = c.resolveURL(src)
	}

	if def := doc.Find(loc.defSelector).First(); def.Length() > 0 {
		// Definitions end in a colon on the page; drop it along with the
		// surrounding whitespace.
		entry.Definition = strings.TrimSuffix(strings.TrimSpace(def.Text()), ":")
	}

	doc.Find(exampleSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxExamples {
			return false
		}
		entry.Examples = append(entry.Examples, strings.TrimSpace(s.Text()))
		return true
	})

	return entry
}

// resolveURL makes a page-relative audio source absolute against the
// client's base URL. Already-absolute sources pass through unchanged.
func (c *Client) resolveURL(src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	if ref.IsAbs() {
		return src
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
