package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
)

// DefaultDuckDuckGoURL is the HTML endpoint, which needs no API key.
const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo searches the DuckDuckGo HTML front end and scrapes the result list.
type DuckDuckGo struct {
	baseURL    string
	client     *http.Client
	maxResults int
	userAgent  string
}

// DuckDuckGoOption configures a DuckDuckGo fetcher.
type DuckDuckGoOption func(*DuckDuckGo)

// WithBaseURL overrides the search endpoint.
func WithBaseURL(u string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if c != nil {
			d.client = c
		}
	}
}

// WithMaxResults caps the number of results kept.
func WithMaxResults(n int) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if n > 0 {
			d.maxResults = n
		}
	}
}

// NewDuckDuckGo creates a fetcher with a 15 second timeout and five results.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		baseURL:    DefaultDuckDuckGoURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		maxResults: 5,
		userAgent:  "Mozilla/5.0 (compatible; chatroute)",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search returns the parsed result list for query.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query: %w", errorspkg.ErrInvalidInput)
	}

	endpoint, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", query)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d: %w", resp.StatusCode, errorspkg.ErrTransport)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}
		href, _ := link.Attr("href")
		results = append(results, Result{
			Title:   title,
			URL:     resolveLink(href),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
		return len(results) < d.maxResults
	})
	return results, nil
}

// Fetch implements Fetcher.
func (d *DuckDuckGo) Fetch(ctx context.Context, query string) (string, error) {
	results, err := d.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return FormatResults(results, query), nil
}

// resolveLink unwraps DuckDuckGo redirect links of the form //duckduckgo.com/l/?uddg=<target>.
func resolveLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
