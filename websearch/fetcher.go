package websearch

import (
	"context"
	"fmt"
	"strings"
)

// Delimiters of the results block appended to a query.
const (
	BlockStart = "<web_search_results>"
	BlockEnd   = "</web_search_results>"
)

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Fetcher returns the augmentation text for a query. An empty string means there is
// nothing to append.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, query string) (string, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// FormatResults renders results as a block ready to be appended to the query.
func FormatResults(results []Result, query string) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(BlockStart)
	fmt.Fprintf(&b, "\nSearch results for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(&b, "URL: %s\n", r.URL)
		}
		if r.Snippet != "" {
			b.WriteString(r.Snippet)
			b.WriteString("\n")
		}
	}
	b.WriteString(BlockEnd)
	return b.String()
}
