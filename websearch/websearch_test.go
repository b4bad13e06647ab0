package websearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
)

const resultsPage = `<html><body>
<div class="result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fweather.example.com%2Ftoday&rut=abc">Weather today</a></h2>
  <a class="result__snippet">Sunny, 21 degrees.</a>
</div>
<div class="result">
  <h2><a class="result__a" href="https://news.example.com/forecast">Forecast</a></h2>
  <a class="result__snippet">Rain expected tomorrow.</a>
</div>
<div class="result"><h2><a class="result__a" href="https://ignored.example.com"></a></h2></div>
<div class="result">
  <h2><a class="result__a" href="https://third.example.com">Third</a></h2>
</div>
</body></html>`

func TestModeApplies(t *testing.T) {
	tests := []struct {
		mode   Mode
		native bool
		want   bool
	}{
		{ModeOff, false, false},
		{ModeOff, true, false},
		{ModeAuto, false, true},
		{ModeAuto, true, false},
		{ModeAlways, false, true},
		{ModeAlways, true, true},
	}
	for _, tt := range tests {
		if got := tt.mode.Applies(tt.native); got != tt.want {
			t.Errorf("%s.Applies(%v) = %v, want %v", tt.mode, tt.native, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeOff, "off": ModeOff, "AUTO": ModeAuto, " always ": ModeAlways} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("sometimes"); !errors.Is(err, errorspkg.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFormatResults(t *testing.T) {
	if got := FormatResults(nil, "q"); got != "" {
		t.Errorf("no results should format to empty, got %q", got)
	}

	got := FormatResults([]Result{{Title: "A", URL: "https://a", Snippet: "about a"}}, "query")
	for _, want := range []string{BlockStart, BlockEnd, `"query"`, "1. A", "URL: https://a", "about a"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted block missing %q:\n%s", want, got)
		}
	}
	if !strings.HasPrefix(got, "\n\n") {
		t.Error("block should be separated from the query by a blank line")
	}
}

func TestDuckDuckGoSearch(t *testing.T) {
	var gotQuery, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotAgent = r.UserAgent()
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	ddg := NewDuckDuckGo(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithMaxResults(2))
	results, err := ddg.Search(context.Background(), "weather today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "weather today" {
		t.Errorf("query not forwarded, got %q", gotQuery)
	}
	if gotAgent == "" {
		t.Error("user agent not set")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].URL != "https://weather.example.com/today" {
		t.Errorf("redirect link not unwrapped: %q", results[0].URL)
	}
	if results[1].Title != "Forecast" || results[1].Snippet != "Rain expected tomorrow." {
		t.Errorf("unexpected second result %+v", results[1])
	}
}

func TestDuckDuckGoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	text, err := NewDuckDuckGo(WithBaseURL(srv.URL)).Fetch(context.Background(), "weather today")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Weather today") || !strings.Contains(text, "3. Third") {
		t.Errorf("unexpected augmentation text:\n%s", text)
	}
}

func TestDuckDuckGoErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ddg := NewDuckDuckGo(WithBaseURL(srv.URL))
	if _, err := ddg.Search(context.Background(), "x"); !errors.Is(err, errorspkg.ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
	if _, err := ddg.Search(context.Background(), "  "); !errors.Is(err, errorspkg.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
