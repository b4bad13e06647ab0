package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

func TestNew(t *testing.T) {
	info := New(nil).Info()
	if info.ID != "groq/"+DefaultModel || info.Name != "Groq" || !info.Stream {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestInvoke(t *testing.T) {
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gsk-test" {
			t.Errorf("missing api key, got %q", r.Header.Get("Authorization"))
		}
		var body struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		model = body.Model
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"g1","object":"chat.completion","created":1,"model":"x",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"fast"}}]}`)
	}))
	defer srv.Close()

	p := New(&Config{APIKey: "gsk-test", BaseURL: srv.URL, Model: "mixtral-8x7b-32768"})
	msgs := []message.Message{message.NewMessage(message.RoleUser, "hi")}
	res, err := p.Invoke(context.Background(), msgs, nil, provider.Callbacks{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if res.Text() != "fast" {
		t.Errorf("unexpected text %q", res.Text())
	}
	if model != "mixtral-8x7b-32768" {
		t.Errorf("unexpected model %q", model)
	}
}
