package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

type chatRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	Stream      bool     `json:"stream"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, handle func(w http.ResponseWriter, req chatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		handle(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func conversation() []message.Message {
	return []message.Message{
		message.NewMessage(message.RoleSystem, "be brief"),
		message.NewMessage(message.RoleUser, "hi"),
		message.NewMessage(message.RoleAssistant, "hello"),
		message.NewMessage(message.RoleUser, "how are you?"),
	}
}

func TestInvokeText(t *testing.T) {
	var got chatRequest
	srv := newServer(t, func(w http.ResponseWriter, req chatRequest) {
		got = req
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"fine, thanks"}}]}`)
	})

	p := New(&Config{APIKey: "test", BaseURL: srv.URL, Temperature: 0.7})
	res, err := p.Invoke(context.Background(), conversation(), provider.Options{provider.OptionCreativity: "0.3"}, provider.Callbacks{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if res.Kind() != provider.KindText || res.Text() != "fine, thanks" {
		t.Errorf("unexpected result %s %q", res.Kind(), res.Text())
	}

	if got.Model != DefaultModel {
		t.Errorf("expected default model, got %q", got.Model)
	}
	if got.Temperature == nil || *got.Temperature != 0.3 {
		t.Errorf("creativity should become the temperature, got %v", got.Temperature)
	}
	roles := make([]string, 0, len(got.Messages))
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
	}
	if strings.Join(roles, ",") != "system,user,assistant,user" {
		t.Errorf("unexpected roles %v", roles)
	}
}

func TestInvokeStream(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, req chatRequest) {
		if !req.Stream {
			t.Error("expected a streaming request")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Hel", "lo", "!"} {
			fmt.Fprintf(w, "data: {\"id\":\"c1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"m\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	p := New(&Config{BaseURL: srv.URL, Model: "m", Stream: true})
	res, err := p.Invoke(context.Background(), conversation(), provider.Options{provider.OptionModel: "other"}, provider.Callbacks{})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if res.Kind() != provider.KindFragments {
		t.Fatalf("expected fragments, got %s", res.Kind())
	}

	var parts []string
	for frag, err := range res.Fragments() {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		parts = append(parts, frag)
	}
	if strings.Join(parts, "|") != "Hel|lo|!" {
		t.Errorf("unexpected fragments %q", parts)
	}
}

func TestInvokeError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ chatRequest) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	})

	p := New(&Config{BaseURL: srv.URL})
	if _, err := p.Invoke(context.Background(), conversation(), nil, provider.Callbacks{}); err == nil {
		t.Fatal("expected an error for a rejected request")
	}
}

func TestInfo(t *testing.T) {
	info := New(&Config{Model: "gpt-4o", Stream: true}).Info()
	if info.ID != "openai/gpt-4o" || info.Name != "OpenAI" || !info.Stream {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Options.Model("") != "gpt-4o" {
		t.Errorf("model should be a provider default option")
	}
	if _, ok := info.Options[provider.OptionTemperature]; ok {
		t.Error("temperature must not shadow preset creativity")
	}
}
