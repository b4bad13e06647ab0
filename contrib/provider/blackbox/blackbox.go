// Package blackbox adapts the Blackbox chat endpoint to provider.Provider. The
// endpoint streams plain text; version tags and source blocks in the output are
// removed by the "Blackbox" normalization rules.
package blackbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sweetpotato0/chatroute/contrib/provider/internal/httpapi"
	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

// Name is the display name; normalization rules are registered under it.
const Name = "Blackbox"

// DefaultURL is the Blackbox chat endpoint.
const DefaultURL = "https://www.blackbox.ai/api/chat"

const readSize = 4096

// Config holds Blackbox provider configuration
type Config struct {
	URL        string
	MaxTokens  int
	WebSearch  bool
	HTTPClient *http.Client
}

// DefaultConfig returns default Blackbox configuration
func DefaultConfig() *Config {
	return &Config{
		URL:       DefaultURL,
		MaxTokens: 1024,
		WebSearch: true,
	}
}

// Provider implements provider.Provider for Blackbox
type Provider struct {
	config *Config
	client *http.Client
}

// New creates a new Blackbox provider
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig()
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Provider{config: config, client: client}
}

// Info returns the registry record of this provider.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		ID:              "blackbox",
		Name:            Name,
		Provider:        p,
		Stream:          true,
		NativeWebSearch: p.config.WebSearch,
		ContextTokens:   4000,
	}
}

type blackboxMessage struct {
	ID      string `json:"id,omitempty"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

type blackboxRequest struct {
	ID                string            `json:"id"`
	Messages          []blackboxMessage `json:"messages"`
	PreviewToken      *string           `json:"previewToken"`
	UserID            *string           `json:"userId"`
	CodeModelMode     bool              `json:"codeModelMode"`
	AgentMode         map[string]any    `json:"agentMode"`
	TrendingAgentMode map[string]any    `json:"trendingAgentMode"`
	IsMicMode         bool              `json:"isMicMode"`
	MaxTokens         int               `json:"maxTokens,omitempty"`
	WebSearchMode     bool              `json:"webSearchMode"`
}

// Invoke implements provider.Provider. The HTTP exchange happens here; the
// returned sequence reads the body and closes it when done.
func (p *Provider) Invoke(ctx context.Context, msgs []message.Message, opts provider.Options, _ provider.Callbacks) (provider.Result, error) {
	chatID := uuid.NewString()[:7]
	payload := blackboxRequest{
		ID:                chatID,
		Messages:          make([]blackboxMessage, 0, len(msgs)),
		CodeModelMode:     true,
		AgentMode:         map[string]any{},
		TrendingAgentMode: map[string]any{},
		MaxTokens:         p.config.MaxTokens,
		WebSearchMode:     p.config.WebSearch,
	}
	if n, ok := opts.Int(provider.OptionMaxTokens); ok && n > 0 {
		payload.MaxTokens = int(n)
	}
	for i, msg := range msgs {
		m := blackboxMessage{Role: string(msg.Role()), Content: msg.Content()}
		if i == 0 {
			m.ID = chatID
		}
		payload.Messages = append(payload.Messages, m)
	}

	httpResp, err := httpapi.Post(ctx, p.client, Name, p.config.URL, nil, payload)
	if err != nil {
		return provider.Result{}, err
	}
	return provider.Fragments(readText(httpResp.Body)), nil
}

// readText yields the body as it arrives, never splitting a UTF-8 sequence.
func readText(body io.ReadCloser) func(yield func(string, error) bool) {
	return func(yield func(string, error) bool) {
		defer body.Close()

		buf := make([]byte, readSize)
		var pending []byte
		for {
			n, err := body.Read(buf)
			if n > 0 {
				pending = append(pending, buf[:n]...)
				if cut := completePrefix(pending); cut > 0 {
					frag := string(pending[:cut])
					pending = append(pending[:0], pending[cut:]...)
					if !yield(frag, nil) {
						return
					}
				}
			}
			if errors.Is(err, io.EOF) {
				if len(pending) > 0 {
					yield(string(pending), nil)
				}
				return
			}
			if err != nil {
				yield("", fmt.Errorf("%s stream interrupted: %w: %w", Name, errorspkg.ErrTransport, err))
				return
			}
		}
	}
}

// completePrefix returns the length of b without a trailing partial rune.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
