// Package cohere adapts the Cohere chat API to provider.Provider.
package cohere

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sweetpotato0/chatroute/contrib/provider/internal/httpapi"
	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

// DefaultURL is the Cohere chat endpoint.
const DefaultURL = "https://api.cohere.ai/v1/chat"

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "command-r"

// Config holds Cohere provider configuration
type Config struct {
	APIKey      string
	URL         string
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPClient  *http.Client
}

// DefaultConfig returns default Cohere configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		URL:         DefaultURL,
		Model:       DefaultModel,
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// Provider implements provider.Provider for Cohere. It does not stream.
type Provider struct {
	config *Config
	client *http.Client
}

// New creates a new Cohere provider
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	return &Provider{
		config: config,
		client: client,
	}
}

// Info returns the registry record of this provider.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		ID:            "cohere/" + p.config.Model,
		Name:          "Cohere",
		Provider:      p,
		ContextTokens: 4000,
		Options: provider.Options{
			provider.OptionModel: p.config.Model,
		},
	}
}

// cohereMessage represents a chat history entry in Cohere API format
type cohereMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// cohereRequest represents a Cohere API request
type cohereRequest struct {
	Model       string          `json:"model"`
	Message     string          `json:"message"`
	ChatHistory []cohereMessage `json:"chat_history,omitempty"`
	Preamble    string          `json:"preamble,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

// cohereResponse represents a Cohere API response
type cohereResponse struct {
	Text    string `json:"text"`
	Message string `json:"message,omitempty"`
}

// Invoke implements provider.Provider.
func (p *Provider) Invoke(ctx context.Context, msgs []message.Message, opts provider.Options, _ provider.Callbacks) (provider.Result, error) {
	payload, err := p.request(msgs, opts)
	if err != nil {
		return provider.Result{}, err
	}

	httpResp, err := httpapi.Post(ctx, p.client, "Cohere", p.config.URL, map[string]string{
		"Authorization": "Bearer " + p.config.APIKey,
	}, payload)
	if err != nil {
		return provider.Result{}, err
	}
	defer httpResp.Body.Close()

	var resp cohereResponse
	if err := httpapi.DecodeJSON("Cohere", httpResp.Body, &resp); err != nil {
		return provider.Result{}, err
	}
	if resp.Text == "" && resp.Message != "" {
		return provider.Result{}, fmt.Errorf("Cohere API error: %s: %w", resp.Message, errorspkg.ErrTransport)
	}
	return provider.Text(resp.Text), nil
}

func (p *Provider) request(msgs []message.Message, opts provider.Options) (*cohereRequest, error) {
	last, ok := message.Last(msgs)
	if !ok || last.Role() != message.RoleUser {
		return nil, fmt.Errorf("cohere: conversation must end with a user message: %w", errorspkg.ErrInvalidInput)
	}

	var preamble []string
	history := make([]cohereMessage, 0, len(msgs)-1)
	for _, msg := range msgs[:len(msgs)-1] {
		switch msg.Role() {
		case message.RoleSystem:
			preamble = append(preamble, msg.Content())
		case message.RoleAssistant:
			history = append(history, cohereMessage{Role: "CHATBOT", Message: msg.Content()})
		default:
			history = append(history, cohereMessage{Role: "USER", Message: msg.Content()})
		}
	}

	req := &cohereRequest{
		Model:       opts.Model(p.config.Model),
		Message:     last.Content(),
		ChatHistory: history,
		Preamble:    strings.Join(preamble, "\n"),
		MaxTokens:   p.config.MaxTokens,
	}
	if n, ok := opts.Int(provider.OptionMaxTokens); ok && n > 0 {
		req.MaxTokens = int(n)
	}
	temp := p.config.Temperature
	if t, ok := opts.Temperature(); ok {
		temp = t
	}
	req.Temperature = &temp
	return req, nil
}
