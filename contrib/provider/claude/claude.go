// Package claude adapts the Anthropic Messages API to provider.Provider.
package claude

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "claude-sonnet-4-5-20250929"

// Config holds Claude provider configuration
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
	Stream      bool
	HTTPClient  *http.Client
	MaxRetries  int
}

// DefaultConfig returns default Claude configuration
func DefaultConfig(apiKey, baseURL string) *Config {
	return &Config{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Model:       DefaultModel,
		MaxTokens:   4096,
		Temperature: 0.7,
		Stream:      true,
		MaxRetries:  2,
	}
}

// Provider implements provider.Provider for Claude
type Provider struct {
	config *Config
	client anthropic.Client
}

// New creates a new Claude provider using official SDK
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("", "")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 4096
	}

	options := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(config.MaxRetries),
	}
	if config.BaseURL != "" {
		options = append(options, option.WithBaseURL(config.BaseURL))
	}
	if config.HTTPClient != nil {
		options = append(options, option.WithHTTPClient(config.HTTPClient))
	}

	return &Provider{
		config: config,
		client: anthropic.NewClient(options...),
	}
}

// Info returns the registry record of this provider.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		ID:            "claude/" + p.config.Model,
		Name:          "Claude",
		Provider:      p,
		Stream:        p.config.Stream,
		ContextTokens: 100000,
		Options: provider.Options{
			provider.OptionModel:     p.config.Model,
			provider.OptionMaxTokens: p.config.MaxTokens,
		},
	}
}

// Invoke implements provider.Provider.
func (p *Provider) Invoke(ctx context.Context, msgs []message.Message, opts provider.Options, _ provider.Callbacks) (provider.Result, error) {
	params := p.params(msgs, opts)

	if !p.config.Stream {
		apiMessage, err := p.client.Messages.New(ctx, params)
		if err != nil {
			return provider.Result{}, fmt.Errorf("Claude API error: %w", err)
		}
		var text strings.Builder
		for _, content := range apiMessage.Content {
			if content.Type == "text" {
				text.WriteString(content.Text)
			}
		}
		return provider.Text(text.String()), nil
	}

	return provider.Fragments(func(yield func(string, error) bool) {
		stream := p.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			if event.Type != "content_block_delta" {
				continue
			}
			delta := event.AsContentBlockDelta().Delta
			if delta.Type == "text_delta" && delta.Text != "" {
				if !yield(delta.Text, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("Claude streaming error: %w", err))
		}
	}), nil
}

// params maps the conversation; system messages go to the system block since the
// API only accepts user and assistant turns.
func (p *Provider) params(msgs []message.Message, opts provider.Options) anthropic.MessageNewParams {
	var systemPrompts []string
	claudeMessages := make([]anthropic.MessageParam, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role() {
		case message.RoleSystem:
			systemPrompts = append(systemPrompts, msg.Content())
		case message.RoleAssistant:
			claudeMessages = append(claudeMessages,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content())))
		default:
			claudeMessages = append(claudeMessages,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content())))
		}
	}

	maxTokens := p.config.MaxTokens
	if n, ok := opts.Int(provider.OptionMaxTokens); ok && n > 0 {
		maxTokens = n
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(opts.Model(p.config.Model)),
		MaxTokens: maxTokens,
		Messages:  claudeMessages,
	}
	if len(systemPrompts) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Text: strings.Join(systemPrompts, "\n")},
		}
	}
	if t, ok := opts.Temperature(); ok {
		params.Temperature = param.NewOpt(t)
	} else if p.config.Temperature > 0 {
		params.Temperature = param.NewOpt(p.config.Temperature)
	}
	return params
}
