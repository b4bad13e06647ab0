// Package openai adapts the OpenAI chat completions API, and any API compatible
// with it, to provider.Provider.
package openai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

// Config holds OpenAI provider configuration
type Config struct {
	// ID is the registry identifier; it defaults to "openai/<model>".
	ID string
	// Name is the display name; it defaults to "OpenAI".
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
	// Stream selects the streaming endpoint.
	Stream        bool
	ContextTokens int
	HTTPClient    *http.Client
	MaxRetries    int
}

// DefaultConfig returns default OpenAI configuration
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

// Provider implements provider.Provider for OpenAI
type Provider struct {
	config *Config
	client openai.Client
}

// New creates a new OpenAI provider using the official SDK
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig("", "")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Name == "" {
		config.Name = "OpenAI"
	}
	if config.ID == "" {
		config.ID = "openai/" + config.Model
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
		client: openai.NewClient(options...),
	}
}

// Info returns the registry record of this provider.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		ID:            p.config.ID,
		Name:          p.config.Name,
		Provider:      p,
		Stream:        p.config.Stream,
		ContextTokens: p.config.ContextTokens,
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
		completion, err := p.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return provider.Result{}, fmt.Errorf("%s API error: %w", p.config.Name, err)
		}
		if len(completion.Choices) == 0 {
			return provider.Result{}, fmt.Errorf("%s API returned no choices", p.config.Name)
		}
		return provider.Text(completion.Choices[0].Message.Content), nil
	}

	return provider.Fragments(func(yield func(string, error) bool) {
		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			if len(event.Choices) == 0 {
				continue
			}
			if delta := event.Choices[0].Delta.Content; delta != "" {
				if !yield(delta, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("%s streaming error: %w", p.config.Name, err))
		}
	}), nil
}

func (p *Provider) params(msgs []message.Message, opts provider.Options) openai.ChatCompletionNewParams {
	openAIMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role() {
		case message.RoleSystem:
			openAIMessages = append(openAIMessages, openai.SystemMessage(msg.Content()))
		case message.RoleAssistant:
			openAIMessages = append(openAIMessages, openai.AssistantMessage(msg.Content()))
		default:
			openAIMessages = append(openAIMessages, openai.UserMessage(msg.Content()))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages: openAIMessages,
		Model:    openai.ChatModel(opts.Model(p.config.Model)),
	}
	if t, ok := opts.Temperature(); ok {
		params.Temperature = param.NewOpt(t)
	} else if p.config.Temperature > 0 {
		params.Temperature = param.NewOpt(p.config.Temperature)
	}
	if n, ok := opts.Int(provider.OptionMaxTokens); ok && n > 0 {
		params.MaxCompletionTokens = param.NewOpt(n)
	}
	return params
}
