// Package gemini adapts the Google Gemini chat API to provider.Provider.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash"

// Config holds Gemini provider configuration
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
	Stream      bool
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       DefaultModel,
		MaxTokens:   2048,
		Temperature: 0.7,
		Stream:      true,
	}
}

// Provider implements provider.Provider for Google Gemini
type Provider struct {
	config *Config
	client *genai.Client
}

// New creates a new Gemini provider. Extra client options are passed to the SDK.
func New(ctx context.Context, config *Config, opts ...option.ClientOption) (*Provider, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(config.APIKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Provider{config: config, client: client}, nil
}

// Close releases the client.
func (p *Provider) Close() error {
	return p.client.Close()
}

// Info returns the registry record of this provider.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		ID:            "gemini/" + p.config.Model,
		Name:          "Gemini",
		Provider:      p,
		Stream:        p.config.Stream,
		ContextTokens: 30000,
		Options: provider.Options{
			provider.OptionModel: p.config.Model,
		},
	}
}

// Invoke implements provider.Provider.
func (p *Provider) Invoke(ctx context.Context, msgs []message.Message, opts provider.Options, _ provider.Callbacks) (provider.Result, error) {
	system, history, last, err := split(msgs)
	if err != nil {
		return provider.Result{}, err
	}

	model := p.client.GenerativeModel(opts.Model(p.config.Model))
	if t, ok := opts.Temperature(); ok {
		model.SetTemperature(float32(t))
	} else if p.config.Temperature > 0 {
		model.SetTemperature(p.config.Temperature)
	}
	if n, ok := opts.Int(provider.OptionMaxTokens); ok && n > 0 {
		model.SetMaxOutputTokens(int32(n))
	} else if p.config.MaxTokens > 0 {
		model.SetMaxOutputTokens(p.config.MaxTokens)
	}
	if system != nil {
		model.SystemInstruction = system
	}

	cs := model.StartChat()
	cs.History = history

	if !p.config.Stream {
		resp, err := cs.SendMessage(ctx, genai.Text(last))
		if err != nil {
			return provider.Result{}, fmt.Errorf("Gemini API error: %w", err)
		}
		return provider.Text(responseText(resp)), nil
	}

	return provider.Fragments(func(yield func(string, error) bool) {
		it := cs.SendMessageStream(ctx, genai.Text(last))
		for {
			resp, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield("", fmt.Errorf("Gemini streaming error: %w", err))
				return
			}
			if text := responseText(resp); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}), nil
}

// split separates system messages, the chat history and the final user prompt.
func split(msgs []message.Message) (*genai.Content, []*genai.Content, string, error) {
	var systemParts []genai.Part
	var history []*genai.Content
	for _, msg := range msgs {
		switch msg.Role() {
		case message.RoleSystem:
			systemParts = append(systemParts, genai.Text(msg.Content()))
		case message.RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content())}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content())}})
		}
	}
	if len(history) == 0 || history[len(history)-1].Role != "user" {
		return nil, nil, "", fmt.Errorf("gemini: conversation must end with a user message: %w", errorspkg.ErrInvalidInput)
	}

	last := history[len(history)-1]
	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}
	return system, history[:len(history)-1], string(last.Parts[0].(genai.Text)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
	}
	return sb.String()
}
