// Package groq configures the OpenAI-compatible adapter for the Groq API.
package groq

import (
	"github.com/sweetpotato0/chatroute/contrib/provider/openai"
)

// DefaultBaseURL is the OpenAI-compatible endpoint of Groq.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "llama-3.1-8b-instant"

// Config holds Groq provider configuration
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int64
	Temperature float64
	Stream      bool
}

// DefaultConfig returns default Groq configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		MaxTokens:   2048,
		Temperature: 0.7,
		Stream:      true,
	}
}

// New creates a Groq provider backed by the OpenAI SDK.
func New(config *Config) *openai.Provider {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	return openai.New(&openai.Config{
		ID:            "groq/" + config.Model,
		Name:          "Groq",
		APIKey:        config.APIKey,
		BaseURL:       config.BaseURL,
		Model:         config.Model,
		MaxTokens:     config.MaxTokens,
		Temperature:   config.Temperature,
		Stream:        config.Stream,
		ContextTokens: 8000,
		MaxRetries:    2,
	})
}
