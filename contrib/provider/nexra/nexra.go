// Package nexra adapts the Nexra chat endpoint to provider.Provider. Nexra streams
// JSON records separated by the record separator (0x1e) or newlines; each record
// carries the full answer so far, so the provider declares replacement fragments.
package nexra

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sweetpotato0/chatroute/contrib/provider/internal/httpapi"
	errorspkg "github.com/sweetpotato0/chatroute/errors"
	"github.com/sweetpotato0/chatroute/message"
	"github.com/sweetpotato0/chatroute/provider"
)

// DefaultURL is the Nexra chat endpoint.
const DefaultURL = "https://nexra.aryahcr.cc/api/chat/complements"

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o"

// Config holds Nexra provider configuration
type Config struct {
	URL        string
	Model      string
	HTTPClient *http.Client
}

// Provider implements provider.Provider for Nexra
type Provider struct {
	config *Config
	client *http.Client
}

// New creates a new Nexra provider
func New(config *Config) *Provider {
	if config == nil {
		config = &Config{}
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
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
		ID:               "nexra/" + p.config.Model,
		Name:             "Nexra",
		Provider:         p,
		Stream:           true,
		ReplaceFragments: true,
		ContextTokens:    4000,
		Options: provider.Options{
			provider.OptionModel: p.config.Model,
		},
	}
}

type nexraMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type nexraRequest struct {
	Messages []nexraMessage `json:"messages"`
	Model    string         `json:"model"`
	Stream   bool           `json:"stream"`
	Markdown bool           `json:"markdown"`
}

type nexraRecord struct {
	Message string `json:"message"`
	Finish  bool   `json:"finish"`
	Error   any    `json:"error"`
}

// Invoke implements provider.Provider.
func (p *Provider) Invoke(ctx context.Context, msgs []message.Message, opts provider.Options, _ provider.Callbacks) (provider.Result, error) {
	payload := nexraRequest{
		Messages: make([]nexraMessage, 0, len(msgs)),
		Model:    opts.Model(p.config.Model),
		Stream:   true,
	}
	for _, msg := range msgs {
		payload.Messages = append(payload.Messages, nexraMessage{Role: string(msg.Role()), Content: msg.Content()})
	}

	httpResp, err := httpapi.Post(ctx, p.client, "Nexra", p.config.URL, nil, payload)
	if err != nil {
		return provider.Result{}, err
	}

	return provider.Fragments(func(yield func(string, error) bool) {
		defer httpResp.Body.Close()

		scanner := bufio.NewScanner(httpResp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		scanner.Split(splitRecords)
		for scanner.Scan() {
			raw := bytes.TrimSpace(scanner.Bytes())
			if len(raw) == 0 {
				continue
			}
			var rec nexraRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				yield("", fmt.Errorf("Nexra returned an unreadable record: %w: %w", errorspkg.ErrMalformedResponse, err))
				return
			}
			if rec.Error != nil && rec.Error != false {
				yield("", fmt.Errorf("Nexra API error: %v: %w", rec.Error, errorspkg.ErrTransport))
				return
			}
			if !yield(rec.Message, nil) || rec.Finish {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("Nexra stream interrupted: %w: %w", errorspkg.ErrTransport, err))
		}
	}), nil
}

// splitRecords is a bufio.SplitFunc that cuts on the record separator or a newline.
func splitRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\x1e\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
