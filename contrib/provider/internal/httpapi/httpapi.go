// Package httpapi holds the request plumbing shared by the JSON-over-HTTP adapters.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	errorspkg "github.com/sweetpotato0/chatroute/errors"
)

// UserAgent is sent with every request.
const UserAgent = "chatroute-client"

// maxErrorBody bounds how much of a failed response ends up in the error.
const maxErrorBody = 4096

// Post sends payload as JSON and returns the response when the status is 200.
// The caller closes the body. Transport failures and other statuses wrap
// errors.ErrTransport.
func Post(ctx context.Context, client *http.Client, name, url string, headers map[string]string, payload any) (*http.Response, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", UserAgent)
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w: %w", name, errorspkg.ErrTransport, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return nil, fmt.Errorf("%s API error (status %d): %s: %w", name, httpResp.StatusCode, body, errorspkg.ErrTransport)
	}
	return httpResp, nil
}

// DecodeJSON reads a JSON body into v; a body that does not decode wraps
// errors.ErrMalformedResponse.
func DecodeJSON(name string, body io.Reader, v any) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%s returned an unreadable response: %w: %w", name, errorspkg.ErrMalformedResponse, err)
	}
	return nil
}
