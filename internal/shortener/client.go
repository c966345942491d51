// Package shortener wraps the third-party link shortening services that sit in
// front of download pages
package shortener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 64 << 10

// Method is the response format requested from a provider
type Method string

const (
	MethodText Method = "text"
	MethodJSON Method = "json"
)

// Provider describes one shortening endpoint
type Provider struct {
	Name     string
	APIURL   string
	APIToken string
}

// Configured reports whether the provider has an endpoint to call
func (p Provider) Configured() bool {
	return p.APIURL != ""
}

// APIError represents an error reported inside a provider response body
type APIError struct {
	Status  string
	Message string
}

// Error implements the error interface for APIError
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %q", e.Status)
	}
	return fmt.Sprintf("provider returned status %q: %s", e.Status, e.Message)
}

// Client talks to a single shortening provider
type Client struct {
	provider   Provider
	httpClient *http.Client
}

// New creates a new provider client
func New(provider Provider) *Client {
	return &Client{
		provider: provider,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name returns the provider name used in diagnostics
func (c *Client) Name() string {
	return c.provider.Name
}

// Shorten asks the provider to wrap destination under alias, requesting the
// given response format
func (c *Client) Shorten(ctx context.Context, method Method, destination, alias string) (string, error) {
	if !c.provider.Configured() {
		return "", fmt.Errorf("provider not configured")
	}

	endpoint, err := c.buildURL(method, destination, alias)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	switch method {
	case MethodText:
		return parseTextResponse(body, destination)
	case MethodJSON:
		return parseJSONResponse(body, destination)
	default:
		return "", fmt.Errorf("unsupported method %q", method)
	}
}

func (c *Client) buildURL(method Method, destination, alias string) (string, error) {
	base, err := url.Parse(c.provider.APIURL)
	if err != nil {
		return "", fmt.Errorf("invalid provider URL: %w", err)
	}

	params := base.Query()
	params.Set("api", c.provider.APIToken)
	params.Set("url", destination)
	if alias != "" {
		params.Set("alias", alias)
	}
	if method == MethodText {
		params.Set("format", "text")
	}
	base.RawQuery = params.Encode()

	return base.String(), nil
}

func parseTextResponse(body []byte, destination string) (string, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	if text == destination {
		return "", fmt.Errorf("response echoes the destination")
	}
	return validateShortURL(text)
}

func parseJSONResponse(body []byte, destination string) (string, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if status, ok := payload["status"].(string); ok && strings.EqualFold(status, "error") {
		message, _ := payload["message"].(string)
		return "", &APIError{Status: status, Message: message}
	}

	shortURL, ok := extractShortURL(payload, destination)
	if !ok {
		return "", fmt.Errorf("no shortened URL in response")
	}
	return shortURL, nil
}

// validateShortURL accepts only absolute http(s) URLs
func validateShortURL(raw string) (string, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", fmt.Errorf("response is not an http(s) URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("response is not a valid URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("response URL has no host")
	}
	return raw, nil
}
