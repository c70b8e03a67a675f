package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPStatusError indicates a non-200 response.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	// Message is the JSON "message" field of the error body, when present.
	Message string
}

func (e *HTTPStatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http status=%d endpoint=%s message=%s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("http status=%d endpoint=%s", e.StatusCode, e.Endpoint)
}

// APIError indicates a 200 response whose envelope code is non-zero.
type APIError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api code=%d endpoint=%s message=%s", e.Code, e.Endpoint, e.Message)
}

// Check returns an *APIError when env reports failure.
func Check(endpoint string, env Envelope) error {
	if env.Code == 0 {
		return nil
	}
	return &APIError{Endpoint: endpoint, Code: env.Code, Message: env.Message}
}

// Err returns an *APIError for endpoint when the envelope reports failure.
func (e Envelope) Err(endpoint string) error {
	return Check(endpoint, e)
}

// Caller issues GET requests against the API host with a shared header set.
type Caller struct {
	HTTPClient *http.Client
	BaseURL    string
	Headers    http.Header
}

// GetJSON fetches endpoint and decodes the body into out. The envelope code
// is not inspected; use Check.
func (c *Caller) GetJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// GetBytes fetches endpoint and returns the raw body.
func (c *Caller) GetBytes(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.get(ctx, endpoint, params)
}

func (c *Caller) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	rawURL := c.buildURL(endpoint, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, vals := range c.Headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := &HTTPStatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		var env Envelope
		if json.Unmarshal(body, &env) == nil {
			statusErr.Message = env.Message
		}
		return nil, statusErr
	}
	return body, nil
}

func (c *Caller) buildURL(endpoint string, params url.Values) string {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u := base + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
