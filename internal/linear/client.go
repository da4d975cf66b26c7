// Package linear provides a client for the Linear GraphQL API.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/lin/internal/config"
	"github.com/danielolaszy/lin/internal/logging"
)

const (
	// defaultTimeout is the per-request HTTP timeout.
	defaultTimeout = 30 * time.Second

	// maxRetryElapsed bounds the total time spent retrying rate-limited requests.
	maxRetryElapsed = 2 * time.Minute
)

// Client handles interactions with the Linear GraphQL API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new Linear client using configuration from environment variables.
func NewClient() (*Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Info("linear configuration",
		"api_url", cfg.Linear.APIURL,
		"token", logging.MaskSensitive(cfg.Linear.Token))

	return NewClientWithConfig(cfg), nil
}

// NewClientWithConfig creates a client from an already-loaded configuration.
func NewClientWithConfig(cfg *config.Config) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Linear.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = defaultTimeout

	return &Client{
		endpoint:   cfg.Linear.APIURL,
		httpClient: tc,
	}
}

// Request represents a GraphQL request payload.
type Request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// Response represents a generic GraphQL response envelope.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors,omitempty"`
}

// Error represents a single GraphQL error.
type Error struct {
	Message    string   `json:"message"`
	Path       []string `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

// retryableStatusError marks an HTTP status worth retrying.
type retryableStatusError struct {
	status int
	body   string
}

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.status, e.body)
}

// Execute sends a GraphQL request to the Linear API and returns the raw
// response envelope. Rate-limited (429) and transient server errors are
// retried with exponential backoff; GraphQL-level errors are returned as-is.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var respBody []byte

	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			logging.Warn("retrying linear request",
				"status_code", resp.StatusCode)
			return &retryableStatusError{status: resp.StatusCode, body: string(respBody)}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("api error: %s (status %d)", string(respBody), resp.StatusCode))
		}

		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxRetryElapsed

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}

	var gqlResp Response
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w (body: %s)", err, string(respBody))
	}

	if len(gqlResp.Errors) > 0 {
		errMsgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			errMsgs[i] = e.Message
		}
		return nil, fmt.Errorf("graphql errors: %s", strings.Join(errMsgs, "; "))
	}

	return &gqlResp, nil
}
