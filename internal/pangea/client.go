// Package pangea provides thin clients for the Pangea Redact and Domain
// Intel services, covering only the calls this program makes.
package pangea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultDomain is the Pangea platform domain used when PANGEA_DOMAIN is
// unset.
const DefaultDomain = "aws.us.pangea.cloud"

const defaultTimeout = 60 * time.Second

// Client calls Pangea service endpoints. One client serves both the
// Redact and Domain Intel services; the per-service host is derived from
// the platform domain. Safe for concurrent use.
type Client struct {
	token      string
	domain     string
	httpClient *http.Client

	// baseURL, when set, overrides the https://<service>.<domain> host
	// derivation. Tests point it at an httptest server.
	baseURL string
}

// NewClient creates a client for the given API token and platform domain.
func NewClient(token, domain string) *Client {
	if domain == "" {
		domain = DefaultDomain
	}
	return &Client{
		token:      token,
		domain:     domain,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewClientWithBaseURL creates a client that sends every request to base
// instead of deriving per-service hosts.
func NewClientWithBaseURL(token, base string) *Client {
	c := NewClient(token, "")
	c.baseURL = base
	return c
}

// envelope is the common Pangea response wrapper.
type envelope struct {
	RequestID string          `json:"request_id"`
	Status    string          `json:"status"`
	Summary   string          `json:"summary"`
	Result    json.RawMessage `json:"result"`
}

// post issues one service call and decodes the envelope result into out.
// It returns the full raw response body for audit display.
func (c *Client) post(ctx context.Context, service, path string, payload, out any) (json.RawMessage, error) {
	endpoint := c.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.%s", service, c.domain)
	}
	endpoint += path

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: %s - %s", service, path, resp.Status, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if env.Status != "Success" {
		return nil, fmt.Errorf("%s %s: status %q: %s", service, path, env.Status, env.Summary)
	}

	if out != nil && len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return body, nil
}
