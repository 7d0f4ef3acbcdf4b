package mockhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zhammer/scribly/internal/common"
)

// Expectation pairs a request matcher with the canned response to serve
// for it.
type Expectation struct {
	Request  RequestMatcher
	Response ResponseStub
}

// Client speaks the mock server control protocol. Any transport failure is
// a fatal test-setup error: it surfaces synchronously as
// common.ErrServerUnavailable and is never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the mock server at baseURL. Every call is
// bounded by timeout; a timeout is reported the same as the server being
// down.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Reset clears all expectations and captured requests. Idempotent; safe to
// call with no prior state.
func (c *Client) Reset(ctx context.Context) error {
	resp, err := c.put(ctx, "/mockserver/reset", nil)
	if err != nil {
		return fmt.Errorf("reset mock server: %w: %v", common.ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reset mock server: unexpected status %s", resp.Status)
	}
	return nil
}

// AddExpectation installs a rule so any request matching exp.Request
// receives exp.Response.
func (c *Client) AddExpectation(ctx context.Context, exp Expectation) error {
	payload := expectationPayload{HTTPRequest: exp.Request, HTTPResponse: exp.Response}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode expectation: %w", err)
	}

	resp, err := c.put(ctx, "/mockserver/expectation", body)
	if err != nil {
		return fmt.Errorf("add expectation: %w: %v", common.ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("add expectation: unexpected status %s - %q", resp.Status, string(detail))
	}
	return nil
}

// GetRequests returns every request the mock server has captured, in
// arrival order.
func (c *Client) GetRequests(ctx context.Context) ([]RetrievedRequest, error) {
	resp, err := c.put(ctx, "/mockserver/retrieve?type=REQUESTS", nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve requests: %w: %v", common.ErrServerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("retrieve requests: unexpected status %s", resp.Status)
	}

	var requests []RetrievedRequest
	if err := json.NewDecoder(resp.Body).Decode(&requests); err != nil {
		return nil, fmt.Errorf("retrieve requests: decode response: %w", err)
	}
	return requests, nil
}

func (c *Client) put(ctx context.Context, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}
