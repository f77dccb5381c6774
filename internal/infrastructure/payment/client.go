// Package paymentclient is the HTTP adapter for the external payment-session
// provider. One call creates a hosted session; the provider returns the
// redirect target and the session id that later comes back on the settlement
// return URL.
package paymentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chronomart/storefront/internal/domain/payment"
)

const (
	sessionsPath     = "/v1/payment_sessions"
	maxErrorBodySize = 2048
)

type Config struct {
	BaseURL   string
	APIKey    string
	ReturnURL string
	Timeout   time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	returnURL  string
	httpClient *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("payment client: base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		returnURL: cfg.ReturnURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CreateSession issues the payment-session creation request. The request
// carries the snapshot's line items and the orchestrator-computed total.
func (c *Client) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	if req.ReturnURL == "" {
		req.ReturnURL = c.returnURL
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("payment client: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment client: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment client: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("payment client: provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", payment.ErrMalformedResponse, err)
	}
	if out.RedirectURL == "" {
		return nil, fmt.Errorf("%w: missing redirect_url", payment.ErrMalformedResponse)
	}

	return &payment.Session{
		ID:          out.SessionID,
		RedirectURL: out.RedirectURL,
	}, nil
}
