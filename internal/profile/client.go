// Package profile resolves the auth and subscription state used for tier
// classification.
package profile

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/newsphere/newsletter-bff/internal/tier"
)

// Client talks to the auth gateway.
type Client struct {
	base    string
	timeout time.Duration
	http    *http.Client
	log     *slog.Logger
}

// New builds a profile client against the gateway base URL.
func New(base string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Client{
		base:    base,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// HasValidSession reports whether the bearer token maps to a live session.
// When the gateway cannot be reached the token's presence is trusted: content
// tiering is not a security boundary and the content path must stay
// best-effort.
func (c *Client) HasValidSession(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/auth/verify", nil)
	if err != nil {
		return true
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("auth verify unreachable, trusting token presence", slog.Any("err", err))
		return true
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode < http.StatusMultipleChoices:
		return true
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return false
	default:
		c.log.Warn("auth verify degraded, trusting token presence", slog.Int("status", res.StatusCode))
		return true
	}
}

// ListSubscriptions returns the caller's active category subscriptions.
// Failures degrade to an empty list so a gateway outage only costs
// personalization, never the whole response.
func (c *Client) ListSubscriptions(ctx context.Context, token string) []tier.Subscription {
	if token == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/newsletters/subscriptions", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("list subscriptions failed", slog.Any("err", err))
		return nil
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		c.log.Warn("list subscriptions rejected", slog.Int("status", res.StatusCode))
		return nil
	}

	var env struct {
		Success bool                `json:"success"`
		Data    []tier.Subscription `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		c.log.Warn("decode subscriptions", slog.Any("err", err))
		return nil
	}
	if !env.Success {
		return nil
	}

	active := make([]tier.Subscription, 0, len(env.Data))
	for _, sub := range env.Data {
		if sub.Active {
			active = append(active, sub)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return active
}
