// Package newsclient talks to the news and newsletter microservices. Every
// call carries its own timeout and reports failures to the caller; deciding
// what to do about a failed branch is the assembler's job.
package newsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newsphere/newsletter-bff/internal/category"
	"github.com/newsphere/newsletter-bff/internal/models"
)

// Client wraps the news-service and newsletter-service HTTP APIs.
type Client struct {
	newsBase       string
	newsletterBase string
	timeout        time.Duration
	http           *http.Client
	log            *slog.Logger
}

// New builds a client. One base URL per upstream; candidate-path guessing is
// a deployment concern, not handled here.
func New(newsBase, newsletterBase string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Client{
		newsBase:       newsBase,
		newsletterBase: newsletterBase,
		timeout:        timeout,
		http:           &http.Client{Timeout: timeout},
		log:            logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Recent returns the newest articles for a category.
func (c *Client) Recent(ctx context.Context, cat category.Code, limit int) ([]models.Article, error) {
	q := url.Values{
		"category": {string(cat)},
		"limit":    {strconv.Itoa(limit)},
	}
	var out []models.Article
	if err := c.getJSON(ctx, c.newsBase+"/api/news/recent", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Trending returns the articles trending in a category over the last hours.
func (c *Client) Trending(ctx context.Context, cat category.Code, hours, limit int) ([]models.Article, error) {
	q := url.Values{
		"hours": {strconv.Itoa(hours)},
		"limit": {strconv.Itoa(limit)},
	}
	if cat != "" {
		q.Set("category", string(cat))
	}
	var out []models.Article
	if err := c.getJSON(ctx, c.newsBase+"/api/news/trending", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Headlines returns the category headline strip.
func (c *Client) Headlines(ctx context.Context, cat category.Code, limit int) ([]models.Headline, error) {
	q := url.Values{
		"category": {string(cat)},
		"limit":    {strconv.Itoa(limit)},
	}
	var out []models.Headline
	if err := c.getJSON(ctx, c.newsBase+"/api/news/headlines", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TrendingKeywords returns the keywords trending in a category.
func (c *Client) TrendingKeywords(ctx context.Context, cat category.Code, limit int) ([]models.TrendingKeyword, error) {
	q := url.Values{
		"category": {string(cat)},
		"limit":    {strconv.Itoa(limit)},
	}
	var out []models.TrendingKeyword
	if err := c.getJSON(ctx, c.newsletterBase+"/api/newsletter/category/trending-keywords", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Recommendations returns scored article suggestions of the requested type.
func (c *Client) Recommendations(ctx context.Context, typ string, cat category.Code, limit int) ([]models.Recommendation, error) {
	q := url.Values{
		"type":  {typ},
		"limit": {strconv.Itoa(limit)},
	}
	if cat != "" {
		q.Set("category", string(cat))
	}
	var out []models.Recommendation
	if err := c.getJSON(ctx, c.newsletterBase+"/api/newsletter/smart-recommendations", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EmailShare is the payload for the newsletter service's share-email endpoint.
type EmailShare struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
}

// SendShareEmail asks the newsletter service to mail a shared newsletter to
// the authenticated user's address.
func (c *Client) SendShareEmail(ctx context.Context, token string, share EmailShare) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(share)
	if err != nil {
		return fmt.Errorf("marshal email share: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.newsletterBase+"/api/newsletter/share/email", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email share request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send share email: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("share email failed: %s", res.Status)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode share email response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("share email rejected: %s", env.Error)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("call %s: %s", endpoint, res.Status)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	if !env.Success {
		return fmt.Errorf("upstream %s rejected: %s", endpoint, env.Error)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", endpoint, err)
	}
	return nil
}
