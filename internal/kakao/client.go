// Package kakao is the chat channel provider client: permission probes,
// additional-consent URLs, and friend message sends.
package kakao

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/newsphere/newsletter-bff/internal/models"
	"github.com/newsphere/newsletter-bff/internal/processing"
)

// ScopeTalkMessage gates friend message sends.
const ScopeTalkMessage = "talk_message"

// validScopes is the closed set of scopes this service may ask consent for.
var validScopes = map[string]struct{}{
	ScopeTalkMessage: {},
}

// Config wires the provider endpoints and app credentials.
type Config struct {
	AppKey       string
	APIBase      string
	AuthBase     string
	RedirectBase string
	AppURL       string
	Timeout      time.Duration
}

// Client is the ready provider handle.
type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

var (
	initOnce   sync.Once
	initHandle *Client
	initErr    error
)

// Init returns the process-wide provider handle. It is idempotent and safe
// to call concurrently: every caller gets the same handle or the same
// initialization error.
func Init(cfg Config, logger *slog.Logger) (*Client, error) {
	initOnce.Do(func() {
		initHandle, initErr = New(cfg, logger)
	})
	return initHandle, initErr
}

// New builds an independent client. Prefer Init in service wiring; New
// exists for tests and tools.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.AppKey == "" {
		return nil, fmt.Errorf("kakao: app key is required")
	}
	if cfg.RedirectBase == "" {
		return nil, fmt.Errorf("kakao: redirect base is required")
	}
	if cfg.APIBase == "" {
		cfg.APIBase = "https://kapi.kakao.com"
	}
	if cfg.AuthBase == "" {
		cfg.AuthBase = "https://kauth.kakao.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}, nil
}

// ProviderError carries the provider's numeric error code.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("kakao error %d: %s", e.Code, e.Message)
}

// CheckPermission asks the provider whether the token carries the
// talk_message scope. The result is never cached; the provider is
// authoritative.
func (c *Client) CheckPermission(ctx context.Context, token string) (models.PermissionState, error) {
	state := models.PermissionState{Channel: "kakao"}
	if token == "" {
		return state, fmt.Errorf("kakao: access token is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.cfg.APIBase + "/v2/user/scopes?" + url.Values{
		"scopes": {fmt.Sprintf(`["%s"]`, ScopeTalkMessage)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return state, fmt.Errorf("kakao: build scopes request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return state, fmt.Errorf("kakao: scopes request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return state, c.providerError(res)
	}

	var parsed struct {
		Scopes []struct {
			ID     string `json:"id"`
			Agreed bool   `json:"agreed"`
		} `json:"scopes"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return state, fmt.Errorf("kakao: decode scopes: %w", err)
	}

	for _, scope := range parsed.Scopes {
		if scope.Agreed {
			state.Scopes = append(state.Scopes, scope.ID)
		}
		if scope.ID == ScopeTalkMessage && scope.Agreed {
			state.Granted = true
		}
	}
	return state, nil
}

// ConsentURL builds the additional-consent authorization URL for the given
// scopes. The state marker distinguishes this from an initial login; the
// caller redirects the user and the user re-invokes delivery afterwards.
func (c *Client) ConsentURL(scopes []string) (string, error) {
	if len(scopes) == 0 {
		return "", fmt.Errorf("kakao: at least one scope is required")
	}
	for _, scope := range scopes {
		if _, ok := validScopes[scope]; !ok {
			return "", fmt.Errorf("kakao: unsupported scope %q", scope)
		}
	}

	params := url.Values{
		"client_id":     {c.cfg.AppKey},
		"redirect_uri":  {c.cfg.RedirectBase + "/auth/oauth/callback"},
		"response_type": {"code"},
		"scope":         {strings.Join(scopes, " ")},
		"prompt":        {"consent"},
		"state":         {"additional_consent"},
	}
	return c.cfg.AuthBase + "/oauth/authorize?" + params.Encode(), nil
}

// Message is the feed content sent to friends.
type Message struct {
	Title   string
	Summary string
	URL     string
}

// SendToFriends posts the default feed template to the given friend uuids.
// The provider caps receivers at models.MaxReceivers per call.
func (c *Client) SendToFriends(ctx context.Context, token string, receiverUUIDs []string, msg Message) error {
	if token == "" {
		return fmt.Errorf("kakao: access token is required")
	}
	if len(receiverUUIDs) == 0 {
		return fmt.Errorf("kakao: at least one receiver is required")
	}
	if len(receiverUUIDs) > models.MaxReceivers {
		return fmt.Errorf("kakao: at most %d receivers per message", models.MaxReceivers)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	uuids, err := json.Marshal(receiverUUIDs)
	if err != nil {
		return fmt.Errorf("kakao: marshal receivers: %w", err)
	}
	template, err := json.Marshal(c.feedTemplate(msg))
	if err != nil {
		return fmt.Errorf("kakao: marshal template: %w", err)
	}

	form := url.Values{
		"receiver_uuids":  {string(uuids)},
		"template_object": {string(template)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.APIBase+"/v1/api/talk/friends/message/default/send",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("kakao: build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kakao: send message: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return c.providerError(res)
	}

	var parsed struct {
		FailureInfo []struct {
			Code          int      `json:"code"`
			ReceiverUUIDs []string `json:"receiver_uuids"`
		} `json:"failure_info"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("kakao: decode send response: %w", err)
	}
	if len(parsed.FailureInfo) > 0 {
		return &ProviderError{
			Code:    parsed.FailureInfo[0].Code,
			Message: fmt.Sprintf("delivery failed for %d receivers", countReceivers(parsed.FailureInfo)),
		}
	}
	return nil
}

func countReceivers(info []struct {
	Code          int      `json:"code"`
	ReceiverUUIDs []string `json:"receiver_uuids"`
}) int {
	total := 0
	for _, f := range info {
		total += len(f.ReceiverUUIDs)
	}
	return total
}

func (c *Client) feedTemplate(msg Message) map[string]any {
	link := map[string]any{
		"web_url":        msg.URL,
		"mobile_web_url": msg.URL,
	}
	appLink := map[string]any{
		"web_url":        c.cfg.AppURL,
		"mobile_web_url": c.cfg.AppURL,
	}
	return map[string]any{
		"object_type": "feed",
		"content": map[string]any{
			"title":       processing.Truncate(processing.CleanText(msg.Title), 100),
			"description": processing.Truncate(processing.CleanText(msg.Summary), 200),
			"link":        link,
		},
		"buttons": []map[string]any{
			{"title": "뉴스레터 보기", "link": link},
			{"title": "구독하기", "link": appLink},
		},
	}
}

// providerError maps the provider's error payload to a typed error with the
// user-facing message for known codes.
func (c *Client) providerError(res *http.Response) error {
	var parsed struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return &ProviderError{Code: res.StatusCode, Message: res.Status}
	}

	message := parsed.Msg
	switch parsed.Code {
	case -401:
		message = "인증이 필요합니다. 액세스 토큰을 확인해주세요."
	case -402:
		message = "권한이 없습니다. 카카오톡 메시지 권한을 확인해주세요."
	case -403:
		message = "쿼터를 초과했습니다. 잠시 후 다시 시도해주세요."
	case -404:
		message = "친구 UUID를 찾을 수 없습니다."
	}
	return &ProviderError{Code: parsed.Code, Message: message}
}
