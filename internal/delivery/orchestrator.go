// Package delivery runs the multi-channel send protocol: permission check,
// consent handshake, primary-channel send, and fallback. Exactly one channel
// delivers per completed attempt.
package delivery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/newsphere/newsletter-bff/internal/kakao"
	"github.com/newsphere/newsletter-bff/internal/models"
	"github.com/newsphere/newsletter-bff/internal/newsclient"
	"github.com/newsphere/newsletter-bff/internal/processing"
)

// emailSummaryWords caps the preview line used as the email body lead.
const emailSummaryWords = 40

// State names the terminal outcomes of one delivery attempt.
type State string

const (
	DonePrimary  State = "DONE_PRIMARY"
	DoneFallback State = "DONE_FALLBACK"
	AwaitingUser State = "AWAITING_USER"
	Failed       State = "FAILED"
)

// Result reports how an attempt ended. ConsentURL is set only for
// AWAITING_USER, ChannelUsed only for completed sends.
type Result struct {
	State       State  `json:"state"`
	ChannelUsed string `json:"channelUsed,omitempty"`
	ConsentURL  string `json:"consentUrl,omitempty"`
	ShareURL    string `json:"shareUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ValidationError rejects a malformed request before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Provider is the primary chat channel.
type Provider interface {
	CheckPermission(ctx context.Context, token string) (models.PermissionState, error)
	ConsentURL(scopes []string) (string, error)
	SendToFriends(ctx context.Context, token string, receiverUUIDs []string, msg kakao.Message) error
}

// Emailer is the email fallback channel.
type Emailer interface {
	SendShareEmail(ctx context.Context, token string, share newsclient.EmailShare) error
}

// Orchestrator drives one attempt through the state machine.
type Orchestrator struct {
	provider       Provider
	emailer        Emailer
	appURL         string
	attemptTimeout time.Duration
	log            *slog.Logger
}

// New wires the orchestrator. attemptTimeout bounds a whole attempt so a
// slow provider cannot hold the request open indefinitely.
func New(provider Provider, emailer Emailer, appURL string, attemptTimeout time.Duration, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if attemptTimeout <= 0 {
		attemptTimeout = 10 * time.Second
	}
	return &Orchestrator{
		provider:       provider,
		emailer:        emailer,
		appURL:         appURL,
		attemptTimeout: attemptTimeout,
		log:            logger,
	}
}

// Validate rejects malformed requests. Receiver overflow is an error, not a
// truncation: the caller chose those receivers.
func Validate(req models.DeliveryRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return &ValidationError{Reason: "title is required"}
	}
	if strings.TrimSpace(req.Summary) == "" {
		return &ValidationError{Reason: "summary is required"}
	}
	if strings.TrimSpace(req.URL) == "" {
		return &ValidationError{Reason: "url is required"}
	}
	if len(req.ReceiverUUIDs) > models.MaxReceivers {
		return &ValidationError{Reason: fmt.Sprintf("at most %d receivers per delivery", models.MaxReceivers)}
	}
	switch req.FallbackChannel {
	case "", models.FallbackEmail, models.FallbackLink:
	default:
		return &ValidationError{Reason: fmt.Sprintf("unsupported fallback channel %q", req.FallbackChannel)}
	}
	return nil
}

// Deliver runs one attempt. A non-nil error is always a *ValidationError;
// every provider-side outcome maps to a Result state instead.
func (o *Orchestrator) Deliver(ctx context.Context, token string, req models.DeliveryRequest) (Result, error) {
	if err := Validate(req); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	// CHECKING_PERMISSION. A provider or network error counts as denied:
	// fail toward consent, never toward an unauthorized send.
	granted := false
	if perm, err := o.provider.CheckPermission(ctx, token); err != nil {
		o.log.Warn("permission check failed, treating as denied", slog.Any("err", err))
	} else {
		granted = perm.Granted
	}

	if !granted {
		return o.requestConsent()
	}

	// SENDING_PRIMARY, only with receivers to send to.
	if len(req.ReceiverUUIDs) > 0 {
		msg := kakao.Message{Title: req.Title, Summary: req.Summary, URL: req.URL}
		err := o.provider.SendToFriends(ctx, token, req.ReceiverUUIDs, msg)
		if err == nil {
			return Result{
				State:       DonePrimary,
				ChannelUsed: "kakao",
				Message:     "카카오톡으로 메시지가 전송되었습니다.",
			}, nil
		}
		// No primary retry: fall back immediately.
		o.log.Warn("primary send failed, falling back",
			slog.String("fallback", string(req.FallbackChannel)),
			slog.Any("err", err),
		)
	}

	return o.sendFallback(ctx, token, req), nil
}

// requestConsent is terminal for this attempt; the user completes consent
// out-of-band and re-invokes delivery.
func (o *Orchestrator) requestConsent() (Result, error) {
	consentURL, err := o.provider.ConsentURL([]string{kakao.ScopeTalkMessage})
	if err != nil {
		o.log.Error("build consent url", slog.Any("err", err))
		return Result{State: Failed, Message: "동의 요청 URL 생성에 실패했습니다."}, nil
	}
	return Result{
		State:      AwaitingUser,
		ConsentURL: consentURL,
		Message:    "카카오톡 메시지 권한 동의가 필요합니다.",
	}, nil
}

// SENDING_FALLBACK.
func (o *Orchestrator) sendFallback(ctx context.Context, token string, req models.DeliveryRequest) Result {
	channel := req.FallbackChannel
	if channel == "" {
		channel = models.FallbackEmail
	}

	switch channel {
	case models.FallbackEmail:
		share := newsclient.EmailShare{
			Title:   processing.CleanText(req.Title),
			Summary: processing.Snippet(req.Summary, emailSummaryWords),
			URL:     req.URL,
		}
		if err := o.emailer.SendShareEmail(ctx, token, share); err != nil {
			o.log.Warn("email fallback failed", slog.Any("err", err))
			return Result{State: Failed, Message: "모든 전송 채널이 실패했습니다."}
		}
		return Result{
			State:       DoneFallback,
			ChannelUsed: string(models.FallbackEmail),
			Message:     "이메일로 뉴스레터가 전송되었습니다.",
		}

	default: // models.FallbackLink
		return Result{
			State:       DoneFallback,
			ChannelUsed: string(models.FallbackLink),
			ShareURL:    o.shareLink(req.URL),
			Message:     "공유 링크가 생성되었습니다.",
		}
	}
}

// shareLink mints a trackable share URL pointing back at the portal.
func (o *Orchestrator) shareLink(target string) string {
	return fmt.Sprintf("%s/s/%s?target=%s", o.appURL, uuid.NewString(), url.QueryEscape(target))
}
