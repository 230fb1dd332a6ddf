package main

import (
	"context"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newsphere/newsletter-bff/internal/config"
	"github.com/newsphere/newsletter-bff/internal/content"
	"github.com/newsphere/newsletter-bff/internal/delivery"
	"github.com/newsphere/newsletter-bff/internal/elasticsearch"
	"github.com/newsphere/newsletter-bff/internal/kakao"
	"github.com/newsphere/newsletter-bff/internal/models"
	"github.com/newsphere/newsletter-bff/internal/tier"
)

// contentAssembler builds newsletter content and recommendation feeds.
type contentAssembler interface {
	Assemble(ctx context.Context, t tier.Tier, categoryFilter string, opts content.Options) *content.Result
	BuildRecommendations(ctx context.Context, t tier.Tier, typ, categoryFilter string, limit int) *content.RecommendationResult
}

// deliverer runs one delivery attempt end to end.
type deliverer interface {
	Deliver(ctx context.Context, token string, req models.DeliveryRequest) (delivery.Result, error)
}

// chatProvider exposes the permission surface of the chat channel.
type chatProvider interface {
	CheckPermission(ctx context.Context, token string) (models.PermissionState, error)
	ConsentURL(scopes []string) (string, error)
}

// sessionSource answers who the caller is.
type sessionSource interface {
	HasValidSession(ctx context.Context, token string) bool
	ListSubscriptions(ctx context.Context, token string) []tier.Subscription
}

// eventSink publishes engagement events. Nil when analytics is disabled.
type eventSink interface {
	PublishAsync(event models.EngagementEvent)
}

// statsSource reads aggregated engagement data. Nil when analytics is
// disabled.
type statsSource interface {
	ShareStats(ctx context.Context, since time.Time) (*elasticsearch.ShareStats, error)
	Health(ctx context.Context) error
}

type server struct {
	log       *slog.Logger
	cfg       *config.API
	assembler contentAssembler
	deliverer deliverer
	kakao     chatProvider
	profile   sessionSource
	events    eventSink
	stats     statsSource
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.stats != nil {
		if err := s.stats.Health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// contentResponse pairs the assembled content with the entitlement that
// shaped it, so the portal can render limits and upgrade prompts.
type contentResponse struct {
	*content.Result
	Entitlement tier.Entitlement `json:"entitlement"`
}

func (s *server) handleContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t := s.classify(ctx, bearerToken(r))
	q := r.URL.Query()
	categoryFilter := strings.TrimSpace(q.Get("category"))

	result := s.assembler.Assemble(ctx, t, categoryFilter, content.Options{
		Limit:                 clampInt(q.Get("limit"), s.cfg.DefaultLimit, s.cfg.MaxLimit),
		HeadlinesPerCategory:  clampInt(q.Get("headlinesPerCategory"), s.cfg.HeadlinesPerCategory, s.cfg.MaxLimit),
		TrendingKeywordsLimit: clampInt(q.Get("trendingKeywordsLimit"), s.cfg.TrendingKeywordsLimit, s.cfg.MaxLimit),
	})

	writeJSON(w, http.StatusOK, contentResponse{
		Result:      result,
		Entitlement: tier.Entitlements(t),
	})
}

func (s *server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t := s.classify(ctx, bearerToken(r))
	typ := strings.TrimSpace(r.URL.Query().Get("type"))
	if typ == "" {
		typ = content.RecommendationAuto
	}
	categoryFilter := strings.TrimSpace(r.URL.Query().Get("category"))
	limit := clampInt(r.URL.Query().Get("limit"), s.cfg.DefaultLimit, s.cfg.MaxLimit)

	result := s.assembler.BuildRecommendations(ctx, t, typ, categoryFilter, limit)
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "로그인이 필요합니다."})
		return
	}

	var req models.DeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.deliverer.Deliver(r.Context(), token, req)
	if err != nil {
		var verr *delivery.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Reason})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	if s.events != nil && (result.State == delivery.DonePrimary || result.State == delivery.DoneFallback) {
		s.events.PublishAsync(models.EngagementEvent{
			Kind:      models.EventNewsletterShare,
			Channel:   result.ChannelUsed,
			TargetURL: req.URL,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) handlePermission(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "로그인이 필요합니다."})
		return
	}

	perm, err := s.kakao.CheckPermission(r.Context(), token)
	if err != nil {
		s.log.Warn("permission probe failed", slog.Any("err", err))
		writeJSON(w, http.StatusOK, models.PermissionState{Channel: "kakao", Granted: false})
		return
	}

	writeJSON(w, http.StatusOK, perm)
}

type consentRequest struct {
	Scopes []string `json:"scopes"`
}

type consentResponse struct {
	ConsentURL string `json:"consentUrl"`
}

func (s *server) handleConsent(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "로그인이 필요합니다."})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// An empty body means the default scope set; anything else must parse.
	var req consentRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}
	if len(req.Scopes) == 0 {
		req.Scopes = []string{kakao.ScopeTalkMessage}
	}

	consentURL, err := s.kakao.ConsentURL(req.Scopes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, consentResponse{ConsentURL: consentURL})
}

var validEventKinds = map[string]struct{}{
	models.EventNewsletterShare: {},
	models.EventNewsletterClick: {},
	models.EventNewsClick:       {},
}

func (s *server) handleTrackEvent(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "disabled"})
		return
	}

	var event models.EngagementEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if _, ok := validEventKinds[event.Kind]; !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown event kind"})
		return
	}

	s.events.PublishAsync(event)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *server) handleShareStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "analytics is disabled"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	since := time.Now().Add(-7 * 24 * time.Hour)
	if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "since must be RFC3339"})
			return
		}
		since = parsed
	}

	stats, err := s.stats.ShareStats(ctx, since)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// classify resolves the caller's content tier from the token. Session and
// subscription lookups degrade independently: a broken auth service must
// never empty the portal.
func (s *server) classify(ctx context.Context, token string) tier.Tier {
	if token == "" {
		return tier.Classify(false, nil)
	}
	if !s.profile.HasValidSession(ctx, token) {
		return tier.Classify(false, nil)
	}
	return tier.Classify(true, s.profile.ListSubscriptions(ctx, token))
}

// bearerToken pulls the access token from the Authorization header, falling
// back to the session cookie set by the portal.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
			return strings.TrimSpace(auth[7:])
		}
	}
	if cookie, err := r.Cookie("access-token"); err == nil {
		return cookie.Value
	}
	return ""
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
