package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/newsphere/newsletter-bff/internal/analytics"
	"github.com/newsphere/newsletter-bff/internal/config"
	"github.com/newsphere/newsletter-bff/internal/content"
	"github.com/newsphere/newsletter-bff/internal/delivery"
	"github.com/newsphere/newsletter-bff/internal/elasticsearch"
	"github.com/newsphere/newsletter-bff/internal/kakao"
	"github.com/newsphere/newsletter-bff/internal/logger"
	"github.com/newsphere/newsletter-bff/internal/newsclient"
	"github.com/newsphere/newsletter-bff/internal/profile"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	kakaoClient, err := kakao.Init(kakao.Config{
		AppKey:       cfg.KakaoAppKey,
		APIBase:      cfg.KakaoAPIBase,
		AuthBase:     cfg.KakaoAuthBase,
		RedirectBase: cfg.KakaoRedirectBase,
		AppURL:       cfg.AppURL,
		Timeout:      cfg.UpstreamTimeout,
	}, log.With("component", "kakao"))
	if err != nil {
		log.Error("init kakao client", slog.Any("err", err))
		os.Exit(1)
	}

	newsClient := newsclient.New(cfg.NewsServiceURL, cfg.NewsletterServiceURL, cfg.UpstreamTimeout, log.With("component", "newsclient"))
	profileClient := profile.New(cfg.AuthServiceURL, cfg.UpstreamTimeout, log.With("component", "profile"))
	assembler := content.New(newsClient, cfg.UpstreamTimeout, log.With("component", "assembler"))
	orchestrator := delivery.New(kakaoClient, newsClient, cfg.AppURL, cfg.DeliveryTimeout, log.With("component", "delivery"))

	srv := &server{
		log:       log,
		cfg:       cfg,
		assembler: assembler,
		deliverer: orchestrator,
		kakao:     kakaoClient,
		profile:   profileClient,
	}

	if cfg.AnalyticsEnabled() {
		publisher := analytics.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log.With("component", "analytics"))
		defer publisher.Close()
		srv.events = publisher

		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log.With("component", "elasticsearch"))
		if err != nil {
			log.Error("init elasticsearch", slog.Any("err", err))
			os.Exit(1)
		}
		srv.stats = esClient
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/api/newsletter/content", srv.handleContent)
	r.Get("/api/newsletter/recommendations", srv.handleRecommendations)
	r.Post("/api/delivery", srv.handleDeliver)
	r.Get("/api/kakao/permissions/talk-message", srv.handlePermission)
	r.Post("/api/kakao/consent", srv.handleConsent)
	r.Post("/api/analytics/events", srv.handleTrackEvent)
	r.Get("/api/analytics/share-stats", srv.handleShareStats)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
