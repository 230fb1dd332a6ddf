package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains the analytics store parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// API describes the BFF HTTP service configuration.
type API struct {
	Common
	BindAddr string

	NewsServiceURL       string
	NewsletterServiceURL string
	AuthServiceURL       string
	UpstreamTimeout      time.Duration

	DefaultLimit          int
	MaxLimit              int
	HeadlinesPerCategory  int
	TrendingKeywordsLimit int

	AppURL            string
	KakaoAppKey       string
	KakaoRedirectBase string
	KakaoAPIBase      string
	KakaoAuthBase     string
	DeliveryTimeout   time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// AnalyticsEnabled reports whether engagement events should be published.
func (a *API) AnalyticsEnabled() bool {
	return len(a.KafkaBrokers) > 0
}

// Worker holds configuration for the Kafka -> Elasticsearch event indexer.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// Retention configures the analytics cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// LoadAPI builds an API config from environment variables. Missing provider
// credentials are a startup error, never a per-request one.
func LoadAPI() (*API, error) {
	c := &API{
		Common:   loadCommon(),
		BindAddr: getEnv("API_BIND_ADDR", "0.0.0.0:3000"),

		NewsServiceURL:       getEnv("NEWS_SERVICE_URL", "http://news-service:8080"),
		NewsletterServiceURL: getEnv("NEWSLETTER_SERVICE_URL", "http://newsletter-service:8081"),
		AuthServiceURL:       getEnv("AUTH_SERVICE_URL", "http://gateway-service:8000"),
		UpstreamTimeout:      getDuration("UPSTREAM_TIMEOUT", "4s"),

		DefaultLimit:          getInt("CONTENT_DEFAULT_LIMIT", 5),
		MaxLimit:              getInt("CONTENT_MAX_LIMIT", 50),
		HeadlinesPerCategory:  getInt("CONTENT_HEADLINES_PER_CATEGORY", 5),
		TrendingKeywordsLimit: getInt("CONTENT_TRENDING_KEYWORDS", 8),

		AppURL:            getEnv("APP_URL", "http://localhost:3000"),
		KakaoAppKey:       getEnv("KAKAO_APP_KEY", ""),
		KakaoRedirectBase: getEnv("KAKAO_REDIRECT_BASE", ""),
		KakaoAPIBase:      getEnv("KAKAO_API_BASE", "https://kapi.kakao.com"),
		KakaoAuthBase:     getEnv("KAKAO_AUTH_BASE", "https://kauth.kakao.com"),
		DeliveryTimeout:   getDuration("DELIVERY_TIMEOUT", "10s"),

		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "engagement_events"),
	}

	if c.KakaoAppKey == "" {
		return nil, fmt.Errorf("KAKAO_APP_KEY is required")
	}
	if c.KakaoRedirectBase == "" {
		return nil, fmt.Errorf("KAKAO_REDIRECT_BASE is required")
	}
	if c.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.DeliveryTimeout <= 0 {
		return nil, fmt.Errorf("DELIVERY_TIMEOUT must be positive")
	}
	if c.DefaultLimit <= 0 {
		return nil, fmt.Errorf("CONTENT_DEFAULT_LIMIT must be positive")
	}
	if c.MaxLimit <= 0 {
		return nil, fmt.Errorf("CONTENT_MAX_LIMIT must be positive")
	}
	if c.DefaultLimit > c.MaxLimit {
		return nil, fmt.Errorf("CONTENT_DEFAULT_LIMIT cannot exceed CONTENT_MAX_LIMIT")
	}
	if c.HeadlinesPerCategory <= 0 {
		return nil, fmt.Errorf("CONTENT_HEADLINES_PER_CATEGORY must be positive")
	}
	if c.TrendingKeywordsLimit <= 0 {
		return nil, fmt.Errorf("CONTENT_TRENDING_KEYWORDS must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "engagement_events"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "engagement-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_INTERVAL", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "engagement"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
