package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/newsletter-bff/internal/config"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("KAKAO_APP_KEY", "test-app-key")
	t.Setenv("KAKAO_REDIRECT_BASE", "https://news.example.com")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:3000", cfg.BindAddr)
	require.Equal(t, "http://news-service:8080", cfg.NewsServiceURL)
	require.Equal(t, 4*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, 10*time.Second, cfg.DeliveryTimeout)
	require.Equal(t, 5, cfg.DefaultLimit)
	require.Equal(t, 8, cfg.TrendingKeywordsLimit)
	require.Equal(t, "https://kapi.kakao.com", cfg.KakaoAPIBase)
	require.False(t, cfg.AnalyticsEnabled())
}

func TestLoadAPIRequiresKakaoCredentials(t *testing.T) {
	t.Setenv("KAKAO_APP_KEY", "")
	t.Setenv("KAKAO_REDIRECT_BASE", "https://news.example.com")

	_, err := config.LoadAPI()
	require.Error(t, err)
	require.Contains(t, err.Error(), "KAKAO_APP_KEY")

	t.Setenv("KAKAO_APP_KEY", "key")
	t.Setenv("KAKAO_REDIRECT_BASE", "")

	_, err = config.LoadAPI()
	require.Error(t, err)
	require.Contains(t, err.Error(), "KAKAO_REDIRECT_BASE")
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("KAKAO_APP_KEY", "key")
	t.Setenv("KAKAO_REDIRECT_BASE", "https://news.example.com")
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("CONTENT_DEFAULT_LIMIT", "7")
	t.Setenv("CONTENT_MAX_LIMIT", "20")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	require.Equal(t, 7, cfg.DefaultLimit)
	require.Len(t, cfg.KafkaBrokers, 2)
	require.True(t, cfg.AnalyticsEnabled())
}

func TestLoadAPIRejectsLimitInversion(t *testing.T) {
	t.Setenv("KAKAO_APP_KEY", "key")
	t.Setenv("KAKAO_REDIRECT_BASE", "https://news.example.com")
	t.Setenv("CONTENT_DEFAULT_LIMIT", "30")
	t.Setenv("CONTENT_MAX_LIMIT", "10")

	_, err := config.LoadAPI()
	require.Error(t, err)
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "engagement", cfg.ElasticsearchIndex)
	require.Len(t, cfg.KafkaBrokers, 1)
	require.Equal(t, "kafka:9092", cfg.KafkaBrokers[0])
	require.Equal(t, "engagement_events", cfg.KafkaTopic)
	require.Equal(t, "engagement-worker", cfg.KafkaConsumer)
	require.Equal(t, 24*time.Hour, cfg.DedupeTTL)
}

func TestLoadRetention(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://ret-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "ret-index")
	t.Setenv("RETENTION_INTERVAL", "12h")
	t.Setenv("RETENTION_MAX_AGE", "36h")
	t.Setenv("RETENTION_BATCH_SIZE", "123")

	cfg, err := config.LoadRetention()
	require.NoError(t, err)

	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, 36*time.Hour, cfg.MaxAge)
	require.Equal(t, 123, cfg.BatchSize)
	require.Equal(t, "http://ret-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "ret-index", cfg.ElasticsearchIndex)
}
