package newsclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/newsletter-bff/internal/category"
	"github.com/newsphere/newsletter-bff/internal/models"
	"github.com/newsphere/newsletter-bff/internal/newsclient"
)

func TestRecentDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/news/recent", r.URL.Path)
		require.Equal(t, "POLITICS", r.URL.Query().Get("category"))
		require.Equal(t, "3", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []models.Article{
				{ID: "a1", Title: "국회 표결 결과", URL: "https://news.example.com/a1"},
			},
		})
	}))
	defer srv.Close()

	c := newsclient.New(srv.URL, srv.URL, time.Second, nil)
	articles, err := c.Recent(context.Background(), category.Politics, 3)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, "국회 표결 결과", articles[0].Title)
}

func TestRecentEmptyDataIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": []models.Article{}})
	}))
	defer srv.Close()

	c := newsclient.New(srv.URL, srv.URL, time.Second, nil)
	articles, err := c.Recent(context.Background(), category.Economy, 5)
	require.NoError(t, err)
	require.Empty(t, articles)
}

func TestUpstreamErrorsSurface(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "boom"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := newsclient.New(srv.URL, srv.URL, time.Second, nil)
			_, err := c.Headlines(context.Background(), category.Society, 5)
			require.Error(t, err)
		})
	}
}

func TestCallsRespectContextCancellation(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newsclient.New(srv.URL, srv.URL, 5*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.TrendingKeywords(ctx, category.ITScience, 8)
	require.Error(t, err)
}

func TestSendShareEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/newsletter/share/email", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var share newsclient.EmailShare
		require.NoError(t, json.NewDecoder(r.Body).Decode(&share))
		require.Equal(t, "오늘의 뉴스레터", share.Title)

		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := newsclient.New(srv.URL, srv.URL, time.Second, nil)
	err := c.SendShareEmail(context.Background(), "tok", newsclient.EmailShare{
		Title:   "오늘의 뉴스레터",
		Summary: "주요 소식 요약",
		URL:     "https://news.example.com/n/1",
	})
	require.NoError(t, err)
}
