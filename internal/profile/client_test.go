package profile_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/newsletter-bff/internal/category"
	"github.com/newsphere/newsletter-bff/internal/profile"
	"github.com/newsphere/newsletter-bff/internal/tier"
)

func TestHasValidSession(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		status int
		want   bool
	}{
		{name: "empty token", token: "", status: http.StatusOK, want: false},
		{name: "live session", token: "tok", status: http.StatusOK, want: true},
		{name: "expired session", token: "tok", status: http.StatusUnauthorized, want: false},
		{name: "forbidden", token: "tok", status: http.StatusForbidden, want: false},
		{name: "gateway degraded", token: "tok", status: http.StatusBadGateway, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := profile.New(srv.URL, time.Second, nil)
			require.Equal(t, tt.want, c.HasValidSession(context.Background(), tt.token))
		})
	}
}

func TestHasValidSessionGatewayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := profile.New(srv.URL, time.Second, nil)
	require.True(t, c.HasValidSession(context.Background(), "tok"))
}

func TestListSubscriptionsFiltersInactive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []tier.Subscription{
				{Category: category.Politics, Active: true},
				{Category: category.Economy, Active: false},
			},
		})
	}))
	defer srv.Close()

	c := profile.New(srv.URL, time.Second, nil)
	subs := c.ListSubscriptions(context.Background(), "tok")
	require.Len(t, subs, 1)
	require.Equal(t, category.Politics, subs[0].Category)
}

func TestListSubscriptionsDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := profile.New(srv.URL, time.Second, nil)
	require.Empty(t, c.ListSubscriptions(context.Background(), "tok"))
	require.Empty(t, c.ListSubscriptions(context.Background(), ""))
}
