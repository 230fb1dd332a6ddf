package kakao_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/newsletter-bff/internal/kakao"
)

func testConfig(apiBase string) kakao.Config {
	return kakao.Config{
		AppKey:       "app-key",
		APIBase:      apiBase,
		AuthBase:     "https://kauth.kakao.com",
		RedirectBase: "https://news.example.com",
		AppURL:       "https://news.example.com",
		Timeout:      time.Second,
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := kakao.New(kakao.Config{RedirectBase: "https://x"}, nil)
	require.Error(t, err)

	_, err = kakao.New(kakao.Config{AppKey: "k"}, nil)
	require.Error(t, err)

	c, err := kakao.New(testConfig("https://kapi.kakao.com"), nil)
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestInitReturnsSameHandle(t *testing.T) {
	cfg := testConfig("https://kapi.kakao.com")

	type result struct {
		c   *kakao.Client
		err error
	}
	results := make(chan result, 8)
	for i := 0; i < 8; i++ {
		go func() {
			c, err := kakao.Init(cfg, nil)
			results <- result{c: c, err: err}
		}()
	}

	first := <-results
	require.NoError(t, first.err)
	for i := 0; i < 7; i++ {
		r := <-results
		require.NoError(t, r.err)
		require.Same(t, first.c, r.c)
	}
}

func TestCheckPermission(t *testing.T) {
	tests := []struct {
		name    string
		agreed  bool
		granted bool
	}{
		{name: "granted", agreed: true, granted: true},
		{name: "denied", agreed: false, granted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/v2/user/scopes", r.URL.Path)
				require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				json.NewEncoder(w).Encode(map[string]any{
					"scopes": []map[string]any{
						{"id": "talk_message", "agreed": tt.agreed},
					},
				})
			}))
			defer srv.Close()

			c, err := kakao.New(testConfig(srv.URL), nil)
			require.NoError(t, err)

			state, err := c.CheckPermission(context.Background(), "tok")
			require.NoError(t, err)
			require.Equal(t, tt.granted, state.Granted)
			require.Equal(t, "kakao", state.Channel)
		})
	}
}

func TestCheckPermissionProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"code": -401, "msg": "unauthorized"})
	}))
	defer srv.Close()

	c, err := kakao.New(testConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.CheckPermission(context.Background(), "tok")
	require.Error(t, err)

	var pe *kakao.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, -401, pe.Code)
}

func TestConsentURL(t *testing.T) {
	c, err := kakao.New(testConfig("https://kapi.kakao.com"), nil)
	require.NoError(t, err)

	raw, err := c.ConsentURL([]string{kakao.ScopeTalkMessage})
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "kauth.kakao.com", parsed.Host)
	require.Equal(t, "/oauth/authorize", parsed.Path)

	q := parsed.Query()
	require.Equal(t, "app-key", q.Get("client_id"))
	require.Equal(t, "https://news.example.com/auth/oauth/callback", q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "talk_message", q.Get("scope"))
	require.Equal(t, "consent", q.Get("prompt"))
	require.Equal(t, "additional_consent", q.Get("state"))
}

func TestConsentURLRejectsUnknownScope(t *testing.T) {
	c, err := kakao.New(testConfig("https://kapi.kakao.com"), nil)
	require.NoError(t, err)

	_, err = c.ConsentURL([]string{"friends"})
	require.Error(t, err)

	_, err = c.ConsentURL(nil)
	require.Error(t, err)
}

func TestSendToFriends(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/api/talk/friends/message/default/send", r.URL.Path)
		require.NoError(t, r.ParseForm())

		var uuids []string
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("receiver_uuids")), &uuids))
		require.Equal(t, []string{"u1", "u2"}, uuids)

		var template map[string]any
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("template_object")), &template))
		require.Equal(t, "feed", template["object_type"])
		content := template["content"].(map[string]any)
		// Raw titles are entity-decoded and whitespace-squeezed before the
		// provider sees them.
		require.Equal(t, "오늘의 뉴스 & 레터", content["title"])

		json.NewEncoder(w).Encode(map[string]any{"successful_receiver_uuids": uuids})
	}))
	defer srv.Close()

	c, err := kakao.New(testConfig(srv.URL), nil)
	require.NoError(t, err)

	err = c.SendToFriends(context.Background(), "tok", []string{"u1", "u2"}, kakao.Message{
		Title:   "오늘의  뉴스 &amp; 레터",
		Summary: strings.Repeat("요약 ", 120),
		URL:     "https://news.example.com/n/1",
	})
	require.NoError(t, err)
}

func TestSendToFriendsValidation(t *testing.T) {
	c, err := kakao.New(testConfig("https://kapi.kakao.com"), nil)
	require.NoError(t, err)

	msg := kakao.Message{Title: "t", Summary: "s", URL: "u"}

	require.Error(t, c.SendToFriends(context.Background(), "", []string{"u1"}, msg))
	require.Error(t, c.SendToFriends(context.Background(), "tok", nil, msg))
	require.Error(t, c.SendToFriends(context.Background(), "tok",
		[]string{"u1", "u2", "u3", "u4", "u5", "u6"}, msg))
}

func TestSendToFriendsQuotaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"code": -403, "msg": "quota exceeded"})
	}))
	defer srv.Close()

	c, err := kakao.New(testConfig(srv.URL), nil)
	require.NoError(t, err)

	err = c.SendToFriends(context.Background(), "tok", []string{"u1"}, kakao.Message{Title: "t", Summary: "s", URL: "u"})

	var pe *kakao.ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, -403, pe.Code)
	require.Contains(t, pe.Message, "쿼터")
}
