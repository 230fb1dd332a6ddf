package processing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/newsletter-bff/internal/processing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "entities", input: "경제 &amp; 정치", want: "경제 & 정치"},
		{name: "collapse whitespace", input: "foo\n\nbar\t baz", want: "foo bar baz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.CleanText(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "짧은 제목", processing.Truncate("짧은 제목", 20))
	require.Equal(t, "아주 긴 요...", processing.Truncate("아주 긴 요약문입니다", 6))
	require.Equal(t, "", processing.Truncate("anything", 0))
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     string
	}{
		{name: "empty", text: "", maxWords: 10, want: ""},
		{name: "first sentence", text: "오늘의 주요 뉴스입니다. 내일도 계속됩니다.", maxWords: 10, want: "오늘의 주요 뉴스입니다"},
		{name: "word cap", text: "하나 둘 셋 넷 다섯 여섯", maxWords: 3, want: "하나 둘 셋..."},
		{name: "no sentence end", text: "경제 분야의 주요 소식", maxWords: 10, want: "경제 분야의 주요 소식"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.Snippet(tt.text, tt.maxWords))
		})
	}
}

func TestBuildEventID(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	id1 := processing.BuildEventID("newsletter_share", "kakao", "https://example.com/n/1", ts)
	id2 := processing.BuildEventID("newsletter_share", "kakao", "https://example.com/n/1", ts)
	require.NotEmpty(t, id1)
	require.Equal(t, id1, id2)

	other := processing.BuildEventID("newsletter_share", "email", "https://example.com/n/1", ts)
	require.NotEqual(t, id1, other)
}
