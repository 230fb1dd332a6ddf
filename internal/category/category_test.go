package category_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsphere/newsletter-bff/internal/category"
)

func TestRoundTrip(t *testing.T) {
	for _, code := range category.Codes() {
		require.Equal(t, code, category.ToCode(category.ToLabel(code)))
	}
}

func TestToLabel(t *testing.T) {
	tests := []struct {
		code category.Code
		want string
	}{
		{code: category.Politics, want: "정치"},
		{code: category.ITScience, want: "IT/과학"},
		{code: category.TravelFood, want: "여행/음식"},
		{code: category.Code("SPORTS"), want: "SPORTS"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, category.ToLabel(tt.code))
	}
}

func TestToCodePassThrough(t *testing.T) {
	require.Equal(t, category.Economy, category.ToCode("경제"))
	require.Equal(t, category.Code("스포츠"), category.ToCode("스포츠"))
}

func TestLabelsMatchCodes(t *testing.T) {
	labels := category.Labels()
	codes := category.Codes()
	require.Len(t, labels, 9)
	require.Len(t, codes, 9)
	for i, label := range labels {
		require.Equal(t, codes[i], category.ToCode(label))
	}
}
