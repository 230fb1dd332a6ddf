package content

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/newsphere/newsletter-bff/internal/models"
	"github.com/newsphere/newsletter-bff/internal/tier"
)

// syntheticBase anchors synthetic timestamps. A fixed instant keeps the
// generators pure: two calls with the same inputs produce identical bytes.
var syntheticBase = time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)

const syntheticSource = "뉴스피어"

// salt derives a stable per-category offset so different categories do not
// produce identical counters.
func salt(parts ...string) int {
	h := fnv.New32a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'|'})
	}
	return int(h.Sum32() % 5000)
}

// SyntheticArticles generates placeholder articles for a category. Pure in
// (cat, t, count).
func SyntheticArticles(cat string, t tier.Tier, count int) []models.Article {
	if count <= 0 {
		return nil
	}
	personalized := t == tier.Personalized

	articles := make([]models.Article, count)
	for i := range articles {
		title := fmt.Sprintf("%s 관련 주요 뉴스 %d", cat, i+1)
		summary := fmt.Sprintf("%s 분야의 중요한 소식입니다.", cat)
		if personalized {
			title = fmt.Sprintf("당신의 관심사에 맞는 %s 뉴스 %d", cat, i+1)
			summary = fmt.Sprintf("당신의 읽기 패턴을 분석한 맞춤 %s 뉴스입니다.", cat)
		}
		articles[i] = models.Article{
			ID:           fmt.Sprintf("%s_%d", cat, i+1),
			Title:        title,
			Summary:      summary,
			URL:          fmt.Sprintf("#%s_%d", cat, i+1),
			PublishedAt:  syntheticBase.Add(-time.Duration(i) * time.Hour),
			Source:       syntheticSource,
			Personalized: personalized,
		}
	}
	return articles
}

// SyntheticHeadlines generates placeholder headlines for a category.
func SyntheticHeadlines(cat string, count int) []models.Headline {
	if count <= 0 {
		return nil
	}
	base := salt("headline", cat)

	headlines := make([]models.Headline, count)
	for i := range headlines {
		headlines[i] = models.Headline{
			ID:    fmt.Sprintf("headline_%s_%d", cat, i+1),
			Title: fmt.Sprintf("%s 헤드라인 %d", cat, i+1),
			Time:  fmt.Sprintf("%d시간 전", i+1),
			Views: 1000 + (base+i*137)%5000,
		}
	}
	return headlines
}

// SyntheticKeywords generates placeholder trending keywords for a category.
func SyntheticKeywords(cat string, count int) []models.TrendingKeyword {
	if count <= 0 {
		return nil
	}
	base := salt("keyword", cat)

	keywords := make([]models.TrendingKeyword, count)
	for i := range keywords {
		keywords[i] = models.TrendingKeyword{
			Keyword:  fmt.Sprintf("%s 키워드 %d", cat, i+1),
			Count:    100 + (base+i*97)%1000,
			Category: cat,
		}
	}
	return keywords
}

// SyntheticRecommendations generates placeholder recommendations spread over
// the given categories, mirroring the scored-article shape of the live feed.
func SyntheticRecommendations(cats []string, t tier.Tier, typ string, count int) []models.Recommendation {
	if count <= 0 || len(cats) == 0 {
		return nil
	}
	personalized := typ == RecommendationPersonalized && t != tier.Public

	recs := make([]models.Recommendation, count)
	for i := range recs {
		cat := cats[i%len(cats)]
		base := salt("recommendation", cat, typ)

		title := fmt.Sprintf("%s 핫 트렌드 뉴스 %d", cat, i+1)
		summary := fmt.Sprintf("현재 가장 인기 있는 %s 뉴스입니다.", cat)
		score := 60 + (base+i*41)%41
		tag := "트렌딩"
		if personalized {
			title = fmt.Sprintf("당신을 위한 맞춤 %s 뉴스 %d", cat, i+1)
			summary = "당신의 관심사와 읽기 패턴을 분석한 맞춤 뉴스입니다."
			score = 70 + (base+i*41)%31
			tag = "맞춤형"
		}

		recs[i] = models.Recommendation{
			Article: models.Article{
				ID:           fmt.Sprintf("recommendation_%s_%d", cat, i+1),
				Title:        title,
				Summary:      summary,
				URL:          fmt.Sprintf("#recommendation_%d", i+1),
				PublishedAt:  syntheticBase.Add(-time.Duration(i) * 30 * time.Minute),
				Source:       syntheticSource,
				Personalized: personalized,
			},
			Category: cat,
			Trending: !personalized,
			Score:    score,
			Tags:     []string{cat, tag},
		}
	}
	return recs
}
