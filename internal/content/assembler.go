// Package content assembles per-category newsletter bundles from the
// upstream news sources, degrading branch by branch to synthetic content so
// a caller always gets a full response.
package content

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/newsphere/newsletter-bff/internal/category"
	"github.com/newsphere/newsletter-bff/internal/models"
	"github.com/newsphere/newsletter-bff/internal/tier"
)

// Recommendation feed types.
const (
	RecommendationAuto         = "auto"
	RecommendationPersonalized = "personalized"
	RecommendationTrending     = "trending"
)

// trendingWindowHours is the lookback window for the trending feed.
const trendingWindowHours = 24

// Source abstracts the upstream calls the assembler fans out to.
type Source interface {
	Recent(ctx context.Context, cat category.Code, limit int) ([]models.Article, error)
	Trending(ctx context.Context, cat category.Code, hours, limit int) ([]models.Article, error)
	Headlines(ctx context.Context, cat category.Code, limit int) ([]models.Headline, error)
	TrendingKeywords(ctx context.Context, cat category.Code, limit int) ([]models.TrendingKeyword, error)
	Recommendations(ctx context.Context, typ string, cat category.Code, limit int) ([]models.Recommendation, error)
}

// Options bound one assembly run.
type Options struct {
	Limit                 int
	HeadlinesPerCategory  int
	TrendingKeywordsLimit int
}

// Result is the assembled response. It is always complete; FallbackUsed
// tells the caller whether any branch degraded to synthetic content.
type Result struct {
	Tier             tier.Tier                `json:"tier"`
	Bundles          []models.ContentBundle   `json:"bundles"`
	TrendingKeywords []models.TrendingKeyword `json:"trendingKeywords"`
	FallbackUsed     bool                     `json:"fallbackUsed"`
	GeneratedAt      time.Time                `json:"generatedAt"`
}

// RecommendationResult is the assembled recommendation feed.
type RecommendationResult struct {
	Type             string                   `json:"recommendationType"`
	Recommendations  []models.Recommendation  `json:"recommendations"`
	TrendingKeywords []models.TrendingKeyword `json:"trendingKeywords"`
	FallbackUsed     bool                     `json:"fallbackUsed"`
	GeneratedAt      time.Time                `json:"generatedAt"`
}

// Assembler fans out to the news sources with per-branch isolation.
type Assembler struct {
	src           Source
	branchTimeout time.Duration
	log           *slog.Logger
}

// New builds an assembler. branchTimeout bounds every individual upstream
// call.
func New(src Source, branchTimeout time.Duration, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if branchTimeout <= 0 {
		branchTimeout = 4 * time.Second
	}
	return &Assembler{src: src, branchTimeout: branchTimeout, log: logger}
}

type categorySlot struct {
	articles          []models.Article
	headlines         []models.Headline
	keywords          []models.TrendingKeyword
	articlesFallback  bool
	headlinesFallback bool
	keywordsFallback  bool
}

// Assemble builds one bundle per resolved category. It has no failure mode:
// a branch that times out, errors, or returns a malformed payload is
// replaced by synthetic content for that (category, kind) pair only.
func (a *Assembler) Assemble(ctx context.Context, t tier.Tier, categoryFilter string, opts Options) *Result {
	ent := tier.Entitlements(t)
	cats := resolveCategories(categoryFilter, ent)
	limit := resolveLimit(opts.Limit, ent.ArticlesPerCategory)
	headlines := positiveOr(opts.HeadlinesPerCategory, 5)
	keywords := positiveOr(opts.TrendingKeywordsLimit, 8)
	personalized := t == tier.Personalized

	slots := make([]categorySlot, len(cats))
	var g errgroup.Group

	for i, cat := range cats {
		cat := cat
		slot := &slots[i]
		code := category.ToCode(cat)

		g.Go(func() error {
			branchCtx, cancel := context.WithTimeout(ctx, a.branchTimeout)
			defer cancel()

			fetched, err := a.src.Recent(branchCtx, code, limit)
			if err != nil {
				a.log.Warn("recent articles branch failed", slog.String("category", cat), slog.Any("err", err))
			}
			var padded bool
			slot.articles, padded = padArticles(fetched, cat, t, limit)
			slot.articlesFallback = err != nil || padded
			return nil
		})

		g.Go(func() error {
			branchCtx, cancel := context.WithTimeout(ctx, a.branchTimeout)
			defer cancel()

			fetched, err := a.src.Headlines(branchCtx, code, headlines)
			if err != nil {
				a.log.Warn("headlines branch failed", slog.String("category", cat), slog.Any("err", err))
			}
			var padded bool
			slot.headlines, padded = padHeadlines(fetched, cat, headlines)
			slot.headlinesFallback = err != nil || padded
			return nil
		})

		g.Go(func() error {
			branchCtx, cancel := context.WithTimeout(ctx, a.branchTimeout)
			defer cancel()

			fetched, err := a.src.TrendingKeywords(branchCtx, code, keywords)
			if err != nil {
				a.log.Warn("trending keywords branch failed", slog.String("category", cat), slog.Any("err", err))
				slot.keywordsFallback = true
				fetched = SyntheticKeywords(cat, keywords)
			}
			slot.keywords = fetched
			return nil
		})
	}

	g.Wait()

	result := &Result{
		Tier:        t,
		Bundles:     make([]models.ContentBundle, 0, len(cats)),
		GeneratedAt: time.Now().UTC(),
	}

	for i, cat := range cats {
		slot := &slots[i]
		if slot.articlesFallback || slot.headlinesFallback || slot.keywordsFallback {
			result.FallbackUsed = true
		}

		arts := slot.articles
		if personalized {
			for j := range arts {
				arts[j].Personalized = true
			}
		}

		result.Bundles = append(result.Bundles, models.ContentBundle{
			Category:     cat,
			Articles:     arts,
			Headlines:    slot.headlines,
			Personalized: personalized,
		})
	}

	result.TrendingKeywords = mergeKeywords(slots, keywords)
	return result
}

// BuildRecommendations assembles the recommendation feed. typ=auto resolves
// from the tier: anyone above PUBLIC gets the personalized feed.
func (a *Assembler) BuildRecommendations(ctx context.Context, t tier.Tier, typ string, categoryFilter string, limit int) *RecommendationResult {
	if typ == "" || typ == RecommendationAuto {
		if t == tier.Public {
			typ = RecommendationTrending
		} else {
			typ = RecommendationPersonalized
		}
	}

	ent := tier.Entitlements(t)
	cats := resolveCategories(categoryFilter, ent)
	if limit <= 0 {
		limit = 10
	}

	result := &RecommendationResult{
		Type:        typ,
		GeneratedAt: time.Now().UTC(),
	}

	var g errgroup.Group
	var recs []models.Recommendation
	var recsErr error
	var keywords []models.TrendingKeyword
	var keywordsErr error

	g.Go(func() error {
		branchCtx, cancel := context.WithTimeout(ctx, a.branchTimeout)
		defer cancel()
		if typ == RecommendationTrending {
			// The trending feed is built from the trending articles of the
			// last day, not from the scored recommendation service.
			var arts []models.Article
			arts, recsErr = a.src.Trending(branchCtx, category.ToCode(categoryFilter), trendingWindowHours, limit)
			recs = trendingRecommendations(arts, categoryFilter)
			return nil
		}
		recs, recsErr = a.src.Recommendations(branchCtx, typ, category.ToCode(categoryFilter), limit)
		return nil
	})
	g.Go(func() error {
		branchCtx, cancel := context.WithTimeout(ctx, a.branchTimeout)
		defer cancel()
		keywords, keywordsErr = a.src.TrendingKeywords(branchCtx, "", 8)
		return nil
	})
	g.Wait()

	if recsErr != nil || len(recs) == 0 {
		if recsErr != nil {
			a.log.Warn("recommendations branch failed", slog.Any("err", recsErr))
		}
		result.FallbackUsed = true
		recs = SyntheticRecommendations(cats, t, typ, limit)
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	result.Recommendations = recs

	if keywordsErr != nil {
		a.log.Warn("recommendation keywords branch failed", slog.Any("err", keywordsErr))
		result.FallbackUsed = true
		keywords = nil
		for i, cat := range cats {
			if i >= 8 {
				break
			}
			keywords = append(keywords, SyntheticKeywords(cat, 1)...)
		}
	}
	result.TrendingKeywords = keywords

	return result
}

// padArticles truncates to limit and tops up short results with the
// deterministic synthetic tail, so a bundle always holds exactly limit
// articles. The second return reports whether any synthetic item entered
// the bundle; callers surface that through fallbackUsed.
func padArticles(fetched []models.Article, cat string, t tier.Tier, limit int) ([]models.Article, bool) {
	if len(fetched) >= limit {
		return fetched[:limit], false
	}
	synthetic := SyntheticArticles(cat, t, limit)
	return append(fetched, synthetic[len(fetched):]...), true
}

func padHeadlines(fetched []models.Headline, cat string, limit int) ([]models.Headline, bool) {
	if len(fetched) >= limit {
		return fetched[:limit], false
	}
	synthetic := SyntheticHeadlines(cat, limit)
	return append(fetched, synthetic[len(fetched):]...), true
}

// mergeKeywords interleaves per-category keyword lists in category order and
// caps the merged list, keeping the output deterministic for a given input.
func mergeKeywords(slots []categorySlot, limit int) []models.TrendingKeyword {
	merged := make([]models.TrendingKeyword, 0, limit)
	for round := 0; len(merged) < limit; round++ {
		advanced := false
		for i := range slots {
			if round < len(slots[i].keywords) {
				merged = append(merged, slots[i].keywords[round])
				advanced = true
				if len(merged) == limit {
					return merged
				}
			}
		}
		if !advanced {
			break
		}
	}
	return merged
}

// trendingRecommendations reshapes trending articles into the scored
// recommendation form, ranked by their position in the feed.
func trendingRecommendations(arts []models.Article, cat string) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(arts))
	for i, art := range arts {
		recs = append(recs, models.Recommendation{
			Article:  art,
			Category: cat,
			Trending: true,
			Score:    100 - i,
			Tags:     []string{"트렌딩"},
		})
	}
	return recs
}

func resolveCategories(filter string, ent tier.Entitlement) []string {
	if filter != "" {
		return []string{filter}
	}
	cats := ent.DefaultCategories
	if len(cats) > ent.MaxCategories {
		cats = cats[:ent.MaxCategories]
	}
	return cats
}

func resolveLimit(requested, entitled int) int {
	if requested <= 0 || requested > entitled {
		return entitled
	}
	return requested
}

func positiveOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
