// Package tier classifies requests into personalization service levels and
// exposes the static entitlement table attached to each level.
package tier

import "github.com/newsphere/newsletter-bff/internal/category"

// Tier is the personalization entitlement level of a single request. It is
// derived per request and never persisted.
type Tier string

const (
	Public             Tier = "PUBLIC"
	AuthenticatedBasic Tier = "AUTHENTICATED_BASIC"
	Personalized       Tier = "PERSONALIZED"
)

// Subscription is one active category subscription of a user.
type Subscription struct {
	Category category.Code `json:"category"`
	Active   bool          `json:"active"`
}

// Classify derives the tier from auth state and subscription records.
// A subscription record is authoritative on its own: it implies the user
// could authenticate at some point, so the token is not re-checked here.
func Classify(hasToken bool, subscriptions []Subscription) Tier {
	if len(subscriptions) > 0 {
		return Personalized
	}
	if hasToken {
		return AuthenticatedBasic
	}
	return Public
}

// Entitlement is the configuration record attached to a tier.
type Entitlement struct {
	ArticlesPerCategory int      `json:"articlesPerCategory"`
	MaxCategories       int      `json:"maxCategories"`
	DefaultCategories   []string `json:"defaultCategories"`
	Features            []string `json:"features"`
	Limitations         []string `json:"limitations,omitempty"`
	Message             string   `json:"message"`
	UpgradePrompt       string   `json:"upgradePrompt,omitempty"`
}

var entitlements = map[Tier]Entitlement{
	Public: {
		ArticlesPerCategory: 5,
		MaxCategories:       5,
		DefaultCategories:   []string{"정치", "경제", "사회", "IT/과학", "세계"},
		Features:            []string{"기본 뉴스", "트렌딩 키워드", "인기 카테고리"},
		Limitations:         []string{"제한된 뉴스 수", "개인화 없음", "구독 관리 불가"},
		Message:             "📰 일반 뉴스를 제공합니다",
		UpgradePrompt:       "🔐 로그인하시면 관심사 기반 맞춤 뉴스를 받아보실 수 있어요!",
	},
	AuthenticatedBasic: {
		ArticlesPerCategory: 7,
		MaxCategories:       6,
		DefaultCategories:   []string{"정치", "경제", "사회", "생활", "IT/과학", "세계"},
		Features:            []string{"확장 뉴스", "구독 관리", "개인화 준비"},
		Limitations:         []string{"제한된 개인화", "AI 추천 없음"},
		Message:             "🔐 로그인하셨습니다. 카테고리를 구독하면 맞춤 뉴스를 받아보실 수 있어요!",
		UpgradePrompt:       "🎯 관심 카테고리를 구독하면 맞춤 뉴스를 받아보실 수 있어요!",
	},
	Personalized: {
		ArticlesPerCategory: 10,
		MaxCategories:       9,
		DefaultCategories:   category.Labels(),
		Features:            []string{"완전 개인화", "AI 추천", "맞춤 통계"},
		Limitations:         nil,
		Message:             "🎯 맞춤형 뉴스레터를 제공합니다",
		UpgradePrompt:       "",
	},
}

// Entitlements returns the static record for a tier. Unknown tiers get the
// public record.
func Entitlements(t Tier) Entitlement {
	if e, ok := entitlements[t]; ok {
		return e
	}
	return entitlements[Public]
}
