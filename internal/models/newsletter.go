package models

import "time"

// Article is a single newsletter item, either fetched from the news service
// or synthesized when an upstream call fails.
type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Summary      string    `json:"summary"`
	URL          string    `json:"url"`
	PublishedAt  time.Time `json:"publishedAt"`
	Source       string    `json:"source"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Personalized bool      `json:"personalized"`
}

// Headline is a compact teaser shown next to the article list.
type Headline struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Time  string `json:"time"`
	Views int    `json:"views"`
}

// TrendingKeyword ties a keyword to the category it trends in.
type TrendingKeyword struct {
	Keyword  string `json:"keyword"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}

// ContentBundle groups everything assembled for one category. Bundles are
// built fresh per request and never mutated afterwards.
type ContentBundle struct {
	Category     string     `json:"category"`
	Articles     []Article  `json:"articles"`
	Headlines    []Headline `json:"headlines"`
	Personalized bool       `json:"personalized"`
}

// Recommendation is a scored article suggestion from the hybrid endpoint.
type Recommendation struct {
	Article
	Category string   `json:"category"`
	Trending bool     `json:"trending"`
	Score    int      `json:"score"`
	Tags     []string `json:"tags"`
}
