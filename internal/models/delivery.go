package models

import "time"

// FallbackChannel selects the secondary delivery path used when the
// primary chat channel cannot deliver.
type FallbackChannel string

const (
	FallbackEmail FallbackChannel = "email"
	FallbackLink  FallbackChannel = "link"
)

// MaxReceivers is the provider hard limit on friends per message.
const MaxReceivers = 5

// DeliveryRequest describes one outbound newsletter share.
type DeliveryRequest struct {
	Title           string          `json:"title"`
	Summary         string          `json:"summary"`
	URL             string          `json:"url"`
	ReceiverUUIDs   []string        `json:"receiverUuids"`
	FallbackChannel FallbackChannel `json:"fallbackMethod"`
}

// PermissionState reports whether a channel scope is currently granted.
// It is queried fresh on every attempt; the provider is authoritative.
type PermissionState struct {
	Channel string   `json:"channel"`
	Granted bool     `json:"granted"`
	Scopes  []string `json:"scopes,omitempty"`
}

// EngagementEvent is the analytics record produced by the api service and
// indexed by the worker.
type EngagementEvent struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Channel   string    `json:"channel,omitempty"`
	Category  string    `json:"category,omitempty"`
	TargetURL string    `json:"targetUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Engagement event kinds.
const (
	EventNewsletterShare = "newsletter_share"
	EventNewsletterClick = "newsletter_click"
	EventNewsClick       = "news_click"
)
