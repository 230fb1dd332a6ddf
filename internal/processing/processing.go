// Package processing holds the small text and id helpers shared by the
// delivery path and the analytics pipeline.
package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// CleanText decodes HTML entities and squeezes whitespace. Used for email
// subjects and share-link previews where raw upstream text is too noisy.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// Truncate cuts a string to maxRunes runes, appending an ellipsis when
// anything was dropped. The chat provider rejects over-long descriptions.
func Truncate(input string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= maxRunes {
		return input
	}
	return string(runes[:maxRunes]) + "..."
}

// Snippet returns the first sentence of text, capped at maxWords words.
// Used as the preview line for share links and email bodies.
func Snippet(text string, maxWords int) string {
	clean := CleanText(text)
	if clean == "" {
		return ""
	}

	if end := strings.IndexAny(clean, ".!?"); end > 0 {
		clean = strings.TrimSpace(clean[:end])
	}

	words := strings.Fields(clean)
	if len(words) == 0 {
		return ""
	}
	if maxWords > 0 && len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + "..."
	}
	return strings.Join(words, " ")
}

// BuildEventID hashes the stable fields of an engagement event so replayed
// messages dedupe to the same document.
func BuildEventID(kind, channel, targetURL string, ts time.Time) string {
	s := sha1.Sum([]byte(kind + "|" + channel + "|" + targetURL + "|" + ts.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(s[:])
}
