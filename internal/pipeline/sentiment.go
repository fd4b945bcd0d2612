// Package pipeline holds the pure annotation rules shared by the session's
// sentiment, entity-highlight and translation pipelines.
package pipeline

import (
	"strings"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/analysis"
)

// Mood is one of the five fixed sentiment display states.
type Mood string

const (
	MoodNeutral   Mood = "neutral"
	MoodDelighted Mood = "delighted"
	MoodHappy     Mood = "happy"
	MoodUpset     Mood = "upset"
	MoodUncertain Mood = "uncertain"
)

// delightedThreshold is the positive-score confidence above which a POSITIVE
// verdict upgrades from happy to delighted.
const delightedThreshold = 0.9885

// SentimentDisplay is what the dashboard shows for the current sentiment.
type SentimentDisplay struct {
	Mood  Mood   `json:"mood"`
	Label string `json:"label"`
}

// NeutralSentiment is the display state before any analysis has run.
var NeutralSentiment = SentimentDisplay{Mood: MoodNeutral, Label: "Neutral"}

// MapSentiment maps a provider sentiment verdict to a display state.
// Anything outside the four known labels, including MIXED, shows as
// uncertain.
func MapSentiment(s analysis.Sentiment) SentimentDisplay {
	d := SentimentDisplay{Label: titleCase(s.Label)}
	switch {
	case s.Label == "NEUTRAL":
		d.Mood = MoodNeutral
	case s.Label == "POSITIVE" && s.Score.Positive > delightedThreshold:
		d.Mood = MoodDelighted
	case s.Label == "POSITIVE":
		d.Mood = MoodHappy
	case s.Label == "NEGATIVE":
		d.Mood = MoodUpset
	default:
		d.Mood = MoodUncertain
	}
	return d
}

func titleCase(label string) string {
	if label == "" {
		return ""
	}
	return label[:1] + strings.ToLower(label[1:])
}
