package pipeline

import (
	"testing"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/analysis"
)

func TestMapSentiment(t *testing.T) {
	cases := []struct {
		name     string
		label    string
		positive float64
		want     Mood
	}{
		{"neutral", "NEUTRAL", 0, MoodNeutral},
		{"high confidence positive", "POSITIVE", 0.99, MoodDelighted},
		{"plain positive", "POSITIVE", 0.5, MoodHappy},
		{"positive at threshold stays happy", "POSITIVE", 0.9885, MoodHappy},
		{"negative", "NEGATIVE", 0, MoodUpset},
		{"negative with high positive score", "NEGATIVE", 0.99, MoodUpset},
		{"mixed", "MIXED", 0, MoodUncertain},
		{"unexpected label", "WEIRD", 0, MoodUncertain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapSentiment(analysis.Sentiment{
				Label: tc.label,
				Score: analysis.SentimentScore{Positive: tc.positive},
			})
			if got.Mood != tc.want {
				t.Fatalf("mood = %q, want %q", got.Mood, tc.want)
			}
		})
	}
}

func TestMapSentiment_Label(t *testing.T) {
	got := MapSentiment(analysis.Sentiment{Label: "POSITIVE", Score: analysis.SentimentScore{Positive: 0.4}})
	if got.Label != "Positive" {
		t.Fatalf("label = %q, want Positive", got.Label)
	}
}
