// Package analysis is the boundary to the text-analysis provider: sentiment
// detection, entity detection and translation over transcript text.
package analysis

import "context"

// SentimentScore carries the per-label confidence scores returned with a
// sentiment detection.
type SentimentScore struct {
	Positive float64
	Negative float64
	Neutral  float64
	Mixed    float64
}

// Sentiment is the provider's verdict for one piece of text. Label is one of
// POSITIVE, NEGATIVE, NEUTRAL or MIXED.
type Sentiment struct {
	Label string
	Score SentimentScore
}

// Entity is one detected span of text with its category and confidence.
type Entity struct {
	Text  string
	Type  string
	Score float64
}

// Client issues text-analysis calls. Language arguments are provider
// language codes (see LanguageCode), not customer locales.
type Client interface {
	DetectSentiment(ctx context.Context, text, languageCode string) (Sentiment, error)
	DetectEntities(ctx context.Context, text, languageCode string) ([]Entity, error)
	Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error)
}
