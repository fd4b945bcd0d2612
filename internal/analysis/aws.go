package analysis

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// AWSClient implements Client against Amazon Comprehend and Amazon
// Translate. One instance is built per contact from that contact's minted
// credentials.
type AWSClient struct {
	comprehend *comprehend.Client
	translate  *translate.Client
}

// NewAWSClient builds the provider clients for the given region and
// credentials.
func NewAWSClient(region string, creds aws.CredentialsProvider) *AWSClient {
	return &AWSClient{
		comprehend: comprehend.New(comprehend.Options{Region: region, Credentials: creds}),
		translate:  translate.New(translate.Options{Region: region, Credentials: creds}),
	}
}

// DetectSentiment returns the provider sentiment label and scores for text.
func (c *AWSClient) DetectSentiment(ctx context.Context, text, languageCode string) (Sentiment, error) {
	out, err := c.comprehend.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: comprehendtypes.LanguageCode(languageCode),
	})
	if err != nil {
		return Sentiment{}, fmt.Errorf("detect sentiment: %w", err)
	}
	s := Sentiment{Label: string(out.Sentiment)}
	if out.SentimentScore != nil {
		s.Score = SentimentScore{
			Positive: float64(aws.ToFloat32(out.SentimentScore.Positive)),
			Negative: float64(aws.ToFloat32(out.SentimentScore.Negative)),
			Neutral:  float64(aws.ToFloat32(out.SentimentScore.Neutral)),
			Mixed:    float64(aws.ToFloat32(out.SentimentScore.Mixed)),
		}
	}
	return s, nil
}

// DetectEntities returns the entities detected in text.
func (c *AWSClient) DetectEntities(ctx context.Context, text, languageCode string) ([]Entity, error) {
	out, err := c.comprehend.DetectEntities(ctx, &comprehend.DetectEntitiesInput{
		Text:         aws.String(text),
		LanguageCode: comprehendtypes.LanguageCode(languageCode),
	})
	if err != nil {
		return nil, fmt.Errorf("detect entities: %w", err)
	}
	entities := make([]Entity, 0, len(out.Entities))
	for _, e := range out.Entities {
		entities = append(entities, Entity{
			Text:  aws.ToString(e.Text),
			Type:  string(e.Type),
			Score: float64(aws.ToFloat32(e.Score)),
		})
	}
	return entities, nil
}

// Translate translates text between two provider language codes.
func (c *AWSClient) Translate(ctx context.Context, text, sourceCode, targetCode string) (string, error) {
	out, err := c.translate.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(sourceCode),
		TargetLanguageCode: aws.String(targetCode),
	})
	if err != nil {
		return "", fmt.Errorf("translate text: %w", err)
	}
	return aws.ToString(out.TranslatedText), nil
}
