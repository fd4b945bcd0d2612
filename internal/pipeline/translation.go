package pipeline

import (
	"context"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/analysis"
)

// Translate returns text translated from sourceCode to targetCode. When the
// two codes coincide the result is the input verbatim and no provider call
// is made.
func Translate(ctx context.Context, client analysis.Client, text, sourceCode, targetCode string) (string, error) {
	if sourceCode == targetCode {
		return text, nil
	}
	return client.Translate(ctx, text, sourceCode, targetCode)
}
