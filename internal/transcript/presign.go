package transcript

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// The channel endpoint is an API Gateway websocket, so the connection URL is
// presigned for the execute-api service with an empty payload.
const (
	signingService   = "execute-api"
	emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// PresignURL builds a SigV4 presigned websocket URL for the given wss
// endpoint. The signature is carried in the query string so the browser-less
// websocket dial needs no extra headers.
func PresignURL(ctx context.Context, endpoint, region string, creds aws.Credentials) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid transcript endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("transcript endpoint %q has no host", endpoint)
	}

	// Sign as https; the signature only covers host and path.
	signURL := *u
	signURL.Scheme = "https"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build presign request: %w", err)
	}

	signer := v4.NewSigner()
	signed, _, err := signer.PresignHTTP(ctx, creds, req, emptyPayloadHash, signingService, region, time.Now())
	if err != nil {
		return "", fmt.Errorf("presign transcript url: %w", err)
	}

	return "wss" + strings.TrimPrefix(signed, "https"), nil
}
