package transcript

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func TestPresignURL(t *testing.T) {
	creds := aws.Credentials{
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		SessionToken:    "session-token",
	}

	signed, err := PresignURL(context.Background(), "wss://ws.example.com/prod", "us-east-1", creds)
	if err != nil {
		t.Fatalf("presign: %v", err)
	}

	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if u.Scheme != "wss" {
		t.Fatalf("expected wss scheme, got %q", u.Scheme)
	}
	if u.Host != "ws.example.com" || u.Path != "/prod" {
		t.Fatalf("host/path changed: %s%s", u.Host, u.Path)
	}

	q := u.Query()
	if got := q.Get("X-Amz-Algorithm"); got != "AWS4-HMAC-SHA256" {
		t.Fatalf("unexpected algorithm: %q", got)
	}
	cred := q.Get("X-Amz-Credential")
	if !strings.HasPrefix(cred, "AKIDEXAMPLE/") || !strings.Contains(cred, "/us-east-1/execute-api/aws4_request") {
		t.Fatalf("unexpected credential scope: %q", cred)
	}
	if q.Get("X-Amz-Signature") == "" {
		t.Fatal("missing signature")
	}
	if q.Get("X-Amz-Security-Token") != "session-token" {
		t.Fatalf("missing session token: %q", q.Get("X-Amz-Security-Token"))
	}
}

func TestPresignURL_InvalidEndpoint(t *testing.T) {
	_, err := PresignURL(context.Background(), "not a url", "us-east-1", aws.Credentials{})
	if err == nil {
		t.Fatal("expected error for invalid endpoint")
	}
}
