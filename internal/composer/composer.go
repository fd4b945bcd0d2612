// Package composer implements the interactive reply flow: hold the call,
// deliver a spoken translation of the agent's text to the customer, wait out
// the playback, resume the call.
package composer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/logging"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/metrics"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/telephony"
)

var (
	// ErrNoActiveContact is returned when no call is live.
	ErrNoActiveContact = errors.New("no active contact")
	// ErrEmptyText is returned for a blank reply.
	ErrEmptyText = errors.New("reply text is empty")
	// ErrNotConfigured is returned when no delivery endpoint is set.
	ErrNotConfigured = errors.New("reply delivery endpoint not configured")
)

// The agent types in the default locale; the delivery endpoint translates
// and synthesizes toward the customer's language.
const sourceLanguage = "en-US"

// resumeBuffer pads the returned playback duration before the call is taken
// off hold, covering synthesis and playout startup.
const resumeBuffer = 3 * time.Second

// Composer submits one reply at a time against the live call leg.
type Composer struct {
	endpoint   string
	httpClient *http.Client
	sleep      func(time.Duration)
	log        zerolog.Logger
}

// New creates a Composer for the given delivery endpoint.
func New(endpoint string) *Composer {
	return &Composer{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		sleep:      time.Sleep,
		log:        logging.WithComponent("composer"),
	}
}

// Submit holds the call, delivers text to the customer via the external
// endpoint, waits out the returned playback duration plus a fixed buffer,
// and resumes the call. Once the call has been put on hold, resume is
// attempted exactly once on every path; a resume failure is logged, never
// returned, so the call is not left on hold by this component's own error.
func (c *Composer) Submit(ctx context.Context, call telephony.CallController, text, contactID, targetLanguage string) (err error) {
	defer func() { metrics.Default.RecordReply(err) }()

	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if contactID == "" {
		return ErrNoActiveContact
	}
	if c.endpoint == "" {
		return ErrNotConfigured
	}

	log := c.log.With().Str("contactId", contactID).Logger()

	if err := call.Hold(ctx); err != nil {
		return fmt.Errorf("hold call: %w", err)
	}
	log.Info().Msg("call on hold")

	resumed := false
	resume := func() {
		if resumed {
			return
		}
		resumed = true
		if rerr := call.Resume(ctx); rerr != nil {
			log.Error().Err(rerr).Msg("failed to resume call")
			return
		}
		log.Info().Msg("call resumed")
	}
	defer resume()

	durationMs, err := c.deliver(ctx, text, contactID, targetLanguage)
	if err != nil {
		return err
	}

	wait := time.Duration(durationMs)*time.Millisecond + resumeBuffer
	log.Info().Dur("wait", wait).Msg("reply delivered; waiting for playback")
	c.sleep(wait)

	resume()
	return nil
}

// deliver calls the external delivery endpoint and returns the playback
// duration in milliseconds.
func (c *Composer) deliver(ctx context.Context, text, contactID, targetLanguage string) (int, error) {
	params := url.Values{}
	params.Set("txt", text)
	params.Set("sourceLanguageCode", sourceLanguage)
	params.Set("targetLanguageCode", targetLanguage)
	params.Set("contactId", contactID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build delivery request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("reply delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("reply delivery failed: status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read delivery response: %w", err)
	}
	durationMs, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, fmt.Errorf("unexpected delivery response %q: %w", string(body), err)
	}
	return durationMs, nil
}
