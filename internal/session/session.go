// Package session owns the per-contact state of the agent-assist dashboard:
// the contact lifecycle, the credential context, the transcript store and
// the three annotation pipelines that react to it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/zerolog"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/analysis"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/logging"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/metrics"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/pipeline"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/telephony"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/transcript"
)

// State is the contact lifecycle state as seen by the dashboard.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateEnded      State = "ended"
)

// analysisTimeout bounds every external text-analysis call.
const analysisTimeout = 10 * time.Second

// Credentials is the short-lived triple minted per contact. All three fields
// are published together or not at all.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Channel is the part of the transcript channel the session drives.
type Channel interface {
	SetContactID(id string)
	Close() error
}

// ChannelOpener opens a transcript channel for one contact.
type ChannelOpener func(ctx context.Context, cfg transcript.Config) (Channel, error)

// AnalyzerFactory builds a text-analysis client from a contact's
// credentials.
type AnalyzerFactory func(region string, creds Credentials) analysis.Client

// Config wires a Session. OpenChannel and NewAnalyzer default to the real
// transcript channel and the AWS analysis client.
type Config struct {
	Region             string
	TranscriptEndpoint string
	OpenChannel        ChannelOpener
	NewAnalyzer        AnalyzerFactory
}

// EntityAnnotation holds a segment's text in both plain and highlighted
// form so the dashboard can switch view modes without reprocessing.
type EntityAnnotation struct {
	Original    string `json:"original"`
	Highlighted string `json:"highlighted"`
}

// Snapshot is the dashboard-facing view of the session.
type Snapshot struct {
	State                State                                `json:"state"`
	ContactID            string                               `json:"contactId"`
	AgentState           string                               `json:"agentState"`
	CustomerLanguage     string                               `json:"customerLanguage"`
	CustomerLanguageName string                               `json:"customerLanguageName"`
	TargetLanguage       string                               `json:"targetLanguage"`
	EntityView           bool                                 `json:"entityView"`
	ReplyInFlight        bool                                 `json:"replyInFlight"`
	Segments             []transcript.Segment                 `json:"segments"`
	Sentiments           map[string]pipeline.SentimentDisplay `json:"sentiments"`
	Entities             map[string]EntityAnnotation          `json:"entities"`
	Translations         map[string]string                    `json:"translations"`
	CurrentSentiment     pipeline.SentimentDisplay            `json:"currentSentiment"`
}

// Internal loop events. All session state is mutated by the run loop only,
// so telephony callbacks, channel frames and pipeline completions never race
// each other.
type event interface{}

type telephonyEvent struct{ ev telephony.Event }

type transcriptEvent struct{ up transcript.Update }

type channelOpened struct {
	gen       uint64
	ch        Channel
	contactID string
}

type channelFailed struct {
	gen uint64
	err error
}

type sentimentResult struct {
	segmentID string
	display   pipeline.SentimentDisplay
}

type entitiesResult struct {
	segmentID   string
	original    string
	highlighted string
}

type translationResult struct {
	segmentID string
	text      string
}

type viewModeChanged struct{ entities bool }

type targetLanguageChanged struct{ code string }

// Session is one agent's live-assist session. A session survives across
// contacts: each Connecting event swaps the credential context and the
// transcript channel, while the store and annotations remain reviewable
// after a call ends.
type Session struct {
	cfg Config
	log zerolog.Logger

	events chan event
	done   chan struct{}

	mu               sync.RWMutex
	state            State
	contactID        string
	agentState       string
	creds            Credentials
	hasCreds         bool
	analyzer         analysis.Client
	customerLanguage string
	targetLanguage   string
	entityView       bool
	replyInFlight    bool
	channel          Channel
	channelGen       uint64

	store            *transcript.Store
	sentiments       map[string]pipeline.SentimentDisplay
	entities         map[string]EntityAnnotation
	translations     map[string]string
	currentSentiment pipeline.SentimentDisplay
}

// New constructs an idle session.
func New(cfg Config) *Session {
	if cfg.OpenChannel == nil {
		cfg.OpenChannel = func(ctx context.Context, c transcript.Config) (Channel, error) {
			return transcript.Open(ctx, c)
		}
	}
	if cfg.NewAnalyzer == nil {
		cfg.NewAnalyzer = func(region string, creds Credentials) analysis.Client {
			provider := awscreds.NewStaticCredentialsProvider(
				creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)
			return analysis.NewAWSClient(region, provider)
		}
	}
	return &Session{
		cfg:              cfg,
		log:              logging.WithComponent("session"),
		events:           make(chan event, 256),
		done:             make(chan struct{}),
		state:            StateIdle,
		customerLanguage: analysis.DefaultLocale,
		targetLanguage:   "en",
		store:            transcript.NewStore(),
		sentiments:       make(map[string]pipeline.SentimentDisplay),
		entities:         make(map[string]EntityAnnotation),
		translations:     make(map[string]string),
		currentSentiment: pipeline.NeutralSentiment,
	}
}

// Start launches the event loop and returns a stop function that tears the
// session down, closing any live transcript channel.
func (s *Session) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	go s.run(ctx)
	return func() {
		cancel()
		<-s.done
	}
}

func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.teardown()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

// post hands an event to the run loop. Events posted after shutdown are
// discarded.
func (s *Session) post(ev event) {
	select {
	case <-s.done:
	case s.events <- ev:
	}
}

// HandleTelephonyEvent feeds one contact/agent event from the softphone
// bridge into the session.
func (s *Session) HandleTelephonyEvent(ev telephony.Event) {
	s.post(telephonyEvent{ev: ev})
}

// SetEntityView toggles the entity display mode. Turning it on schedules an
// entity-highlight run over every known segment.
func (s *Session) SetEntityView(on bool) {
	s.post(viewModeChanged{entities: on})
}

// SetTargetLanguage selects the translation target and re-translates the
// latest segment.
func (s *Session) SetTargetLanguage(code string) {
	if code == "" {
		return
	}
	s.post(targetLanguageChanged{code: code})
}

// SetReplyInFlight flips the per-call reply badge shown on the dashboard.
func (s *Session) SetReplyInFlight(on bool) {
	s.mu.Lock()
	s.replyInFlight = on
	s.mu.Unlock()
}

// ContactID returns the active contact id, empty when no call is live.
func (s *Session) ContactID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contactID
}

// CustomerLanguage returns the customer locale for the current session.
func (s *Session) CustomerLanguage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customerLanguage
}

// Snapshot returns a copy of the dashboard-facing state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sentiments := make(map[string]pipeline.SentimentDisplay, len(s.sentiments))
	for k, v := range s.sentiments {
		sentiments[k] = v
	}
	entities := make(map[string]EntityAnnotation, len(s.entities))
	for k, v := range s.entities {
		entities[k] = v
	}
	translations := make(map[string]string, len(s.translations))
	for k, v := range s.translations {
		translations[k] = v
	}

	return Snapshot{
		State:                s.state,
		ContactID:            s.contactID,
		AgentState:           s.agentState,
		CustomerLanguage:     s.customerLanguage,
		CustomerLanguageName: analysis.DisplayName(s.customerLanguage),
		TargetLanguage:       s.targetLanguage,
		EntityView:           s.entityView,
		ReplyInFlight:        s.replyInFlight,
		Segments:             s.store.Snapshot(),
		Sentiments:           sentiments,
		Entities:             entities,
		Translations:         translations,
		CurrentSentiment:     s.currentSentiment,
	}
}

func (s *Session) teardown() {
	s.mu.Lock()
	ch := s.channel
	s.channel = nil
	s.mu.Unlock()
	if ch != nil {
		_ = ch.Close()
	}
}

func (s *Session) handle(ctx context.Context, ev event) {
	switch e := ev.(type) {
	case telephonyEvent:
		s.handleTelephony(ctx, e.ev)
	case transcriptEvent:
		s.handleUpdate(ctx, e.up)
	case channelOpened:
		s.handleChannelOpened(e)
	case channelFailed:
		s.log.Error().Err(e.err).Msg("transcript channel open failed")
	case sentimentResult:
		s.mu.Lock()
		s.sentiments[e.segmentID] = e.display
		s.currentSentiment = e.display
		s.mu.Unlock()
	case entitiesResult:
		s.mu.Lock()
		s.entities[e.segmentID] = EntityAnnotation{Original: e.original, Highlighted: e.highlighted}
		s.mu.Unlock()
	case translationResult:
		s.mu.Lock()
		s.translations[e.segmentID] = e.text
		s.mu.Unlock()
	case viewModeChanged:
		s.handleViewMode(ctx, e.entities)
	case targetLanguageChanged:
		s.handleTargetLanguage(ctx, e.code)
	}
}

func (s *Session) handleTelephony(ctx context.Context, ev telephony.Event) {
	switch ev.Type {
	case telephony.EventConnecting:
		s.handleConnecting(ctx, ev)
	case telephony.EventConnected:
		s.mu.Lock()
		s.state = StateConnected
		s.mu.Unlock()
		s.log.Info().Str("contactId", ev.ContactID).Msg("contact connected")
	case telephony.EventEnded:
		s.mu.Lock()
		s.state = StateEnded
		s.contactID = ""
		s.replyInFlight = false
		s.mu.Unlock()
		// The store, annotations and credentials stay for post-call review.
		s.log.Info().Msg("contact ended")
	case telephony.EventAgentState:
		s.mu.Lock()
		s.agentState = ev.AgentState
		s.mu.Unlock()
		s.log.Info().Str("state", ev.AgentState).Msg("agent state changed")
	default:
		s.log.Warn().Str("type", string(ev.Type)).Msg("unknown telephony event")
	}
}

// handleConnecting is the Connecting transition: it records the contact,
// swaps the credential context atomically, and opens a fresh transcript
// channel when the contact flow minted credentials for this call.
func (s *Session) handleConnecting(ctx context.Context, ev telephony.Event) {
	creds, haveCreds := credentialsFromAttributes(ev.Attributes)

	s.mu.Lock()
	s.state = StateConnecting
	s.contactID = ev.ContactID
	if lang := ev.Attributes[telephony.AttrLanguageCode]; lang != "" {
		s.customerLanguage = lang
	}
	if haveCreds {
		s.creds = creds
		s.hasCreds = true
		s.analyzer = s.cfg.NewAnalyzer(s.cfg.Region, creds)
	}
	oldCh := s.channel
	s.channel = nil
	s.channelGen++
	gen := s.channelGen
	contactID := s.contactID
	lang := s.customerLanguage
	s.mu.Unlock()

	if oldCh != nil {
		_ = oldCh.Close()
	}

	log := logging.WithContact("session", contactID)
	log.Info().Str("customerLanguage", lang).Msg("contact connecting")

	if !haveCreds {
		log.Warn().Msg("contact attributes carry no credentials; transcript channel not opened")
		return
	}
	if s.cfg.TranscriptEndpoint == "" {
		log.Warn().Msg("no transcript endpoint configured; transcript channel not opened")
		return
	}

	// Credentials are published before the open; the channel constructor
	// requires the full triple for signing.
	go s.openChannel(ctx, gen, creds, contactID)
}

func (s *Session) openChannel(ctx context.Context, gen uint64, creds Credentials, contactID string) {
	ch, err := s.cfg.OpenChannel(ctx, transcript.Config{
		Endpoint: s.cfg.TranscriptEndpoint,
		Region:   s.cfg.Region,
		Credentials: aws.Credentials{
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
			SessionToken:    creds.SessionToken,
		},
		OnUpdate: func(up transcript.Update) {
			s.post(transcriptEvent{up: up})
		},
	})
	if err != nil {
		s.post(channelFailed{gen: gen, err: err})
		return
	}
	s.post(channelOpened{gen: gen, ch: ch, contactID: contactID})
}

func (s *Session) handleChannelOpened(e channelOpened) {
	s.mu.Lock()
	if e.gen != s.channelGen {
		s.mu.Unlock()
		// A newer contact superseded this open while it was in flight.
		_ = e.ch.Close()
		return
	}
	s.channel = e.ch
	s.mu.Unlock()
	e.ch.SetContactID(e.contactID)
}

// handleUpdate applies one transcript frame and schedules the annotation
// pipelines that depend on it.
func (s *Session) handleUpdate(ctx context.Context, up transcript.Update) {
	s.store.Upsert(up.SegmentID, up.Text)

	s.mu.RLock()
	analyzer := s.analyzer
	hasCreds := s.hasCreds
	locale := s.customerLanguage
	target := s.targetLanguage
	entityView := s.entityView
	s.mu.RUnlock()

	if !hasCreds || analyzer == nil || up.Text == "" {
		return
	}
	source := analysis.LanguageCode(locale)

	go s.runSentiment(ctx, analyzer, up.SegmentID, up.Text, source)
	go s.runTranslation(ctx, analyzer, up.SegmentID, up.Text, source, target)
	if entityView {
		go s.runEntities(ctx, analyzer, s.store.Snapshot(), source)
	}
}

func (s *Session) handleViewMode(ctx context.Context, entities bool) {
	s.mu.Lock()
	s.entityView = entities
	analyzer := s.analyzer
	hasCreds := s.hasCreds
	locale := s.customerLanguage
	s.mu.Unlock()

	if !entities || !hasCreds || analyzer == nil {
		return
	}
	go s.runEntities(ctx, analyzer, s.store.Snapshot(), analysis.LanguageCode(locale))
}

func (s *Session) handleTargetLanguage(ctx context.Context, code string) {
	s.mu.Lock()
	s.targetLanguage = code
	analyzer := s.analyzer
	hasCreds := s.hasCreds
	locale := s.customerLanguage
	s.mu.Unlock()

	latest, ok := s.store.Latest()
	if !ok || !hasCreds || analyzer == nil {
		return
	}
	go s.runTranslation(ctx, analyzer, latest.ID, latest.Text, analysis.LanguageCode(locale), code)
}

// The pipeline runners below execute off the loop; results come back as
// events. A result may be stale when a newer frame for the same segment is
// already in flight — last-to-complete wins, and the newer frame's own run
// supersedes it.

func (s *Session) runSentiment(ctx context.Context, client analysis.Client, segmentID, text, source string) {
	cctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()
	res, err := client.DetectSentiment(cctx, text, source)
	metrics.Default.RecordAnalysis("sentiment", err)
	if err != nil {
		s.log.Warn().Err(err).Str("segmentId", segmentID).Msg("sentiment detection failed; keeping previous value")
		return
	}
	s.post(sentimentResult{segmentID: segmentID, display: pipeline.MapSentiment(res)})
}

func (s *Session) runTranslation(ctx context.Context, client analysis.Client, segmentID, text, source, target string) {
	cctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()
	translated, err := pipeline.Translate(cctx, client, text, source, target)
	metrics.Default.RecordAnalysis("translation", err)
	if err != nil {
		s.log.Warn().Err(err).Str("segmentId", segmentID).Msg("translation failed; keeping previous value")
		return
	}
	s.post(translationResult{segmentID: segmentID, text: translated})
}

func (s *Session) runEntities(ctx context.Context, client analysis.Client, segments []transcript.Segment, source string) {
	for _, seg := range segments {
		if seg.Text == "" {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, analysisTimeout)
		entities, err := client.DetectEntities(cctx, seg.Text, source)
		cancel()
		metrics.Default.RecordAnalysis("entities", err)
		if err != nil {
			s.log.Warn().Err(err).Str("segmentId", seg.ID).Msg("entity detection failed; keeping previous value")
			continue
		}
		s.post(entitiesResult{
			segmentID:   seg.ID,
			original:    seg.Text,
			highlighted: pipeline.Highlight(seg.Text, entities),
		})
	}
}

// credentialsFromAttributes extracts the minted triple. Partial attribute
// sets publish nothing, so a pipeline can never observe a half-updated
// credential context.
func credentialsFromAttributes(attrs map[string]string) (Credentials, bool) {
	creds := Credentials{
		AccessKeyID:     attrs[telephony.AttrAccessKeyID],
		SecretAccessKey: attrs[telephony.AttrSecretAccessKey],
		SessionToken:    attrs[telephony.AttrSessionToken],
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" || creds.SessionToken == "" {
		return Credentials{}, false
	}
	return creds, true
}
