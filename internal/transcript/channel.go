// Package transcript implements the streaming customer-transcript channel
// and the store of transcript segments it feeds.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/logging"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/metrics"
)

// ackMarker identifies the structured connection-acknowledgement frame among
// the otherwise @-delimited transcript frames.
const ackMarker = "connectionId"

// Update is one partial or final transcript-segment update from the channel.
type Update struct {
	SegmentID string
	Text      string
	Partial   bool
}

// Config describes a transcript channel connection.
type Config struct {
	// Endpoint is the wss URL of the transcript websocket.
	Endpoint string
	Region   string
	// Credentials sign the connection URL; they are the short-lived triple
	// minted per contact.
	Credentials aws.Credentials
	// OnUpdate receives every valid transcript frame. It must not call back
	// into the Channel.
	OnUpdate func(Update)
}

type outboundMessage struct {
	Action string `json:"action"`
	Data   string `json:"data"`
}

type connectionAck struct {
	ConnectionID string `json:"connectionId"`
}

// Channel is a live websocket connection delivering transcript updates for
// one contact. It performs the newcall handshake on open and sends the
// connection/contact bind message exactly once, as soon as both identifiers
// are known.
type Channel struct {
	cfg  Config
	conn *websocket.Conn
	log  zerolog.Logger

	mu           sync.Mutex
	connectionID string
	contactID    string
	bindSent     bool
	closed       bool

	closeOnce sync.Once
}

// Open presigns the endpoint URL with the given credentials, dials the
// websocket and sends the initial handshake. There is no automatic
// reconnect; a failure here is fatal for this contact's channel.
func Open(ctx context.Context, cfg Config) (*Channel, error) {
	signed, err := PresignURL(ctx, cfg.Endpoint, cfg.Region, cfg.Credentials)
	if err != nil {
		return nil, err
	}
	return open(ctx, cfg, signed)
}

// open dials an already-built URL. Split out from Open so tests can dial a
// plain ws endpoint without signing.
func open(ctx context.Context, cfg Config, dialURL string) (*Channel, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, dialURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial transcript channel: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial transcript channel: %w", err)
	}

	c := &Channel{
		cfg:  cfg,
		conn: conn,
		log:  logging.WithComponent("transcript-channel"),
	}

	handshake := outboundMessage{Action: "newcall", Data: "connId@1234|contactId@1234"}
	if err := conn.WriteJSON(handshake); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send channel handshake: %w", err)
	}
	c.log.Info().Str("endpoint", cfg.Endpoint).Msg("transcript channel open")

	go c.readLoop()
	return c, nil
}

// SetContactID records the contact identifier from the telephony lifecycle
// and sends the bind message if the connection identifier is already known.
func (c *Channel) SetContactID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contactID = id
	c.maybeSendBindLocked()
}

// ConnectionID returns the identifier assigned by the channel, if known yet.
func (c *Channel) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectionID
}

// Close tears down the transport. No update is delivered after Close
// returns.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		err = c.conn.Close()
		c.log.Info().Msg("transcript channel closed")
	})
	return err
}

func (c *Channel) readLoop() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.log.Warn().Err(err).Msg("transcript channel read failed")
			}
			return
		}
		c.handleFrame(message)
	}
}

// handleFrame dispatches one inbound frame: a JSON connection ack, a valid
// @-delimited transcript triple, or a malformed frame that is logged and
// dropped.
func (c *Channel) handleFrame(data []byte) {
	payload := string(data)

	if strings.Contains(payload, ackMarker) {
		var ack connectionAck
		if err := json.Unmarshal(data, &ack); err != nil {
			c.log.Warn().Err(err).Str("frame", payload).Msg("dropping unparseable connection ack")
			metrics.Default.RecordMalformedFrame()
			return
		}
		if ack.ConnectionID == "" {
			c.log.Warn().Str("frame", payload).Msg("connection ack without connectionId")
			metrics.Default.RecordMalformedFrame()
			return
		}
		metrics.Default.RecordFrame("connection_ack")
		c.mu.Lock()
		c.connectionID = ack.ConnectionID
		c.maybeSendBindLocked()
		c.mu.Unlock()
		return
	}

	parts := strings.Split(payload, "@")
	if len(parts) < 3 {
		c.log.Warn().Str("frame", payload).Msg("dropping malformed transcript frame")
		metrics.Default.RecordMalformedFrame()
		return
	}
	metrics.Default.RecordFrame("transcript")

	up := Update{
		Text:      parts[0],
		Partial:   parts[1] != "false",
		SegmentID: parts[2],
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.cfg.OnUpdate == nil {
		return
	}
	c.cfg.OnUpdate(up)
}

// maybeSendBindLocked sends the one-time bind message once both identifiers
// are known. Caller must hold c.mu.
func (c *Channel) maybeSendBindLocked() {
	if c.bindSent || c.closed || c.connectionID == "" || c.contactID == "" {
		return
	}
	c.bindSent = true
	msg := outboundMessage{
		Action: "sendmessage",
		Data:   fmt.Sprintf("conndId@%s|contactId@%s", c.connectionID, c.contactID),
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.log.Warn().Err(err).Msg("failed to send bind message")
		return
	}
	metrics.Default.RecordBindSent()
	c.log.Info().
		Str("connectionId", c.connectionID).
		Str("contactId", c.contactID).
		Msg("bind message sent")
}
