package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/logging"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/telephony"
)

// ErrBridgeDisconnected is returned for call control when no softphone
// panel is connected.
var ErrBridgeDisconnected = errors.New("ccp bridge not connected")

// ccpCommand is a call-control command pushed down to the softphone panel.
type ccpCommand struct {
	Action   string `json:"action"`
	BridgeID string `json:"bridgeId"`
}

// CCPHub bridges the browser-side softphone panel to the session: telephony
// events flow up the websocket, hold/resume commands flow down. The widget
// is a black box; a command is considered delivered once written to the
// socket. At most one panel is active, the most recent connection wins.
type CCPHub struct {
	log    zerolog.Logger
	events func(telephony.Event)

	mu       sync.Mutex
	conn     *websocket.Conn
	bridgeID string
}

// NewCCPHub creates a hub delivering telephony events to the given sink.
func NewCCPHub(events func(telephony.Event)) *CCPHub {
	return &CCPHub{
		log:    logging.WithComponent("ccp-bridge"),
		events: events,
	}
}

// Hold puts the active call leg on hold via the connected panel.
func (h *CCPHub) Hold(ctx context.Context) error {
	return h.send("hold")
}

// Resume takes the active call leg off hold via the connected panel.
func (h *CCPHub) Resume(ctx context.Context) error {
	return h.send("resume")
}

func (h *CCPHub) send(action string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return ErrBridgeDisconnected
	}
	if err := h.conn.WriteJSON(ccpCommand{Action: action, BridgeID: h.bridgeID}); err != nil {
		return err
	}
	h.log.Info().Str("action", action).Msg("call control command sent")
	return nil
}

// upgrader for the panel bridge; the origin check is installed per server
// from the configured allow-list.
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // allow non-browser clients
			}
			return origins[origin]
		},
	}
}

// serve runs the read side of one panel connection until it drops.
func (h *CCPHub) serve(conn *websocket.Conn) {
	bridgeID := uuid.New().String()

	h.mu.Lock()
	if h.conn != nil {
		_ = h.conn.Close()
	}
	h.conn = conn
	h.bridgeID = bridgeID
	h.mu.Unlock()

	log := h.log.With().Str("bridgeId", bridgeID).Logger()
	log.Info().Msg("softphone panel connected")

	defer func() {
		h.mu.Lock()
		if h.conn == conn {
			h.conn = nil
			h.bridgeID = ""
		}
		h.mu.Unlock()
		_ = conn.Close()
		log.Info().Msg("softphone panel disconnected")
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("panel websocket closed unexpectedly")
			}
			return
		}

		var ev telephony.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Warn().Err(err).Str("frame", string(message)).Msg("dropping unparseable telephony event")
			continue
		}
		if ev.Type == "" {
			log.Warn().Str("frame", string(message)).Msg("dropping telephony event without type")
			continue
		}
		h.events(ev)
	}
}
