// Package telephony models the boundary to the softphone widget. The widget
// itself is a black box running in the agent's browser; its contact and
// agent events reach the service through the dashboard bridge, and call
// control commands flow back the same way.
package telephony

import "context"

// EventType enumerates the lifecycle events emitted by the widget.
type EventType string

const (
	EventConnecting EventType = "connecting"
	EventConnected  EventType = "connected"
	EventEnded      EventType = "ended"
	EventAgentState EventType = "agent_state"
)

// Contact attribute keys set by the contact flow. aid/sak/sst carry the
// short-lived credential triple minted for this call.
const (
	AttrLanguageCode    = "languageCode"
	AttrAccessKeyID     = "aid"
	AttrSecretAccessKey = "sak"
	AttrSessionToken    = "sst"
)

// Event is one contact or agent event from the widget.
type Event struct {
	Type       EventType         `json:"type"`
	ContactID  string            `json:"contactId,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	AgentState string            `json:"agentState,omitempty"`
}

// CallController controls the initial connection of the live call leg.
type CallController interface {
	Hold(ctx context.Context) error
	Resume(ctx context.Context) error
}

// CCPConfig is the bootstrap configuration handed to the embedded contact
// control panel.
type CCPConfig struct {
	CCPURL               string   `json:"ccpUrl"`
	LoginPopup           bool     `json:"loginPopup"`
	LoginPopupAutoClose  bool     `json:"loginPopupAutoClose"`
	AllowFramedSoftphone bool     `json:"allowFramedSoftphone"`
	CCPAckTimeoutMs      int      `json:"ccpAckTimeout"`
	CCPSynTimeoutMs      int      `json:"ccpSynTimeout"`
	CCPLoadTimeoutMs     int      `json:"ccpLoadTimeout"`
	AllowFrameAncestors  []string `json:"allowFrameAncestors"`
}

// DefaultCCPConfig returns the widget configuration with the standard
// timeouts. The CCP URL itself is always an allowed frame ancestor.
func DefaultCCPConfig(ccpURL string, extraOrigins ...string) CCPConfig {
	ancestors := []string{ccpURL}
	for _, o := range extraOrigins {
		if o != "" {
			ancestors = append(ancestors, o)
		}
	}
	return CCPConfig{
		CCPURL:               ccpURL,
		LoginPopup:           true,
		LoginPopupAutoClose:  true,
		AllowFramedSoftphone: true,
		CCPAckTimeoutMs:      5000,
		CCPSynTimeoutMs:      3000,
		CCPLoadTimeoutMs:     10000,
		AllowFrameAncestors:  ancestors,
	}
}
