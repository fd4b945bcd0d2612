package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/composer"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/config"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/session"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/telephony"
)

func newTestServer(t *testing.T) (*Server, *session.Session) {
	t.Helper()
	sess := session.New(session.Config{Region: "us-east-1"})
	stop := sess.Start(context.Background())
	t.Cleanup(stop)

	cfg := config.Config{
		CCPURL:         "https://example.my.connect.aws/ccp-v2",
		AllowedOrigins: nil,
	}
	return New(cfg, sess, composer.New("http://reply.invalid")), sess
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestQuickResponses(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/quick-responses", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(quickResponses) {
		t.Fatalf("expected %d responses, got %d", len(quickResponses), len(got))
	}
}

func TestSessionSnapshot(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap["state"] != "idle" {
		t.Fatalf("state = %v, want idle", snap["state"])
	}
	if snap["customerLanguageName"] != "English" {
		t.Fatalf("customerLanguageName = %v", snap["customerLanguageName"])
	}
}

func TestViewMode(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/view-mode", `{"mode":"entities"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("entities mode: status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(srv, http.MethodPost, "/api/view-mode", `{"mode":"colorful"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid mode: status = %d", rec.Code)
	}
}

func TestTargetLanguage(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/target-language", `{"language":"es"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(srv, http.MethodPost, "/api/target-language", `{"language":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty language: status = %d", rec.Code)
	}
}

func TestReply_NoActiveContact(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodPost, "/api/reply", `{"text":"hello there"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestReply_EmptyText(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodPost, "/api/reply", `{"text":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestCCPConfig(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/ccp-config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cfg telephony.CCPConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.CCPURL != "https://example.my.connect.aws/ccp-v2" {
		t.Fatalf("ccpUrl = %q", cfg.CCPURL)
	}
	if len(cfg.AllowFrameAncestors) == 0 || cfg.AllowFrameAncestors[0] != cfg.CCPURL {
		t.Fatalf("frame ancestors = %v", cfg.AllowFrameAncestors)
	}
}

func TestCCPBridge_EventsReachSession(t *testing.T) {
	srv, sess := newTestServer(t)
	ts := httptest.NewServer(srv.Router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/ccp"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ev := telephony.Event{
		Type:      telephony.EventConnecting,
		ContactID: "contact-9",
		Attributes: map[string]string{
			telephony.AttrLanguageCode: "ja-JP",
		},
	}
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("write event: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := sess.Snapshot()
		if snap.ContactID == "contact-9" && snap.CustomerLanguage == "ja-JP" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("telephony event never reached the session: %+v", sess.Snapshot())
}

func TestCCPBridge_DroppedFramesDoNotKillConnection(t *testing.T) {
	srv, sess := newTestServer(t)
	ts := httptest.NewServer(srv.Router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/ccp"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Garbage and a typeless event must both be dropped without closing the
	// bridge.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"contactId": "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(telephony.Event{Type: telephony.EventAgentState, AgentState: "Available"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sess.Snapshot().AgentState == "Available" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("event after dropped frames never reached the session")
}

func TestCCPHub_CallControl(t *testing.T) {
	srv, _ := newTestServer(t)

	if err := srv.Hub().Hold(context.Background()); !errors.Is(err, ErrBridgeDisconnected) {
		t.Fatalf("expected ErrBridgeDisconnected with no panel, got %v", err)
	}

	ts := httptest.NewServer(srv.Router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/ccp"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The hub registers the connection inside serve; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := srv.Hub().Hold(context.Background()); err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	var cmd ccpCommand
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&cmd); err != nil {
		t.Fatalf("read command: %v", err)
	}
	if cmd.Action != "hold" || cmd.BridgeID == "" {
		t.Fatalf("unexpected command: %+v", cmd)
	}

	if err := srv.Hub().Resume(context.Background()); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := conn.ReadJSON(&cmd); err != nil {
		t.Fatalf("read command: %v", err)
	}
	if cmd.Action != "resume" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}
