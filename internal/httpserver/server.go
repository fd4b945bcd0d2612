// Package httpserver exposes the dashboard-facing API: session snapshots,
// reply submission, view toggles, the softphone bridge websocket and the
// quick-response list.
package httpserver

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/composer"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/config"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/logging"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/session"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/telephony"
)

// quickResponses are the canned agent responses shown on the dashboard.
var quickResponses = []string{
	"Please enter your Date of Birth",
	"Please confirm your phone number",
	"Can you please confirm your address",
	"Are there any other issues?",
	"Can you please provide more information on this?",
	"We will follow up on this and get back to you soon",
	"We are currently investigating this issue with high priority",
	"Thank you for contacting us, have a great day!",
}

// Server bundles the HTTP router and its dependencies.
type Server struct {
	Router http.Handler

	cfg      config.Config
	sess     *session.Session
	composer *composer.Composer
	hub      *CCPHub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// New constructs the HTTP server with routes.
func New(cfg config.Config, sess *session.Session, comp *composer.Composer) *Server {
	s := &Server{
		cfg:      cfg,
		sess:     sess,
		composer: comp,
		hub:      NewCCPHub(sess.HandleTelephonyEvent),
		upgrader: newUpgrader(cfg.AllowedOrigins),
		log:      logging.WithComponent("httpserver"),
	}

	e := newRouter(cfg.AllowedOrigins)

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/api/session", s.handleSessionSnapshot)
	e.POST("/api/reply", s.handleReply)
	e.POST("/api/view-mode", s.handleViewMode)
	e.POST("/api/target-language", s.handleTargetLanguage)
	e.GET("/api/quick-responses", s.handleQuickResponses)
	e.GET("/api/ccp-config", s.handleCCPConfig)
	e.GET("/ws/ccp", s.handleCCPBridge)

	s.Router = e
	return s
}

// Hub returns the softphone bridge, which also serves as the call
// controller for the reply composer.
func (s *Server) Hub() *CCPHub { return s.hub }

func (s *Server) handleSessionSnapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sess.Snapshot())
}

type replyRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleReply runs the reply composer against the active contact. The
// customer's locale is the delivery target, matching what the contact flow
// plays back.
func (s *Server) handleReply(c echo.Context) error {
	var req replyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	contactID := s.sess.ContactID()
	target := s.sess.CustomerLanguage()

	s.sess.SetReplyInFlight(true)
	defer s.sess.SetReplyInFlight(false)

	err := s.composer.Submit(c.Request().Context(), s.hub, req.Text, contactID, target)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case err == composer.ErrEmptyText:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case err == composer.ErrNoActiveContact:
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.log.Error().Err(err).Msg("reply submission failed")
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	}
}

type viewModeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleViewMode(c echo.Context) error {
	var req viewModeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	switch req.Mode {
	case "transcription":
		s.sess.SetEntityView(false)
	case "entities":
		s.sess.SetEntityView(true)
	default:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "mode must be transcription or entities"})
	}
	return c.NoContent(http.StatusNoContent)
}

type targetLanguageRequest struct {
	Language string `json:"language"`
}

func (s *Server) handleTargetLanguage(c echo.Context) error {
	var req targetLanguageRequest
	if err := c.Bind(&req); err != nil || req.Language == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "language is required"})
	}
	s.sess.SetTargetLanguage(req.Language)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleQuickResponses(c echo.Context) error {
	return c.JSON(http.StatusOK, quickResponses)
}

func (s *Server) handleCCPConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, telephony.DefaultCCPConfig(s.cfg.CCPURL, s.cfg.AllowedOrigins...))
}

func (s *Server) handleCCPBridge(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("panel websocket upgrade failed")
		return nil
	}
	s.hub.serve(conn)
	return nil
}
