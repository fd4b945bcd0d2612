package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ASUCICREPO/multilingual-contact-center/internal/composer"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/config"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/httpserver"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/observability/logging"
	"github.com/ASUCICREPO/multilingual-contact-center/internal/session"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := session.New(session.Config{
		Region:             cfg.Region,
		TranscriptEndpoint: cfg.TranscriptWSEndpoint,
	})
	stopSession := sess.Start(ctx)
	defer stopSession()

	comp := composer.New(cfg.ReplyAPIURL)
	srv := httpserver.New(cfg, sess, comp)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.HTTPAddress).Msg("server listening")
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = server.Close()
	}
}
