package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress          string
	Region               string
	TranscriptWSEndpoint string
	ReplyAPIURL          string
	CCPURL               string
	AllowedOrigins       []string
	LogLevel             string
	LogFormat            string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	addr := envOrDefault("HTTP_ADDRESS", ":8080")
	region := envOrDefault("AWS_REGION", "us-east-1")

	wsEndpoint := os.Getenv("TRANSCRIPT_WS_ENDPOINT")
	if wsEndpoint == "" {
		log.Warn().Msg("TRANSCRIPT_WS_ENDPOINT not set - live transcription will not work")
	}

	replyURL := os.Getenv("REPLY_API_URL")
	if replyURL == "" {
		log.Warn().Msg("REPLY_API_URL not set - reply delivery will not work")
	}

	ccpURL := os.Getenv("CCP_URL")
	if ccpURL == "" {
		log.Warn().Msg("CCP_URL not set - the softphone panel cannot be embedded")
	}

	var origins []string
	for _, key := range []string{"ALLOWED_ORIGIN_1", "ALLOWED_ORIGIN_2"} {
		if v := os.Getenv(key); v != "" {
			origins = append(origins, v)
		}
	}

	return Config{
		HTTPAddress:          addr,
		Region:               region,
		TranscriptWSEndpoint: wsEndpoint,
		ReplyAPIURL:          replyURL,
		CCPURL:               ccpURL,
		AllowedOrigins:       origins,
		LogLevel:             envOrDefault("LOG_LEVEL", "info"),
		LogFormat:            envOrDefault("LOG_FORMAT", "json"),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
