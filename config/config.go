// Package config loads process configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Transport selects how the MCP server talks to its client.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Defaults applied when the corresponding variable is unset.
const (
	defaultTransport = TransportStdio
	defaultAddr      = ":3000"
	defaultPath      = "/mcp"
	defaultLogLevel  = "info"
)

// Config holds everything the process needs to run.
type Config struct {
	// N8NBaseURL is the root URL of the n8n instance.
	N8NBaseURL string

	// N8NAPIKey authenticates against the n8n public API.
	N8NAPIKey string

	// N8NTimeout bounds each engine request. Zero keeps the client
	// default.
	N8NTimeout time.Duration

	// Transport is "stdio" or "http".
	Transport string

	// Addr is the listen address for the HTTP transport.
	Addr string

	// Path is the MCP endpoint path for the HTTP transport.
	Path string

	// LogLevel is one of debug, info, warn, error, fatal.
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in when present; real environment
// variables win over file entries.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		N8NBaseURL: os.Getenv("N8N_BASE_URL"),
		N8NAPIKey:  os.Getenv("N8N_API_KEY"),
		Transport:  envOr("MCP_TRANSPORT", defaultTransport),
		Addr:       envOr("MCP_ADDR", defaultAddr),
		Path:       envOr("MCP_PATH", defaultPath),
		LogLevel:   envOr("LOG_LEVEL", defaultLogLevel),
	}

	if raw := os.Getenv("N8N_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid N8N_TIMEOUT %q: %w", raw, err)
		}
		cfg.N8NTimeout = timeout
	}

	if cfg.N8NBaseURL == "" {
		return nil, fmt.Errorf("N8N_BASE_URL is required")
	}
	if cfg.N8NAPIKey == "" {
		return nil, fmt.Errorf("N8N_API_KEY is required")
	}
	if cfg.Transport != TransportStdio && cfg.Transport != TransportHTTP {
		return nil, fmt.Errorf("unsupported MCP_TRANSPORT %q (use %q or %q)", cfg.Transport, TransportStdio, TransportHTTP)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
