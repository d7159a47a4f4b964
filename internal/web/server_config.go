package web

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "EMOGEN_LISTEN"
	EnvDevMode    = "EMOGEN_DEV"
)

// ServerConfig contains settings for running the HTTP server.
//
// The config file supplies the defaults; EMOGEN_LISTEN and EMOGEN_DEV
// override them, and command-line flags override both.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
}

func DefaultServerConfigFromEnv(defaults ServerConfig) (ServerConfig, error) {
	cfg := defaults
	if listenAddr := os.Getenv(EnvListenAddr); listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		cfg.DevMode = parsed
	}

	return cfg, nil
}
