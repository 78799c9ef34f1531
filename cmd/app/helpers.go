package main

import (
	"github.com/allisson/gatekeeper/internal/config"
)

// loadConfig loads configuration and enforces the same startup checks the
// server runs. A weak signing secret or a zero credential lifetime must stop
// every command, not just the server.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
