// Package gateway provides a client for the candlestick HTTP API served by cmd/server.
package gateway

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the gateway client.
type Config struct {
	BaseURL     string        // Base URL of the API (e.g., "https://quotes.example.com")
	AccessToken string        // Bearer token issued by cmd/token
	Timeout     time.Duration // HTTP request timeout
}

// Validate reports missing settings that make a session impossible.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("gateway url is not set")
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return errors.New("gateway access token is not set")
	}
	return nil
}
