// Package binance serves offset queries from Binance spot klines.
package binance

import (
	"strings"
	"time"
)

// Config holds configuration for the Binance REST client.
type Config struct {
	BaseURL string        // REST endpoint (e.g., "https://api.binance.com")
	Timeout time.Duration // HTTP request timeout
}

func (c Config) withDefaults() Config {
	out := c
	out.BaseURL = strings.TrimRight(strings.TrimSpace(out.BaseURL), "/")
	if out.BaseURL == "" {
		out.BaseURL = "https://api.binance.com"
	}
	if out.Timeout <= 0 {
		out.Timeout = 15 * time.Second
	}
	return out
}
