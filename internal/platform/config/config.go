// Package config loads application settings from .env, environment variables
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"quote_backend/internal/platform/db"
)

// EnvPrefix is prepended to every environment variable, e.g. QUOTE_GATEWAY_URL.
const EnvPrefix = "QUOTE"

const (
	ProviderGateway = "gateway"
	ProviderBinance = "binance"
	ProviderSQLite  = "sqlite"
)

type Config struct {
	Provider string        `mapstructure:"provider"`
	Log      LogConfig     `mapstructure:"log"`
	HTTP     HTTPConfig    `mapstructure:"http"`
	JWT      JWTConfig     `mapstructure:"jwt"`
	Gateway  GatewayConfig `mapstructure:"gateway"`
	Binance  BinanceConfig `mapstructure:"binance"`
	DB       db.Config     `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type GatewayConfig struct {
	URL         string        `mapstructure:"url"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type BinanceConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]any{
	"provider":             ProviderSQLite,
	"log.level":            "info",
	"log.format":           "text",
	"http.addr":            ":8080",
	"http.request_timeout": "10s",
	"http.shutdown_grace":  "10s",
	"jwt.secret":           "",
	"jwt.ttl":              "24h",
	"gateway.url":          "",
	"gateway.access_token": "",
	"gateway.timeout":      "10s",
	"binance.url":          "https://api.binance.com",
	"binance.timeout":      "15s",
	"db.driver":            db.DriverSQLite,
	"db.path":              "quote.db",
	"db.host":              "localhost",
	"db.port":              "5432",
	"db.user":              "",
	"db.password":          "",
	"db.name":              "quote",
	"db.sslmode":           "disable",
	"db.instance":          "",
	"db.connect_timeout":   "60s",
	"db.migrate":           true,
}

// Load reads .env (if present), then QUOTE_* environment variables and the
// optional config file at path. Environment variables win over the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderGateway, ProviderBinance, ProviderSQLite:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.HTTP.RequestTimeout < 0 {
		return errors.New("http.request_timeout must not be negative")
	}
	return nil
}
