// Package db opens the gorm connection used by the candlestick store.
package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	candleadapters "quote_backend/internal/feature/candlesticks/adapters"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database connection settings.
type Config struct {
	Driver         string        `mapstructure:"driver"`          // "sqlite" or "postgres"
	Path           string        `mapstructure:"path"`            // SQLite file path or ":memory:"
	Host           string        `mapstructure:"host"`            // Postgres host
	Port           string        `mapstructure:"port"`            // Postgres port
	User           string        `mapstructure:"user"`            // Postgres user
	Password       string        `mapstructure:"password"`        // Postgres password
	Name           string        `mapstructure:"name"`            // Postgres database name
	SSLMode        string        `mapstructure:"sslmode"`         // Postgres sslmode
	InstanceName   string        `mapstructure:"instance"`        // Cloud SQL instance, connects over its unix socket
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"` // Total time allowed for connection retries
	Migrate        bool          `mapstructure:"migrate"`         // Run AutoMigrate after connecting
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN returns the DSN for cfg.Driver. For Postgres, InstanceName takes
// precedence over Host/Port.
func BuildDSN(cfg Config) string {
	if cfg.driver() == DriverSQLite {
		if cfg.Path == "" {
			return "quote.db"
		}
		return cfg.Path
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceName != "" {
		host, port = "/cloudsql/"+cfg.InstanceName, ""
	}
	parts := []string{"host=" + host}
	if port != "" {
		parts = append(parts, "port="+port)
	}
	parts = append(parts,
		"user="+cfg.User,
		"password="+cfg.Password,
		"dbname="+cfg.Name,
		"sslmode="+sslmode,
	)
	return strings.Join(parts, " ")
}

func (c Config) driver() string {
	d := strings.ToLower(strings.TrimSpace(c.Driver))
	if d == "" {
		return DriverSQLite
	}
	return d
}

// ConnectWithRetry calls open with exponential backoff until it succeeds or
// timeout has elapsed.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 3 * time.Second
	b.MaxElapsedTime = timeout

	var db *gorm.DB
	op := func() error {
		var err error
		db, err = open(dsn)
		if err != nil {
			slog.Warn("DB connect failed, retrying", "error", err)
		}
		return err
	}
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
	}
	return db, nil
}

// OpenDB connects according to cfg and migrates the schema when cfg.Migrate is set.
func OpenDB(cfg Config) (*gorm.DB, error) {
	var open Opener
	switch cfg.driver() {
	case DriverSQLite:
		open = func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		}
	case DriverPostgres:
		open = func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, open)
	if err != nil {
		return nil, err
	}
	if cfg.driver() == DriverSQLite {
		// SQLite allows a single writer; ":memory:" is also per connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.Migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the candlestick tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&candleadapters.CandlestickModel{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
