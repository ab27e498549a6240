package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/wolfeidau/sitework/internal/auth"
	"github.com/wolfeidau/sitework/internal/logger"
	"github.com/wolfeidau/sitework/internal/store"
	memorystore "github.com/wolfeidau/sitework/internal/store/memory"
	postgresstore "github.com/wolfeidau/sitework/internal/store/postgres"
)

type Globals struct {
	Debug   bool
	Version string
}

// setupLogger builds the process logger and installs it as the global logger used by
// the stores.
func setupLogger(globals *Globals) zerolog.Logger {
	log := logger.Setup(globals.Debug)
	zlog.Logger = log
	zerolog.DefaultContextLogger = &zlog.Logger
	return log
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	// Create HTTP server
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}

// SigningFlags configure the access credential codec.
type SigningFlags struct {
	SigningKey string        `help:"HMAC key for access tokens (at least 32 bytes)" env:"SITEWORK_SIGNING_KEY"`
	AccessTTL  time.Duration `help:"access token lifetime" default:"1h" env:"SITEWORK_ACCESS_TTL"`
	RefreshTTL time.Duration `help:"refresh token lifetime" default:"336h" env:"SITEWORK_REFRESH_TTL"`
}

func (s *SigningFlags) Validate() error {
	if s.SigningKey == "" {
		return errors.New("signing key is required (--signing-key or SITEWORK_SIGNING_KEY)")
	}
	if len(s.SigningKey) < auth.MinSigningKeyLength {
		return fmt.Errorf("signing key must be at least %d bytes (256 bits) for HMAC-SHA256", auth.MinSigningKeyLength)
	}
	if s.AccessTTL <= 0 || s.RefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

func (s *SigningFlags) codec() (*auth.Codec, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate signing flags: %w", err)
	}
	return auth.NewCodec([]byte(s.SigningKey), auth.WithTTL(s.AccessTTL))
}

// StoreFlags select and configure the storage backend.
type StoreFlags struct {
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"SITEWORK_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`
	StartupTimeout  int32 `help:"seconds to wait for the database to accept connections" default:"30"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"SITEWORK_POSTGRES_AUTO_MIGRATE"`
}

func (s *PostgresStoreFlags) Validate() error {
	if s.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (s *PostgresStoreFlags) poolConfig() *postgresstore.PoolConfig {
	return &postgresstore.PoolConfig{
		ConnString:      s.ConnString,
		MaxConns:        s.MaxConns,
		MinConns:        s.MinConns,
		MaxConnLifetime: s.MaxConnLifetime,
		MaxConnIdleTime: s.MaxConnIdleTime,
		StartupTimeout:  s.StartupTimeout,
	}
}

// open creates the configured stores. The returned close function releases the backend.
func (s *StoreFlags) open(ctx context.Context, log zerolog.Logger) (store.Stores, func(), error) {
	switch s.StoreType {
	case "postgres":
		if err := s.PostgresStore.Validate(); err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to validate postgres flags: %w", err)
		}

		pool, err := postgresstore.NewPool(ctx, s.PostgresStore.poolConfig())
		if err != nil {
			return store.Stores{}, nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}

		if s.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return store.Stores{}, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		log.Info().Msg("Using PostgreSQL stores")
		return postgresstore.NewStores(pool), pool.Close, nil

	default:
		log.Info().Msg("Using in-memory stores")
		return memorystore.NewStores(), func() {}, nil
	}
}
