package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/sitework/internal/server"
	"github.com/wolfeidau/sitework/internal/service"
	"github.com/wolfeidau/sitework/internal/store"
	"github.com/wolfeidau/sitework/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

type ServeCmd struct {
	// Server configuration
	Listen          string        `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"SITEWORK_LISTEN"`
	Cert            string        `help:"path to TLS cert file (serves plain HTTP when unset)" default:"" env:"SITEWORK_TLS_CERT"`
	Key             string        `help:"path to TLS key file" default:"" env:"SITEWORK_TLS_KEY"`
	ShutdownTimeout time.Duration `help:"grace period for in-flight requests on shutdown" default:"15s" env:"SITEWORK_SHUTDOWN_TIMEOUT"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"SITEWORK_CORS_ORIGINS"`

	// Client addressing and throttling
	TrustProxy    bool `help:"trust X-Forwarded-For and X-Real-IP for client addresses" default:"false" env:"SITEWORK_TRUST_PROXY"`
	AuthRateLimit int  `help:"requests per minute per client IP on /auth endpoints (0 disables)" default:"20" env:"SITEWORK_AUTH_RATE_LIMIT"`
	AuthBurst     int  `help:"burst allowance for /auth endpoints" default:"5" env:"SITEWORK_AUTH_BURST"`

	// Operational modes
	Tracing     bool    `help:"enable tracing" default:"false" env:"SITEWORK_TRACING"`
	SampleRatio float64 `help:"fraction of traces sampled when tracing is enabled" default:"1" env:"SITEWORK_TRACE_SAMPLE_RATIO"`

	Signing   SigningFlags   `embed:""`
	Store     StoreFlags     `embed:""`
	Bootstrap BootstrapFlags `embed:"" prefix:"bootstrap-"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := setupLogger(globals)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup telemetry if enabled
	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "sitework-server",
			Version:     globals.Version,
			SampleRatio: c.SampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	codec, err := c.Signing.codec()
	if err != nil {
		return err
	}

	stores, closeStores, err := c.Store.open(ctx, log)
	if err != nil {
		return err
	}
	defer closeStores()

	services := service.New(stores, codec, service.Config{RefreshTTL: c.Signing.RefreshTTL})

	if c.Bootstrap.Enabled() {
		if err := c.Bootstrap.apply(log.WithContext(ctx), services); err != nil && !errors.Is(err, store.ErrRootCompanyExists) {
			return err
		}
	}

	srv := server.NewServer(server.Config{
		CORSOrigins:       c.CORSOrigins,
		TrustProxy:        c.TrustProxy,
		AuthRatePerMinute: c.AuthRateLimit,
		AuthBurst:         c.AuthBurst,
	}, stores, codec, services)

	httpServer := configureHTTPServer(c.Listen, srv.Handler(log))
	httpServer.BaseContext = func(_ net.Listener) context.Context { return log.WithContext(context.Background()) }

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", c.Listen).Bool("tls", c.Cert != "").Msg("Starting HTTP server")

		var err error
		if c.Cert != "" || c.Key != "" {
			err = httpServer.ListenAndServeTLS(c.Cert, c.Key)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
