package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/wolfeidau/commissions/internal/logger"
	"github.com/wolfeidau/commissions/internal/server"
	"github.com/wolfeidau/commissions/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

type ServeCmd struct {
	Listen  string        `help:"HTTP server listen address" default:"127.0.0.1:8080" env:"COMMISSIONS_LISTEN"`
	Timeout time.Duration `help:"read and write timeout per request" default:"1m" env:"COMMISSIONS_TIMEOUT"`

	CORSOrigins  []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"COMMISSIONS_CORS_ORIGINS"`
	MaxBodyBytes int64    `help:"maximum partner document size in bytes" default:"10485760" env:"COMMISSIONS_MAX_BODY_BYTES"`

	DaysInMonth int `help:"fixed days per month for daily revenue (0 uses the current month)" default:"0" env:"COMMISSIONS_DAYS_IN_MONTH"`

	Tracing     bool    `help:"enable tracing" default:"false" env:"COMMISSIONS_TRACING"`
	SampleRatio float64 `help:"fraction of traces sampled when tracing is enabled" default:"1" env:"COMMISSIONS_TRACE_SAMPLE_RATIO"`
}

func (c *ServeCmd) Validate() error {
	if c.DaysInMonth != 0 && (c.DaysInMonth < 28 || c.DaysInMonth > 31) {
		return fmt.Errorf("days in month must be between 28 and 31, got %d", c.DaysInMonth)
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("max body bytes must be positive")
	}
	return nil
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	srv := server.NewServer(server.Config{
		DaysInMonth:  c.DaysInMonth,
		MaxBodyBytes: c.MaxBodyBytes,
	})

	var handler http.Handler = srv.Handler(log)

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "commissions-server",
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
		handler = otelhttp.NewHandler(handler, "commissions")
	}

	handler = withCORS(c.CORSOrigins, handler)

	httpServer := configureHTTPServer(c.Listen, h2c.NewHandler(handler, &http2.Server{}), c.Timeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}
	return nil
}

func withCORS(allowedOrigins []string, h http.Handler) http.Handler {
	middleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
	})
	return middleware.Handler(h)
}
