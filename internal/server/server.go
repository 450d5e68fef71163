package server

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/commissions/internal/commission"
	httpmiddleware "github.com/wolfeidau/commissions/internal/http"
	"github.com/wolfeidau/commissions/internal/logger"
)

// DefaultMaxBodyBytes caps partner documents posted to the API.
const DefaultMaxBodyBytes = 10 << 20

// Config holds the server defaults applied to every request.
type Config struct {
	// DaysInMonth fixes the month length; zero uses the clock.
	DaysInMonth  int
	Clock        commission.Clock
	MaxBodyBytes int64
}

// Server exposes commission computation over HTTP.
type Server struct {
	cfg Config
}

// NewServer creates a new server with the given defaults
func NewServer(cfg Config) *Server {
	if cfg.Clock == nil {
		cfg.Clock = commission.WallClock
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{cfg: cfg}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("POST /v1/commissions", httpmiddleware.MaxBytesMiddleware(s.cfg.MaxBodyBytes)(
		http.HandlerFunc(s.handleCommissions),
	))

	return httpmiddleware.Chain(mux,
		httpmiddleware.RequestIDMiddleware(),
		httpmiddleware.ClientIPMiddleware(),
		logger.Requests(log),
	)
}
