package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"Concierge/backend/go/internal/config"
	"Concierge/backend/go/pkg/circuitbreaker"
	"Concierge/backend/go/pkg/httpmiddleware"
	"Concierge/backend/go/pkg/logger"
	"Concierge/backend/go/pkg/ratelimiter"
)

// Middleware defines a function to wrap an http.Handler.
type Middleware func(http.Handler) http.Handler

// Server wraps http.Server with the configured middleware chain and graceful shutdown.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             *logger.Logger
}

// ServerOption defines a function for configuring a Server.
type ServerOption func(*Server)

// WithAddress sets the address for the server to listen on.
func WithAddress(addr string) ServerOption {
	return func(s *Server) {
		s.httpServer.Addr = addr
	}
}

// NewServer serves handler behind recovery, access logging and, when enabled in the
// config, per-client rate limiting and circuit breaking.
func NewServer(cfg *config.AppConfig, handler http.Handler, log *logger.Logger, opts ...ServerOption) (*Server, error) {
	middlewares := []Middleware{
		httpmiddleware.Recover(log),
		httpmiddleware.AccessLog(log),
	}

	if cfg.Middleware.RateLimiter.Enabled {
		limiters, err := NewKeyedLimiter(cfg.Middleware.RateLimiter)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		log.Info(fmt.Sprintf("Enabling per-client rate limiter with algorithm: %s", cfg.Middleware.RateLimiter.Algorithm))
		middlewares = append(middlewares, httpmiddleware.RateLimit(limiters, httpmiddleware.ClientIP))
	}

	if cfg.Middleware.CircuitBreaker.Enabled {
		breaker, err := NewBreaker(cfg.Middleware.CircuitBreaker)
		if err != nil {
			return nil, fmt.Errorf("failed to create circuit breaker: %w", err)
		}
		log.Info("Enabling circuit breaker middleware")
		middlewares = append(middlewares, httpmiddleware.CircuitBreak(breaker))
	}

	// The first middleware is the outermost.
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}

	srv := &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.Address,
			Handler:      handler,
			ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
			WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 60*time.Second),
		},
		shutdownTimeout: config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second),
		log:             log,
	}
	for _, opt := range opts {
		opt(srv)
	}
	if srv.httpServer.Addr == "" {
		srv.httpServer.Addr = ":8080"
	}
	return srv, nil
}

// Handler returns the wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server. It returns nil after a graceful Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info(fmt.Sprintf("Starting server on %s", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting at most the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// NewLimiterFactory returns a constructor for the configured rate limiting algorithm.
func NewLimiterFactory(cfg config.RateLimiterConfig) (func() ratelimiter.RateLimiter, error) {
	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = "tokenBucket"
	}

	switch algorithm {
	case "tokenBucket":
		conf := cfg.TokenBucket
		return func() ratelimiter.RateLimiter {
			return ratelimiter.NewTokenBucket(conf.Rate, conf.Capacity)
		}, nil
	case "fixedWindow":
		conf := cfg.FixedWindow
		window, err := time.ParseDuration(conf.Window)
		if err != nil {
			return nil, fmt.Errorf("invalid fixedWindow duration: %w", err)
		}
		return func() ratelimiter.RateLimiter {
			return ratelimiter.NewFixedWindowCounter(conf.Limit, window)
		}, nil
	default:
		return nil, fmt.Errorf("unknown rate limiter algorithm: %s", cfg.Algorithm)
	}
}

// NewKeyedLimiter builds the per-client limiter registry from config.
func NewKeyedLimiter(cfg config.RateLimiterConfig) (*ratelimiter.Keyed, error) {
	factory, err := NewLimiterFactory(cfg)
	if err != nil {
		return nil, err
	}
	maxClients := cfg.MaxClients
	if maxClients <= 0 {
		maxClients = 10000
	}
	return ratelimiter.NewKeyed(factory, maxClients, config.Duration(cfg.IdleTTL, 10*time.Minute))
}

// NewBreaker initializes a circuit breaker based on the configuration.
func NewBreaker(cfg config.CircuitBreakerConfig) (circuitbreaker.CircuitBreaker, error) {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid circuit breaker timeout duration: %w", err)
	}
	return circuitbreaker.New(cfg.FailureThreshold, cfg.SuccessThreshold, timeout), nil
}
