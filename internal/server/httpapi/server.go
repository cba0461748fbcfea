// Package httpapi exposes the session service over HTTP using fiber.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophersocial/internal/logging"
	"github.com/dmitrijs2005/gophersocial/internal/server/auth"
	"github.com/dmitrijs2005/gophersocial/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 5 * time.Second

// SessionService is the business API served under /authentication.
type SessionService interface {
	Register(ctx context.Context, in services.RegisterInput) (services.Result[services.RegisterPayload], error)
	Login(ctx context.Context, userName, password string) (services.Result[services.TokenPair], error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (services.Result[services.TokenPair], error)
	UpdatePassword(ctx context.Context, userID string, in services.UpdatePasswordInput) (services.Result[services.Empty], error)
	ForgotPassword(ctx context.Context, email string) (services.Result[services.Empty], error)
	ResetPassword(ctx context.Context, in services.ResetPasswordInput) (services.Result[services.Empty], error)
}

// RequestObserver receives the latency of every served request.
type RequestObserver interface {
	ObserveRequest(method, route string, code int, d time.Duration)
}

type HTTPServer struct {
	address  string
	sessions SessionService
	codec    *auth.Codec
	logger   logging.Logger
	observer RequestObserver
	metrics  http.Handler
	app      *fiber.App
}

type Option func(*HTTPServer)

// WithMetrics mounts h at GET /metrics and reports request latencies to o.
func WithMetrics(h http.Handler, o RequestObserver) Option {
	return func(s *HTTPServer) {
		s.metrics = h
		s.observer = o
	}
}

func NewHTTPServer(address string, l logging.Logger, sessions SessionService, codec *auth.Codec, opts ...Option) *HTTPServer {
	s := &HTTPServer{
		address:  address,
		sessions: sessions,
		codec:    codec,
		logger:   logging.ForModule(l, "http_server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "gophersocial",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	return s
}

func (s *HTTPServer) routes() {
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics))
	}

	g := s.app.Group("/authentication")
	g.Post("/register", s.register)
	g.Post("/login", s.login)
	g.Post("/login/refresh", s.refresh)
	g.Post("/update-password", s.accessTokenMiddleware, s.updatePassword)
	g.Post("/forget-password", s.forgotPassword)
	g.Post("/reset-password", s.resetPassword)
}

// App returns the underlying fiber application.
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}
