// Package gateway implements the PlatePal AI gateway: an HTTP server that
// holds the provider credential, rate-limits clients by IP, and forwards
// chat completion requests to the upstream provider.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/platepal/platepal/internal/config"
	"github.com/platepal/platepal/internal/ratelimit"
)

// ChatCompleter is the slice of the provider client the gateway uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Server is the gateway HTTP server.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	upstream ChatCompleter
	limiter  ratelimit.Limiter
	logger   *slog.Logger
}

// NewUpstreamClient builds the provider client from gateway configuration.
func NewUpstreamClient(cfg config.AIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.Token)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
	}
	return openai.NewClientWithConfig(clientCfg)
}

// New creates the gateway server and registers its routes.
func New(cfg *config.Config, upstream ChatCompleter, limiter ratelimit.Limiter, logger *slog.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		upstream: upstream,
		limiter:  limiter,
		logger:   logger.With("component", "gateway"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "PlatePal AI Gateway",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.AI.Timeout + 10*time.Second,
	})

	s.app.Use(s.requestLogger())

	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)

	ai := api.Group("/ai", s.rateLimit())
	ai.Post("/chat", s.handleChat)

	return s
}

// App exposes the underlying fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given address and blocks until shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// ShutdownWithTimeout gracefully drains in-flight requests.
func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

// requestLogger tags each request with an id and logs its outcome.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := uuid.NewString()
		c.Locals("request_id", requestID)

		startTime := time.Now()
		err := c.Next()

		s.logger.InfoContext(c.Context(), "Request completed",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(startTime).Milliseconds())

		return err
	}
}

// rateLimit enforces the per-IP request budget. Limiter failures fail
// open: a broken limiter backend should not take the gateway down with it.
func (s *Server) rateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := s.limiter.Allow(c.Context(), c.IP())
		if err != nil {
			s.logger.WarnContext(c.Context(), "Rate limiter check failed, allowing request",
				"error", err,
				"ip", c.IP())
			return c.Next()
		}
		if !allowed {
			s.logger.InfoContext(c.Context(), "Rate limit exceeded", "ip", c.IP())
			return c.Status(fiber.StatusTooManyRequests).
				SendString("Too many requests from this IP, please try again later.")
		}
		return c.Next()
	}
}
