package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spacesedan/impactwatch/config"
	"github.com/spacesedan/impactwatch/internal/models"
)

const (
	STATUS_ONLINE = "ImpactWatch AI is Online"
	BODY_LIMIT    = "1M"
)

// Analyzer is the model-backed side of the API. *inference.Service
// implements it.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (models.PredictionResult, error)
	VocabularySize() int
	CacheEnabled() bool
}

type Server struct {
	echo     *echo.Echo
	analyzer Analyzer
}

func NewServer(analyzer Analyzer, cfg config.ServerConfig) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		analyzer: analyzer,
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:     true,
		LogMethod:     true,
		LogURI:        true,
		LogLatency:    true,
		LogRequestID:  true,
		LogError:      true,
		HandleError:   true,
		LogValuesFunc: logRequest,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(BODY_LIMIT))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeout(cfg.RequestTimeout))
	}
	e.Use(limitConcurrency(cfg.MaxConcurrent))

	s.routes()

	return s
}

func (s *Server) routes() {
	s.echo.GET("/", s.status)
	s.echo.GET("/health", s.health)
	s.echo.POST("/analyze", s.analyze)
	s.echo.POST("/polarity", s.polarity)
}

func (s *Server) Start(addr string) error {
	slog.Info("[API] Listening", slog.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// handleError renders every error, including echo's own 404/413/503, as
// {"error": "..."}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else if errors.Is(err, context.DeadlineExceeded) {
		code = http.StatusServiceUnavailable
		msg = "request timed out"
	} else {
		slog.Error("[API] Unhandled error", slog.String("error", err.Error()))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, models.ErrorResponse{Error: msg})
	}
	if err != nil {
		slog.Error("[API] Failed to write error response", slog.String("error", err.Error()))
	}
}

func logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	attrs := []slog.Attr{
		slog.String("request_id", v.RequestID),
		slog.String("method", v.Method),
		slog.String("uri", v.URI),
		slog.Int("status", v.Status),
		slog.Duration("latency", v.Latency),
	}
	if v.Error != nil {
		attrs = append(attrs, slog.String("error", v.Error.Error()))
		slog.LogAttrs(c.Request().Context(), slog.LevelWarn, "[API] Request failed", attrs...)
		return nil
	}
	slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "[API] Request", attrs...)
	return nil
}

// limitConcurrency caps in-flight requests at n. A request that cannot get a
// slot before its context ends is rejected with 503.
func limitConcurrency(n int) echo.MiddlewareFunc {
	sem := make(chan struct{}, max(n, 1))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			select {
			case sem <- struct{}{}:
			case <-c.Request().Context().Done():
				return echo.NewHTTPError(http.StatusServiceUnavailable, "server is busy")
			}
			defer func() { <-sem }()
			return next(c)
		}
	}
}
