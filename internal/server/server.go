package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/azhar1598/xplore-be/internal/config"
	"github.com/azhar1598/xplore-be/internal/constants"
)

// Server owns the Echo instance and its routes.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

func New(cfg config.ServerConfig, insights *InsightHandler, health *HealthHandler, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = constants.ServerConfig.ReadTimeout
	e.Server.WriteTimeout = constants.ServerConfig.WriteTimeout

	e.Use(RequestID())
	e.Use(Logging(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			HeaderUserID,
			HeaderRequestID,
		},
		ExposeHeaders: []string{HeaderRequestID},
	}))

	e.GET("/healthz", health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limited := RateLimiter(cfg.RateLimit)
	e.GET("/", insights.Root, limited)
	e.GET("/business-insights", insights.Get, limited)
	e.GET("/business-insights/history", insights.History)

	return &Server{
		echo:   e,
		addr:   ":" + cfg.Port,
		logger: logger,
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
