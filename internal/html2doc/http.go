// Пакет html2doc предоставляет HTTP API преобразования HTML в документ редактора.
//
// Основные возможности:
//   - POST /api/convert/ с HTML в теле или JSON запросом.
//   - Информация о версии, состоянии и таблице соответствия тегов.
//   - Метрики Prometheus на отдельном порту.
//   - Необязательная авторизация по токену.
package html2doc

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aisa-it/html2doc/internal/html2doc/apierrors"
	"github.com/aisa-it/html2doc/internal/html2doc/config"
	"github.com/aisa-it/html2doc/internal/html2doc/encode"
	"github.com/aisa-it/html2doc/internal/html2doc/mapper"
	"github.com/aisa-it/html2doc/internal/html2doc/pipeline"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg      *config.Config
	version  string
	pipeline *pipeline.Pipeline
	registry *prometheus.Registry
	limiter  *RateLimiter
	e        *echo.Echo
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "html2doc")
		return next(c)
	}
}

// NewServer собирает echo сервер и регистрирует метрики в собственном реестре.
func NewServer(cfg *config.Config, version string) (*Server, error) {
	p, err := pipeline.New(pipeline.Options{
		Sanitize:    cfg.Sanitize,
		MinifyInput: cfg.MinifyInput,
		NFC:         cfg.NFC,
		Select:      cfg.Select,
		Strip:       cfg.Strip,
		KeepAttrs:   cfg.KeepAttrs,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		version:  version,
		pipeline: p,
		registry: prometheus.NewRegistry(),
		e:        echo.New(),
	}

	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "html2doc",
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))

	s.registry.MustRegister(bootTimeGauge,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.registry.MustRegister(pipeline.Collectors()...)

	e := s.e
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		EErrorMsgStatus(c, err, code)
	}

	promMiddleware, err := echoprometheus.MiddlewareConfig{
		Subsystem:                 "html2doc",
		Registerer:                s.registry,
		DoNotUseRequestPathFor404: true,
	}.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("prometheus middleware: %w", err)
	}

	e.Use(ServerHeader)
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: strconv.FormatUint(cfg.BodyLimitBytes, 10) + "B",
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     9,
		MinLength: 2048,
	}))
	e.Use(promMiddleware)
	e.Pre(middleware.AddTrailingSlash())

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")

	var convertMiddlewares []echo.MiddlewareFunc
	if cfg.AccessToken != "" {
		convertMiddlewares = append(convertMiddlewares, middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator: func(key string, c echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), []byte(cfg.AccessToken)) == 1, nil
			},
			ErrorHandler: func(err error, c echo.Context) error {
				slog.Warn("Access denied", "url", c.Request().URL, "ip", c.RealIP(), "err", err)
				return EErrorDefined(c, apierrors.ErrInvalidToken)
			},
		}))
	}

	if cfg.RateLimit > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, time.Minute)
		convertMiddlewares = append(convertMiddlewares, middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: s.limiter,
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
			DenyHandler: func(c echo.Context, identifier string, err error) error {
				slog.Warn("Rate limit exceeded", "ip", identifier)
				return EErrorDefined(c, apierrors.ErrTooManyRequests)
			},
		}))
	}

	apiGroup.POST("convert/", s.convertHandler, convertMiddlewares...)

	// Version endpoint
	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version":  version,
			"formats":  encode.Formats,
			"sanitize": cfg.Sanitize,
			"minify":   cfg.MinifyInput,
			"nfc":      cfg.NFC,
			"auth":     cfg.AccessToken != "",
		})
	})

	// Health endpoint
	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	apiGroup.GET("types/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, mapper.Types())
	})

	return s, nil
}

func (s *Server) Echo() *echo.Echo {
	return s.e
}

// MetricsEcho сервер с единственным маршрутом /metrics
func (s *Server) MetricsEcho() *echo.Echo {
	metrics := echo.New()
	metrics.HideBanner = true
	metrics.HidePort = true
	metrics.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.registry}))
	return metrics
}

// Close останавливает фоновую очистку ограничителя частоты. Повторный вызов безопасен.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// Run запускает API и метрики, блокируется до отмены ctx и корректно останавливает оба сервера.
// Если API сервер не запустился, сервер метрик тоже останавливается.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	metrics := s.MetricsEcho()
	go func() {
		if err := metrics.Start(s.cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
		case <-stop:
			return
		}
		slog.Info("Shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.e.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown", "err", err)
		}
	}()

	slog.Info("Start server", "addr", s.cfg.HTTPAddr, "metrics", s.cfg.MetricsAddr, "version", s.version)
	err := s.e.Start(s.cfg.HTTPAddr)
	close(stop)
	<-stopped

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		slog.Error("Metrics server shutdown", "err", err)
	}

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
