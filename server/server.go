package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/zap"
)

type Server struct {
	echo     *echo.Echo
	cfg      *config.Config
	logger   *logging.Service
	certFile string
	keyFile  string
}

// HealthCheck reports a dependency failure as a non-nil error.
type HealthCheck func(ctx context.Context) error

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	configureTrustedProxies(e, cfg.Server.TrustedProxies, logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if logger != nil {
		e.Use(logging.RequestLogger(logger, "/healthz"))
	}

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// configureTrustedProxies only honours X-Forwarded-For from the listed proxies.
// Without any valid entry the peer address is used directly.
func configureTrustedProxies(e *echo.Echo, proxies []string, logger *logging.Service) {
	var options []echo.TrustOption

	for _, proxy := range proxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		if !strings.Contains(proxy, "/") {
			if ip := net.ParseIP(proxy); ip != nil {
				if ip.To4() != nil {
					proxy += "/32"
				} else {
					proxy += "/128"
				}
			}
		}

		_, ipNet, err := net.ParseCIDR(proxy)
		if err != nil {
			logger.Warn("ignoring invalid trusted proxy", zap.String("proxy", proxy), zap.Error(err))
			continue
		}
		options = append(options, echo.TrustIPRange(ipNet))
	}

	if len(options) == 0 {
		e.IPExtractor = echo.ExtractIPDirect()
		return
	}

	e.IPExtractor = echo.ExtractIPFromXFFHeader(options...)
	logger.Info("trusted proxies configured", zap.Int("count", len(options)))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logRoutes()
	s.logger.Info("starting http server", zap.String("addr", addr), zap.Bool("tls", s.certFile != ""))

	var err error
	if s.certFile != "" {
		err = s.echo.StartTLS(addr, s.certFile, s.keyFile)
	} else {
		err = s.echo.Start(addr)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("http server stopped", zap.Error(err))
		return err
	}
	return nil
}

// EnableTLS makes Start serve HTTPS with the given PEM files.
func (s *Server) EnableTLS(certFile, keyFile string) {
	s.certFile = certFile
	s.keyFile = keyFile
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// Health serves path with 200 when every check passes and 503 otherwise.
func (s *Server) Health(path string, checks map[string]HealthCheck) {
	s.echo.GET(path, func(c echo.Context) error {
		status, state := http.StatusOK, "ok"
		results := make(map[string]string, len(checks))

		for name, check := range checks {
			if err := check(c.Request().Context()); err != nil {
				s.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
				results[name] = "unavailable"
				status, state = http.StatusServiceUnavailable, "unavailable"
				continue
			}
			results[name] = "ok"
		}

		return c.JSON(status, map[string]any{
			"status": state,
			"checks": results,
		})
	})
}

func (s *Server) logRoutes() {
	for _, route := range s.echo.Routes() {
		s.logger.Debug("route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.String("handler", shortenHandlerName(route.Name)))
	}
}

func shortenHandlerName(name string) string {
	parts := strings.Split(name, "/")
	if len(parts) > 3 {
		name = strings.Join(parts[len(parts)-3:], "/")
	}
	if len(name) > 80 {
		name = name[:77] + "..."
	}
	return name
}

func (s *Server) Get(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.GET(path, handler, m...)
}

func (s *Server) Post(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.POST(path, handler, m...)
}

func (s *Server) Put(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.PUT(path, handler, m...)
}

func (s *Server) Delete(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.DELETE(path, handler, m...)
}

func (s *Server) Patch(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.PATCH(path, handler, m...)
}

func (s *Server) Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	return s.echo.Group(prefix, m...)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}
