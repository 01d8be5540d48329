// Package httpapi exposes the dashboard tables as JSON over HTTP.
//
// Endpoints:
//
//	GET  /api/info              -> title and the table names a run produces
//	GET  /api/tables            -> every table of the current run
//	GET  /api/tables/:name      -> one table, 404 if the name is unknown
//	POST /api/cache/invalidate  -> drop the cached run
//	GET  /healthz               -> liveness
//	GET  /metrics               -> prometheus metrics
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/godilite/eloca-metrics/internal/apperr"
	"github.com/godilite/eloca-metrics/internal/dashboard"
	"github.com/godilite/eloca-metrics/internal/report"
	"github.com/godilite/eloca-metrics/internal/telemetry"
)

// Dashboard serves the computed tables.
type Dashboard interface {
	Bag(ctx context.Context) (*report.Bag, error)
	Table(ctx context.Context, name string) (report.Table, error)
	Invalidate(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	addr      string
	title     string
	dashboard Dashboard
	logger    *zap.Logger
}

// New builds the server and registers its routes.
func New(addr, title string, dash Dashboard, logger *zap.Logger) *Server {
	if dash == nil {
		panic("nil Dashboard provided to httpapi.New")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		addr:      addr,
		title:     title,
		dashboard: dash,
		logger:    logger.Named("http"),
	}

	e.GET("/api/info", s.info)
	e.GET("/api/tables", s.tables)
	e.GET("/api/tables/:name", s.table)
	e.POST("/api/cache/invalidate", s.invalidate)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(telemetry.Registry, promhttp.HandlerOpts{})))

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("HTTP server starting", zap.String("addr", s.addr))
	go func() {
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.echo.Shutdown(ctx)
}

func (s *Server) info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"title":  s.title,
		"tables": report.TableNames,
	})
}

func (s *Server) tables(c echo.Context) error {
	bag, err := s.dashboard.Bag(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, bag)
}

func (s *Server) table(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil || name == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "invalid table name",
			"message": c.Param("name"),
		})
	}

	tbl, err := s.dashboard.Table(c.Request().Context(), name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, tbl)
}

func (s *Server) invalidate(c echo.Context) error {
	if err := s.dashboard.Invalidate(c.Request().Context()); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrNoData):
		return c.JSON(http.StatusNotFound, map[string]any{
			"error":   "no data",
			"message": err.Error(),
		})
	case errors.Is(err, dashboard.ErrUnknownTable):
		return c.JSON(http.StatusNotFound, map[string]any{
			"error":   "table not found",
			"message": err.Error(),
		})
	default:
		s.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":   err.Error(),
			"message": "failed to compute tables",
		})
	}
}
