package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"teamsync/internal/conflict"
	"teamsync/internal/logger"
	"teamsync/internal/model"
	"teamsync/internal/syncer"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Server exposes the local sync state over HTTP for the status commands
// and the watch daemon. It binds to localhost only and never serves the
// shared files themselves.
type Server struct {
	echo         *echo.Echo
	orchestrator *syncer.Orchestrator
	resolver     *conflict.Resolver
	port         int
	stopCh       chan struct{}
}

func NewServer(orchestrator *syncer.Orchestrator, resolver *conflict.Resolver, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:         e,
		orchestrator: orchestrator,
		resolver:     resolver,
		port:         port,
		stopCh:       make(chan struct{}, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.GET("/history", s.handleHistory)
	s.echo.GET("/changes", s.handleChanges)
	s.echo.POST("/sync", s.handleSync)
	s.echo.POST("/stop", s.handleStop)

	g := s.echo.Group("/conflicts")
	g.GET("", s.handleListConflicts)
	g.GET("/archived", s.handleArchivedConflicts)
	g.POST("/:id/resolve", s.handleResolveConflict)
}

func (s *Server) Start() {
	go func() {
		addr := "127.0.0.1:" + strconv.Itoa(s.port)
		logger.Log.Info("daemon server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("daemon server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) handleStatus(c echo.Context) error {
	snapshot, err := s.orchestrator.GetStatus()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleHistory(c echo.Context) error {
	n, _ := strconv.Atoi(c.QueryParam("n"))
	if n <= 0 {
		n = 20
	}

	ops, err := s.orchestrator.GetSyncHistory(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, ops)
}

func (s *Server) handleChanges(c echo.Context) error {
	changes, err := s.orchestrator.GetPendingChanges()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, changes)
}

type syncRequest struct {
	PushOnly bool `json:"push_only"`
	PullOnly bool `json:"pull_only"`
	Force    bool `json:"force"`
}

func (s *Server) handleSync(c echo.Context) error {
	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := s.orchestrator.Sync(req.PushOnly, req.PullOnly, req.Force)
	if err != nil {
		return c.JSON(http.StatusConflict, result)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleStop(c echo.Context) error {
	s.stopCh <- struct{}{}
	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleListConflicts(c echo.Context) error {
	records, err := s.resolver.ActiveConflicts()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{"conflicts": records})
}

func (s *Server) handleArchivedConflicts(c echo.Context) error {
	n, _ := strconv.Atoi(c.QueryParam("n"))
	if n <= 0 {
		n = 20
	}

	records, err := s.resolver.ArchivedConflicts(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{"conflicts": records})
}

type resolveRequest struct {
	Resolution model.Resolution `json:"resolution"`
	ResolvedBy string           `json:"resolved_by"`
}

func (s *Server) handleResolveConflict(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil || !req.Resolution.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "valid resolution required"})
	}

	rec, err := s.resolver.Resolve(c.Param("id"), req.Resolution, req.ResolvedBy)
	if err != nil {
		if errors.Is(err, conflict.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}

		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, rec)
}
