// Package api serves the idea lifecycle over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iksnae/ideasurge/internal"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

const (
	msgInvalidPayload = "Invalid payload."
	msgIdeaNotFound   = "Idea not found."
)

// Server exposes pick, recycle and library endpoints
type Server struct {
	echo      *echo.Echo
	lifecycle *internal.Lifecycle
	repo      internal.IdeaRepository
	logger    *zap.Logger
	addr      string
}

// NewServer creates a new HTTP server listening on addr
func NewServer(lifecycle *internal.Lifecycle, repo internal.IdeaRepository, logger *zap.Logger, addr string) (*Server, error) {
	if lifecycle == nil {
		return nil, fmt.Errorf("lifecycle cannot be nil")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking")
	}
	if addr == "" {
		addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:      e,
		lifecycle: lifecycle,
		repo:      repo,
		logger:    logger,
		addr:      addr,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v := s.echo.Group("/api")
	v.POST("/ideas/mark-picked", s.handleMarkPicked)
	v.POST("/ideas/recycle", s.handleRecycle)
	v.GET("/library", s.handleLibrary)
	v.GET("/library/:id", s.handleLibraryIdea)
}

// Handler returns the underlying http.Handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// OKResponse acknowledges a write
type OKResponse struct {
	OK bool `json:"ok"`
}

// RecycleResponse reports a recycle batch
type RecycleResponse struct {
	OK            bool `json:"ok"`
	Recycled      int  `json:"recycled"`
	SkippedPicked int  `json:"skippedPicked"`
}

// LibraryGroup is one category of the library listing
type LibraryGroup struct {
	Category string          `json:"category"`
	Ideas    []internal.Idea `json:"ideas"`
}

// LibraryResponse is the body of GET /api/library
type LibraryResponse struct {
	Total  int            `json:"total"`
	Groups []LibraryGroup `json:"groups"`
}

// IdeaResponse is the body of GET /api/library/:id
type IdeaResponse struct {
	Idea internal.Idea `json:"idea"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.repo.Ping(c.Request().Context()); err != nil {
		s.logger.Warn("database ping failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: err.Error()})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}

func (s *Server) handleMarkPicked(c echo.Context) error {
	body, ok := s.readJSON(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidPayload})
	}
	idea, err := internal.ValidateIdea(body.Get("idea"))
	if err != nil {
		s.logger.Debug("rejected mark-picked payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidPayload})
	}

	if err := s.lifecycle.MarkPicked(c.Request().Context(), idea); err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}

func (s *Server) handleRecycle(c echo.Context) error {
	body, ok := s.readJSON(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidPayload})
	}
	list := body.Get("ideas")
	if !list.IsArray() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidPayload})
	}
	ideas := make([]internal.Idea, 0, len(list.Array()))
	for _, raw := range list.Array() {
		idea, err := internal.ValidateIdea(raw)
		if err != nil {
			s.logger.Debug("rejected recycle payload", zap.Error(err))
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgInvalidPayload})
		}
		ideas = append(ideas, idea)
	}

	report, err := s.lifecycle.RecycleIdeas(c.Request().Context(), ideas)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, RecycleResponse{
		OK:            true,
		Recycled:      report.Recycled,
		SkippedPicked: report.SkippedPicked,
	})
}

func (s *Server) handleLibrary(c echo.Context) error {
	records, err := internal.ListRecycled(c.Request().Context(), s.repo)
	if err != nil {
		return s.internalError(c, err)
	}
	resp := LibraryResponse{Total: len(records), Groups: []LibraryGroup{}}
	for _, group := range internal.GroupByCategory(records) {
		ideas := make([]internal.Idea, 0, len(group.Ideas))
		for _, rec := range group.Ideas {
			ideas = append(ideas, rec.ToIdea())
		}
		resp.Groups = append(resp.Groups, LibraryGroup{Category: group.Category, Ideas: ideas})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLibraryIdea(c echo.Context) error {
	rec, err := s.repo.GetByID(c.Request().Context(), c.Param("id"))
	if errors.Is(err, internal.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: msgIdeaNotFound})
	}
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(http.StatusOK, IdeaResponse{Idea: rec.ToIdea()})
}

// readJSON reads the request body as a JSON object
func (s *Server) readJSON(c echo.Context) (gjson.Result, bool) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		s.logger.Warn("failed to read request body", zap.Error(err))
		return gjson.Result{}, false
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, false
	}
	body := gjson.ParseBytes(data)
	return body, body.IsObject()
}

func (s *Server) internalError(c echo.Context, err error) error {
	s.logger.Error("request failed",
		zap.String("uri", c.Request().RequestURI),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
