// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle. Carries
// the messaging-gateway webhook and the small admin surface.
package http

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/asila/asila/internal/domain/entities"
	"github.com/asila/asila/internal/domain/usecases"
)

// QueryLister serves the admin listing of handled queries.
type QueryLister interface {
	RecentQueries(ctx context.Context, limit int) ([]entities.QueryRecord, error)
}

// Server is the HTTP server for the webhook and admin API.
type Server struct {
	pipeline *usecases.Pipeline
	queries  QueryLister
	echo     *echo.Echo
}

// NewServer creates a new HTTP server. queries may be nil when no query
// log is configured; the admin listing then returns an empty result.
func NewServer(pipeline *usecases.Pipeline, queries QueryLister) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{pipeline: pipeline, queries: queries, echo: e}

	e.POST("/webhook/whatsapp", s.handleWebhook)
	e.POST("/webhook/status", s.handleStatusCallback)
	e.GET("/healthz", s.handleHealth)
	e.GET("/admin/queries", s.handleAdminQueries)

	return s
}

// Start runs the HTTP server until ctx is done, then shuts down cleanly.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown: %v", err)
		}
	}()

	log.Printf("[INFO] asila server starting on %s", addr)
	err := s.echo.Start(addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// whatsappWebhookRequest is the messaging-gateway payload. Field names
// follow the gateway contract; echo binds both JSON and form bodies.
type whatsappWebhookRequest struct {
	From        string `json:"From" form:"From"`
	Body        string `json:"Body" form:"Body"`
	Latitude    string `json:"Latitude" form:"Latitude"`
	Longitude   string `json:"Longitude" form:"Longitude"`
	ProfileName string `json:"ProfileName" form:"ProfileName"`
}

// handleWebhook validates the gateway payload and runs the pipeline.
// Malformed payloads are rejected here; the pipeline assumes well-formed
// input.
func (s *Server) handleWebhook(c echo.Context) error {
	var req whatsappWebhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if req.From == "" || req.Body == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "From and Body are required"})
	}

	msg := entities.InboundMessage{
		Sender:      strings.TrimPrefix(req.From, "whatsapp:"),
		Body:        req.Body,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ProfileName: req.ProfileName,
	}

	result := s.pipeline.Handle(c.Request().Context(), msg)
	return c.JSON(http.StatusOK, result)
}

// handleStatusCallback acknowledges gateway delivery-status callbacks.
func (s *Server) handleStatusCallback(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleAdminQueries lists recently handled queries, guarded by the admin
// rate limit. The caller identifies itself with the X-Admin-Id header.
func (s *Server) handleAdminQueries(c echo.Context) error {
	callerID := c.Request().Header.Get("X-Admin-Id")
	if callerID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "X-Admin-Id header is required"})
	}
	if !s.pipeline.AllowAdmin(c.Request().Context(), callerID) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "admin rate limit exceeded"})
	}

	if s.queries == nil {
		return c.JSON(http.StatusOK, []entities.QueryRecord{})
	}
	records, err := s.queries.RecentQueries(c.Request().Context(), 50)
	if err != nil {
		log.Printf("[WARN] listing queries failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query log unavailable"})
	}
	if records == nil {
		records = []entities.QueryRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
