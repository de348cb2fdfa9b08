package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-insights/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	ragHandler     *RAGController
	meetingHandler *MeetingController
	archiveHandler *ArchiveController
	healthChecks   map[string]HealthCheck
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, ragHandler *RAGController, meetingHandler *MeetingController) *Router {
	return &Router{
		cfg:            cfg,
		ragHandler:     ragHandler,
		meetingHandler: meetingHandler,
		healthChecks:   make(map[string]HealthCheck),
	}
}

// WithArchive enables the insights archive route
func (rt *Router) WithArchive(h *ArchiveController) *Router {
	rt.archiveHandler = h
	return rt
}

// AddHealthCheck registers a dependency check reported by /health
func (rt *Router) AddHealthCheck(name string, check HealthCheck) {
	rt.healthChecks[name] = check
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupRAGRoutes(v1)
	rt.setupMeetingRoutes(v1)
}

// setupRAGRoutes configures question answering routes
func (rt *Router) setupRAGRoutes(g *echo.Group) {
	ragGroup := g.Group("/rag")

	if rt.ragHandler != nil {
		ragGroup.POST("/query", rt.ragHandler.Query)
	} else {
		ragGroup.POST("/query", rt.notImplemented)
	}
}

// setupMeetingRoutes configures insights routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings")

	if rt.meetingHandler != nil {
		meetingGroup.GET("/:id/insights-context", rt.meetingHandler.InsightsContext)
		meetingGroup.GET("/:id/action-items", rt.meetingHandler.ActionItems)
		meetingGroup.POST("/:id/reprocess", rt.meetingHandler.Reprocess)
		g.GET("/deadlines/upcoming", rt.meetingHandler.UpcomingDeadlines)
	} else {
		meetingGroup.GET("/:id/insights-context", rt.notImplemented)
		meetingGroup.GET("/:id/action-items", rt.notImplemented)
		meetingGroup.POST("/:id/reprocess", rt.notImplemented)
		g.GET("/deadlines/upcoming", rt.notImplemented)
	}

	if rt.archiveHandler != nil {
		meetingGroup.GET("/:id/insights-archive", rt.archiveHandler.InsightsArchive)
	} else {
		meetingGroup.GET("/:id/insights-archive", rt.notImplemented)
	}
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status, 503 when a dependency check fails
func (rt *Router) healthCheck(c echo.Context) error {
	resp := common.HealthResponse{
		Status: "ok",
		Checks: make(map[string]string, len(rt.healthChecks)),
	}
	if rt.cfg != nil {
		resp.Environment = rt.cfg.Server.Environment
	}

	status := http.StatusOK
	for name, check := range rt.healthChecks {
		if err := check(c.Request().Context()); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	return c.JSON(status, resp)
}
