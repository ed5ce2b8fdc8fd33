// Package api contains the HTTP handlers for the Simplify service
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"simplify/backend/internal/logging"
	"simplify/backend/internal/report"
	"simplify/backend/internal/store"
	"simplify/backend/internal/sync"
	"simplify/backend/internal/wizard"
)

// Server holds the dependencies for the API server.
type Server struct {
	Store    store.WorkflowStore
	Wizard   *wizard.Wizard
	Analyzer *report.Generator
	Sync     *sync.Adapter // nil when mirroring is disabled
	Logger   *logging.Logger
}

// NewServer creates a new Server.
func NewServer(st store.WorkflowStore, wiz *wizard.Wizard, analyzer *report.Generator, syncer *sync.Adapter, logger *logging.Logger) *Server {
	return &Server{Store: st, Wizard: wiz, Analyzer: analyzer, Sync: syncer, Logger: logger}
}

// Register mounts all routes on the given group.
func (s *Server) Register(g *echo.Group) {
	g.GET("/workflows", s.ListWorkflows)
	g.POST("/workflows", s.CreateWorkflow)
	g.GET("/workflows/:id", s.GetWorkflow)
	g.PATCH("/workflows/:id", s.UpdateWorkflow)
	g.DELETE("/workflows/:id", s.DeleteWorkflow)
	g.GET("/workflows/:id/report", s.WorkflowReport)
	g.GET("/workflows/:id/analysis", s.WorkflowAnalysis)

	g.POST("/workflows/:id/tasks", s.CreateTask)
	g.PATCH("/workflows/:id/tasks/:taskId", s.UpdateTask)
	g.DELETE("/workflows/:id/tasks/:taskId", s.DeleteTask)
	g.PUT("/workflows/:id/tasks/:taskId/tools", s.UpdateTaskTools)
	g.PUT("/workflows/:id/tasks/:taskId/manual-time", s.UpdateTaskManualTime)
	g.POST("/workflows/:id/tasks/:taskId/timers", s.StartTimer)
	g.POST("/workflows/:id/tasks/:taskId/timers/:entryId/stop", s.StopTimer)
	g.POST("/workflows/:id/tasks/:taskId/time-entries", s.AddManualTimeEntry)

	g.GET("/chat", s.GetChat)
	g.POST("/chat", s.PostChat)
	g.GET("/sync/status", s.SyncStatus)
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
}

// HandleHealth returns basic health status (always returns 200 OK)
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   "simplify",
		Version:   "1.0.0",
	})
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func problem(c echo.Context, status int, title, detail string) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// storeError maps store sentinel errors onto problem responses.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrWorkflowNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrTimeEntryNotFound):
		return problem(c, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, store.ErrTimerActive):
		return problem(c, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, store.ErrUnknownMethod),
		errors.Is(err, store.ErrInvalidTimeRange):
		return problem(c, http.StatusBadRequest, "Bad Request", err.Error())
	}
	return problem(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
}
