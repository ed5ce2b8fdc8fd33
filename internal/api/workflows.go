package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"simplify/backend/internal/report"
	"simplify/backend/internal/store"
	"simplify/backend/pkg/models"
)

type createWorkflowRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	CreatedBy   string                `json:"createdBy"`
	Status      models.WorkflowStatus `json:"status"`
}

type createTaskRequest struct {
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Status        models.TaskStatus   `json:"status"`
	Priority      models.TaskPriority `json:"priority"`
	Assignees     []string            `json:"assignees"`
	DueDate       *time.Time          `json:"dueDate"`
	StartDate     *time.Time          `json:"startDate"`
	EstimatedTime *int                `json:"estimatedTime"`
	Dependencies  []string            `json:"dependencies"`
	Tools         []string            `json:"tools"`
	Tags          []string            `json:"tags"`
}

// ListWorkflows returns all workflows in creation order
// (GET /api/v1/workflows)
func (s *Server) ListWorkflows(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Store.ListWorkflows())
}

// CreateWorkflow creates a workflow
// (POST /api/v1/workflows)
func (s *Server) CreateWorkflow(c echo.Context) error {
	var req createWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	id, err := s.Store.CreateWorkflow(store.NewWorkflow{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		Status:      req.Status,
	})
	if err != nil {
		return storeError(c, err)
	}

	wf, err := s.Store.GetWorkflow(id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, wf)
}

// GetWorkflow returns one workflow with its tasks
// (GET /api/v1/workflows/:id)
func (s *Server) GetWorkflow(c echo.Context) error {
	wf, err := s.Store.GetWorkflow(c.Param("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// UpdateWorkflow applies a partial update
// (PATCH /api/v1/workflows/:id)
func (s *Server) UpdateWorkflow(c echo.Context) error {
	var upd models.WorkflowUpdate
	if err := c.Bind(&upd); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	id := c.Param("id")
	if err := s.Store.UpdateWorkflow(id, upd); err != nil {
		return storeError(c, err)
	}
	wf, err := s.Store.GetWorkflow(id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, wf)
}

// DeleteWorkflow removes a workflow and all its tasks
// (DELETE /api/v1/workflows/:id)
func (s *Server) DeleteWorkflow(c echo.Context) error {
	if err := s.Store.DeleteWorkflow(c.Param("id")); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// WorkflowReport returns the derived metrics for one workflow
// (GET /api/v1/workflows/:id/report)
func (s *Server) WorkflowReport(c echo.Context) error {
	wf, err := s.Store.GetWorkflow(c.Param("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, report.Summarize(wf, time.Now()))
}

type analysisResponse struct {
	Analysis string `json:"analysis"`
}

// WorkflowAnalysis asks the completion service for a narrative report
// on the workflow's time tracking data
// (GET /api/v1/workflows/:id/analysis)
func (s *Server) WorkflowAnalysis(c echo.Context) error {
	wf, err := s.Store.GetWorkflow(c.Param("id"))
	if err != nil {
		return storeError(c, err)
	}

	analysis, err := s.Analyzer.Analyze(c.Request().Context(), wf, time.Now())
	if err != nil {
		s.Logger.Error("analysis: %v", err)
		return problem(c, http.StatusBadGateway, "Bad Gateway", "analysis generation failed")
	}
	return c.JSON(http.StatusOK, analysisResponse{Analysis: analysis})
}

// CreateTask appends a task to a workflow
// (POST /api/v1/workflows/:id/tasks)
func (s *Server) CreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	workflowID := c.Param("id")
	id, err := s.Store.CreateTask(workflowID, store.NewTask{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		Assignees:     req.Assignees,
		DueDate:       req.DueDate,
		StartDate:     req.StartDate,
		EstimatedTime: req.EstimatedTime,
		Dependencies:  req.Dependencies,
		Tools:         req.Tools,
		Tags:          req.Tags,
	})
	if err != nil {
		return storeError(c, err)
	}

	task, err := s.Store.GetTask(workflowID, id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update, optionally mirroring a status
// change into the method named by the "method" query parameter
// (PATCH /api/v1/workflows/:id/tasks/:taskId)
func (s *Server) UpdateTask(c echo.Context) error {
	var upd models.TaskUpdate
	if err := c.Bind(&upd); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	workflowID := c.Param("id")
	taskID := c.Param("taskId")
	method := models.Method(c.QueryParam("method"))
	if err := s.Store.UpdateTask(workflowID, taskID, upd, method); err != nil {
		return storeError(c, err)
	}

	task, err := s.Store.GetTask(workflowID, taskID)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task from its workflow
// (DELETE /api/v1/workflows/:id/tasks/:taskId)
func (s *Server) DeleteTask(c echo.Context) error {
	if err := s.Store.DeleteTask(c.Param("id"), c.Param("taskId")); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type updateToolsRequest struct {
	Tools  []string      `json:"tools"`
	Method models.Method `json:"method"`
}

// UpdateTaskTools replaces the tool list of one method record
// (PUT /api/v1/workflows/:id/tasks/:taskId/tools)
func (s *Server) UpdateTaskTools(c echo.Context) error {
	var req updateToolsRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}
	if err := s.Store.UpdateTaskTools(c.Param("id"), c.Param("taskId"), req.Tools, req.Method); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type updateManualTimeRequest struct {
	Seconds *int64        `json:"seconds"`
	Method  models.Method `json:"method"`
}

// UpdateTaskManualTime replaces the manual time of one method record
// (PUT /api/v1/workflows/:id/tasks/:taskId/manual-time)
func (s *Server) UpdateTaskManualTime(c echo.Context) error {
	var req updateManualTimeRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}
	if err := s.Store.UpdateTaskManualTime(c.Param("id"), c.Param("taskId"), req.Seconds, req.Method); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type startTimerRequest struct {
	Method models.Method `json:"method"`
	Notes  string        `json:"notes"`
}

type startTimerResponse struct {
	TimeEntryID string `json:"timeEntryId"`
}

// StartTimer opens a timer on one method of a task
// (POST /api/v1/workflows/:id/tasks/:taskId/timers)
func (s *Server) StartTimer(c echo.Context) error {
	var req startTimerRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	id, err := s.Store.StartTimer(c.Param("id"), c.Param("taskId"), req.Method, req.Notes)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, startTimerResponse{TimeEntryID: id})
}

type stopTimerRequest struct {
	Method models.Method `json:"method"`
}

// StopTimer closes a timer entry
// (POST /api/v1/workflows/:id/tasks/:taskId/timers/:entryId/stop)
func (s *Server) StopTimer(c echo.Context) error {
	var req stopTimerRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	if err := s.Store.StopTimer(c.Param("id"), c.Param("taskId"), c.Param("entryId"), req.Method); err != nil {
		return storeError(c, err)
	}
	task, err := s.Store.GetTask(c.Param("id"), c.Param("taskId"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, task)
}

type manualEntryRequest struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Notes     string    `json:"notes"`
}

// AddManualTimeEntry records an interval not captured by the timer
// (POST /api/v1/workflows/:id/tasks/:taskId/time-entries)
func (s *Server) AddManualTimeEntry(c echo.Context) error {
	var req manualEntryRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Bad Request", "Invalid request body: "+err.Error())
	}

	id, err := s.Store.AddManualTimeEntry(c.Param("id"), c.Param("taskId"), req.StartTime, req.EndTime, req.Notes)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, startTimerResponse{TimeEntryID: id})
}
