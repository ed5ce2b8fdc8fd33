// Package store holds the workflow/task state that every other layer
// reads from and mutates through. All operations are synchronous and
// run to completion; lookups that miss return sentinel errors instead
// of silently doing nothing.
package store

import (
	"errors"
	"time"

	"simplify/backend/pkg/models"
)

var (
	// ErrWorkflowNotFound is returned when a workflow id is unknown.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrTaskNotFound is returned when a task id is unknown within its workflow.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTimeEntryNotFound is returned when a timer id is not in the
	// addressed method's entry list.
	ErrTimeEntryNotFound = errors.New("time entry not found")
	// ErrTimerActive is returned when a timer is started on a method
	// that already has an open entry.
	ErrTimerActive = errors.New("timer already active for method")
	// ErrUnknownMethod is returned for a method outside
	// currentMethod/aiMethod.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidTimeRange is returned when a manual entry ends before it starts.
	ErrInvalidTimeRange = errors.New("end time before start time")
)

// NewWorkflow is the input to CreateWorkflow.
type NewWorkflow struct {
	Title       string
	Description string
	CreatedBy   string
	Status      models.WorkflowStatus
}

// NewTask is the input to CreateTask. Zero values fall back to
// not_started status and medium priority.
type NewTask struct {
	Title         string
	Description   string
	Status        models.TaskStatus
	Priority      models.TaskPriority
	Assignees     []string
	DueDate       *time.Time
	StartDate     *time.Time
	EstimatedTime *int
	ActualTime    *int
	Dependencies  []string
	Tools         []string
	Tags          []string
}

// WorkflowStore is the single source of truth for workflow, task and
// time-entry state plus the in-flight creation-wizard draft. The sync
// adapter and the HTTP/MCP surfaces depend on this interface, not on
// the in-memory implementation.
type WorkflowStore interface {
	// Queries. Returned values are copies; mutating them does not
	// touch store state.
	ListWorkflows() []models.Workflow
	GetWorkflow(id string) (*models.Workflow, error)
	GetTask(workflowID, taskID string) (*models.Task, error)
	CurrentWorkflow() *models.Workflow

	// SetCurrentWorkflow selects the session's working workflow.
	// An empty id clears the selection.
	SetCurrentWorkflow(id string) error

	CreateWorkflow(nw NewWorkflow) (string, error)
	UpdateWorkflow(id string, upd models.WorkflowUpdate) error
	DeleteWorkflow(id string) error

	CreateTask(workflowID string, nt NewTask) (string, error)
	// UpdateTask applies the partial update to the task. When method
	// is non-empty a status change is mirrored into that method's
	// record as well.
	UpdateTask(workflowID, taskID string, upd models.TaskUpdate, method models.Method) error
	DeleteTask(workflowID, taskID string) error
	UpdateTaskTools(workflowID, taskID string, tools []string, method models.Method) error
	UpdateTaskManualTime(workflowID, taskID string, seconds *int64, method models.Method) error

	// StartTimer opens a time entry on the named method and returns
	// its id. A method with an open entry rejects with ErrTimerActive.
	StartTimer(workflowID, taskID string, method models.Method, notes string) (string, error)
	// StopTimer closes the entry, deriving its duration from the two
	// timestamps. Closing an already closed entry is a no-op.
	StopTimer(workflowID, taskID, timeEntryID string, method models.Method) error
	// AddManualTimeEntry records an interval that was not captured by
	// the timer. It lands on the flat list and the current method.
	AddManualTimeEntry(workflowID, taskID string, start, end time.Time, notes string) (string, error)

	// Wizard draft state.
	Creation() models.WorkflowCreationState
	SetCreationStep(step models.CreationStep)
	SetCreationTitle(title string)
	SetCreationDescription(description string)
	SetSuggestedTasks(tasks []models.Task, selectAll bool)
	SetSelectedTasks(tasks []models.Task)
	AddChatMessage(role models.ChatRole, content, imageData string) string
	ResetCreation()
}
