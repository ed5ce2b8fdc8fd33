package models

import (
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow
type WorkflowStatus string

const (
	WorkflowStatusActive    WorkflowStatus = "active"
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusArchived  WorkflowStatus = "archived"
)

// Workflow is a named collection of tasks representing one unit of
// work to manage. Tasks are kept in creation order.
type Workflow struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Tasks       []Task         `json:"tasks"`
	CreatedBy   string         `json:"createdBy"`
	Status      WorkflowStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// WorkflowUpdate carries the optional fields of a partial workflow update.
type WorkflowUpdate struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *WorkflowStatus `json:"status,omitempty"`
}
