// Package repository mirrors workflow and task rows into the hosted
// persistence service. The wire shape uses snake_case column names;
// the in-memory store never sees this mapping.
package repository

import (
	"context"
	"time"
)

// WorkflowRecord is the remote row for a workflow.
type WorkflowRecord struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TaskRecord is the remote row for a task.
type TaskRecord struct {
	ID          string     `json:"id" db:"id"`
	WorkflowID  string     `json:"workflow_id" db:"workflow_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
}

// RemoteStore is an interface for the best-effort persistence mirror.
type RemoteStore interface {
	CreateWorkflow(ctx context.Context, wf *WorkflowRecord) error
	UpdateWorkflow(ctx context.Context, wf *WorkflowRecord) error
	DeleteWorkflow(ctx context.Context, id string) error
	CreateTask(ctx context.Context, task *TaskRecord) error
	UpdateTask(ctx context.Context, task *TaskRecord) error
	DeleteTask(ctx context.Context, id string) error
	// ListWorkflows returns all mirrored workflows.
	ListWorkflows(ctx context.Context) ([]*WorkflowRecord, error)
}
