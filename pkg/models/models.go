// Package models defines the domain models for the Simplify work-management service
package models

import (
	"time"
)

// TaskStatus represents the progress state of a task or method track
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Method names one of the two comparison tracks kept on every task
type Method string

const (
	MethodCurrent Method = "currentMethod"
	MethodAI      Method = "aiMethod"
)

// Valid reports whether m is one of the two known method tracks.
func (m Method) Valid() bool {
	return m == MethodCurrent || m == MethodAI
}

// TimeEntry is one start/stop timer interval on a task. Duration is
// derived from StartTime/EndTime and stays nil while the timer runs.
type TimeEntry struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"taskId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Duration  *int64     `json:"duration"` // seconds
	Notes     string     `json:"notes"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Running reports whether the entry is an open timer.
func (e *TimeEntry) Running() bool {
	return e.EndTime == nil
}

// MethodRecord tracks one method's status, time entries and tooling on a task
type MethodRecord struct {
	Status      TaskStatus  `json:"status"`
	TimeEntries []TimeEntry `json:"timeEntries"`
	Tools       []string    `json:"tools"`
	ManualTime  *int64      `json:"manualTime"` // seconds, user-entered
}

// MethodComparison holds the two parallel method tracks of a task
type MethodComparison struct {
	CurrentMethod MethodRecord `json:"currentMethod"`
	AIMethod      MethodRecord `json:"aiMethod"`
}

// Record returns the record for the named method, or nil if unknown.
func (c *MethodComparison) Record(m Method) *MethodRecord {
	switch m {
	case MethodCurrent:
		return &c.CurrentMethod
	case MethodAI:
		return &c.AIMethod
	}
	return nil
}

// NewMethodComparison returns a comparison with both methods untouched.
func NewMethodComparison() MethodComparison {
	return MethodComparison{
		CurrentMethod: MethodRecord{Status: TaskStatusNotStarted, TimeEntries: []TimeEntry{}, Tools: []string{}},
		AIMethod:      MethodRecord{Status: TaskStatusNotStarted, TimeEntries: []TimeEntry{}, Tools: []string{}},
	}
}

// Task is a unit of work within a workflow, tracked under two methods
type Task struct {
	ID            string       `json:"id"`
	WorkflowID    string       `json:"workflowId"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	Assignees     []string     `json:"assignees"`
	DueDate       *time.Time   `json:"dueDate"`
	StartDate     *time.Time   `json:"startDate"`
	EstimatedTime *int         `json:"estimatedTime"` // minutes
	ActualTime    *int         `json:"actualTime"`    // minutes
	Dependencies  []string     `json:"dependencies"`  // task ids, not validated
	Tools         []string     `json:"tools"`
	Tags          []string     `json:"tags"`

	// TimeEntries is the legacy flat list; every entry in it also
	// lives in one of the method records.
	TimeEntries      []TimeEntry      `json:"timeEntries"`
	MethodComparison MethodComparison `json:"methodComparison"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskUpdate carries the optional fields of a partial task update.
// Nil fields are left untouched.
type TaskUpdate struct {
	Title         *string       `json:"title,omitempty"`
	Description   *string       `json:"description,omitempty"`
	Status        *TaskStatus   `json:"status,omitempty"`
	Priority      *TaskPriority `json:"priority,omitempty"`
	Assignees     []string      `json:"assignees,omitempty"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	StartDate     *time.Time    `json:"startDate,omitempty"`
	EstimatedTime *int          `json:"estimatedTime,omitempty"`
	ActualTime    *int          `json:"actualTime,omitempty"`
	Dependencies  []string      `json:"dependencies,omitempty"`
	Tools         []string      `json:"tools,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
}
