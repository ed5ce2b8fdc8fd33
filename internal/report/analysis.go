package report

import (
	"time"

	"simplify/backend/pkg/models"
)

// Bottleneck classifies what is holding a task back, in priority
// order. Due-date checks compare against the supplied clock.
func Bottleneck(task *models.Task, now time.Time) string {
	switch {
	case task.Status == models.TaskStatusBlocked:
		return "Process blocked"
	case task.Status == models.TaskStatusNotStarted && task.DueDate != nil && task.DueDate.Before(now):
		return "Past due date"
	case len(task.Dependencies) > 0:
		return "Waiting on dependencies"
	case task.Status == models.TaskStatusInProgress && len(task.TimeEntries) == 0:
		return "No time tracking"
	}
	return "None identified"
}

// PerformanceNotes maps a performance score to the reviewer guidance
// shown next to it.
func PerformanceNotes(score int) string {
	switch {
	case score >= 90:
		return "Process is well-optimized"
	case score >= 70:
		return "Performing well, minor improvements possible"
	case score >= 50:
		return "Average performance, review process"
	case score >= 30:
		return "Needs improvement, consider process redesign"
	}
	return "Critical issues, requires immediate attention"
}

// TaskAnalysis is one row of the task-analysis report.
type TaskAnalysis struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Bottleneck  string `json:"bottleneck"`
	Performance int    `json:"performance"`
	Notes       string `json:"notes"`
}

// WorkflowSummary aggregates a workflow for the efficiency report.
type WorkflowSummary struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	CompletionRate int            `json:"completionRate"`
	TimeEfficiency int            `json:"timeEfficiency"`
	Tasks          []TaskAnalysis `json:"tasks"`
}

// Summarize builds the full report for one workflow.
func Summarize(wf *models.Workflow, now time.Time) WorkflowSummary {
	summary := WorkflowSummary{
		ID:             wf.ID,
		Name:           wf.Title,
		CompletionRate: WorkflowCompletionRate(wf),
		TimeEfficiency: AverageTimeEfficiency(wf),
		Tasks:          make([]TaskAnalysis, 0, len(wf.Tasks)),
	}

	for i := range wf.Tasks {
		task := &wf.Tasks[i]
		score := TaskPerformanceScore(task)
		summary.Tasks = append(summary.Tasks, TaskAnalysis{
			ID:          task.ID,
			Name:        task.Title,
			Status:      string(task.Status),
			Bottleneck:  Bottleneck(task, now),
			Performance: score,
			Notes:       PerformanceNotes(score),
		})
	}
	return summary
}
