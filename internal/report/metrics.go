// Package report derives reporting metrics from workflow snapshots.
// Everything here is a pure function; the scoring constants reproduce
// the numbers the reporting screens have always shown.
package report

import (
	"math"

	"simplify/backend/pkg/models"
)

// MethodTotalSeconds sums the closed time entries of the named method
// plus its manual time. Open timers contribute nothing.
func MethodTotalSeconds(task *models.Task, method models.Method) int64 {
	rec := task.MethodComparison.Record(method)
	if rec == nil {
		return 0
	}

	var total int64
	for i := range rec.TimeEntries {
		if rec.TimeEntries[i].Duration != nil {
			total += *rec.TimeEntries[i].Duration
		}
	}
	if rec.ManualTime != nil {
		total += *rec.ManualTime
	}
	return total
}

// TaskPerformanceScore rates a task from 0 to 100: base 50, adjusted
// for status, plus up to 20 bonus points when the AI method beat the
// current method on time.
func TaskPerformanceScore(task *models.Task) int {
	score := 50

	switch task.Status {
	case models.TaskStatusCompleted:
		score += 30
	case models.TaskStatusInProgress:
		score += 15
	case models.TaskStatusBlocked:
		score -= 10
	}

	current := MethodTotalSeconds(task, models.MethodCurrent)
	ai := MethodTotalSeconds(task, models.MethodAI)
	if current > 0 && ai > 0 && ai < current {
		improvement := float64(current-ai) / float64(current) * 100
		bonus := int(math.Round(improvement / 5))
		if bonus > 20 {
			bonus = 20
		}
		score += bonus
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// WorkflowCompletionRate is the percentage of completed tasks,
// rounded. A workflow without tasks rates 0.
func WorkflowCompletionRate(wf *models.Workflow) int {
	if len(wf.Tasks) == 0 {
		return 0
	}

	completed := 0
	for i := range wf.Tasks {
		if wf.Tasks[i].Status == models.TaskStatusCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(wf.Tasks)) * 100))
}

// TimeEfficiency converts the current-vs-AI time improvement into a
// 0-100 efficiency score. Without time on both methods it reports the
// neutral 50.
func TimeEfficiency(task *models.Task) int {
	current := MethodTotalSeconds(task, models.MethodCurrent)
	ai := MethodTotalSeconds(task, models.MethodAI)
	if current <= 0 || ai <= 0 {
		return 50
	}

	improvement := float64(current-ai) / float64(current) * 100
	score := int(math.Round(improvement*1.5)) + 50
	if score > 100 {
		score = 100
	}
	return score
}

// AverageTimeEfficiency averages TimeEfficiency across a workflow's
// tasks, rounded. A workflow without tasks rates 0.
func AverageTimeEfficiency(wf *models.Workflow) int {
	if len(wf.Tasks) == 0 {
		return 0
	}

	sum := 0
	for i := range wf.Tasks {
		sum += TimeEfficiency(&wf.Tasks[i])
	}
	return int(math.Round(float64(sum) / float64(len(wf.Tasks))))
}
