package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"simplify/backend/pkg/models"
)

func taskWithTimes(status models.TaskStatus, currentSeconds, aiSeconds int64) models.Task {
	task := models.Task{
		Status:           status,
		MethodComparison: models.NewMethodComparison(),
	}
	if currentSeconds > 0 {
		task.MethodComparison.CurrentMethod.ManualTime = &currentSeconds
	}
	if aiSeconds > 0 {
		task.MethodComparison.AIMethod.ManualTime = &aiSeconds
	}
	return task
}

func TestMethodTotalSeconds(t *testing.T) {
	task := models.Task{MethodComparison: models.NewMethodComparison()}

	open := models.TimeEntry{ID: "open", StartTime: time.Now()}
	d1, d2 := int64(120), int64(30)
	closed1 := models.TimeEntry{ID: "c1", Duration: &d1}
	closed2 := models.TimeEntry{ID: "c2", Duration: &d2}
	manual := int64(60)

	rec := task.MethodComparison.Record(models.MethodCurrent)
	rec.TimeEntries = []models.TimeEntry{open, closed1, closed2}
	rec.ManualTime = &manual

	// Open timers contribute nothing
	assert.Equal(t, int64(210), MethodTotalSeconds(&task, models.MethodCurrent))
	assert.Equal(t, int64(0), MethodTotalSeconds(&task, models.MethodAI))
	assert.Equal(t, int64(0), MethodTotalSeconds(&task, models.Method("bogus")))
}

func TestTaskPerformanceScore(t *testing.T) {
	tests := []struct {
		name string
		task models.Task
		want int
	}{
		{"not started, no time", taskWithTimes(models.TaskStatusNotStarted, 0, 0), 50},
		{"completed, no time", taskWithTimes(models.TaskStatusCompleted, 0, 0), 80},
		{"in progress, no time", taskWithTimes(models.TaskStatusInProgress, 0, 0), 65},
		{"blocked, no time", taskWithTimes(models.TaskStatusBlocked, 0, 0), 40},
		// 50% improvement -> bonus 10
		{"completed with ai faster", taskWithTimes(models.TaskStatusCompleted, 100, 50), 90},
		// full bonus capped at 20, score capped at 100
		{"completed with huge improvement", taskWithTimes(models.TaskStatusCompleted, 1000, 10), 100},
		// ai slower than current earns no bonus
		{"ai slower", taskWithTimes(models.TaskStatusCompleted, 50, 100), 80},
		// only one method tracked earns no bonus
		{"current only", taskWithTimes(models.TaskStatusCompleted, 100, 0), 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TaskPerformanceScore(&tt.task))
		})
	}
}

func TestTimeEfficiency(t *testing.T) {
	// Neutral without time on both methods
	neutral := taskWithTimes(models.TaskStatusInProgress, 0, 0)
	assert.Equal(t, 50, TimeEfficiency(&neutral))
	currentOnly := taskWithTimes(models.TaskStatusInProgress, 100, 0)
	assert.Equal(t, 50, TimeEfficiency(&currentOnly))

	// 50% improvement -> 50*1.5+50 = 125, capped at 100
	halved := taskWithTimes(models.TaskStatusInProgress, 100, 50)
	assert.Equal(t, 100, TimeEfficiency(&halved))

	// 20% improvement -> 30+50 = 80
	modest := taskWithTimes(models.TaskStatusInProgress, 100, 80)
	assert.Equal(t, 80, TimeEfficiency(&modest))

	// Regression drops below the neutral line: round(-75)+50 = -25
	slower := taskWithTimes(models.TaskStatusInProgress, 100, 150)
	assert.Equal(t, -25, TimeEfficiency(&slower))
}

func TestWorkflowCompletionRate(t *testing.T) {
	empty := models.Workflow{}
	assert.Equal(t, 0, WorkflowCompletionRate(&empty))

	wf := models.Workflow{Tasks: []models.Task{
		{Status: models.TaskStatusCompleted},
		{Status: models.TaskStatusCompleted},
		{Status: models.TaskStatusInProgress},
	}}
	assert.Equal(t, 67, WorkflowCompletionRate(&wf))
}

func TestAverageTimeEfficiency(t *testing.T) {
	empty := models.Workflow{}
	assert.Equal(t, 0, AverageTimeEfficiency(&empty))

	wf := models.Workflow{Tasks: []models.Task{
		taskWithTimes(models.TaskStatusInProgress, 100, 80), // 80
		taskWithTimes(models.TaskStatusInProgress, 0, 0),    // 50
	}}
	assert.Equal(t, 65, AverageTimeEfficiency(&wf))
}

func TestBottleneck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)

	blocked := models.Task{Status: models.TaskStatusBlocked}
	assert.Equal(t, "Process blocked", Bottleneck(&blocked, now))

	overdue := models.Task{Status: models.TaskStatusNotStarted, DueDate: &past}
	assert.Equal(t, "Past due date", Bottleneck(&overdue, now))

	waiting := models.Task{Status: models.TaskStatusNotStarted, Dependencies: []string{"t1"}}
	assert.Equal(t, "Waiting on dependencies", Bottleneck(&waiting, now))

	untracked := models.Task{Status: models.TaskStatusInProgress}
	assert.Equal(t, "No time tracking", Bottleneck(&untracked, now))

	d := int64(60)
	fine := models.Task{
		Status:      models.TaskStatusInProgress,
		TimeEntries: []models.TimeEntry{{ID: "e", Duration: &d}},
	}
	assert.Equal(t, "None identified", Bottleneck(&fine, now))
}

func TestPerformanceNotes(t *testing.T) {
	assert.Equal(t, "Process is well-optimized", PerformanceNotes(95))
	assert.Equal(t, "Performing well, minor improvements possible", PerformanceNotes(70))
	assert.Equal(t, "Average performance, review process", PerformanceNotes(50))
	assert.Equal(t, "Needs improvement, consider process redesign", PerformanceNotes(30))
	assert.Equal(t, "Critical issues, requires immediate attention", PerformanceNotes(10))
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	completed := taskWithTimes(models.TaskStatusCompleted, 100, 50)
	completed.ID = "t1"
	completed.Title = "Done"

	wf := models.Workflow{ID: "w1", Title: "W", Tasks: []models.Task{completed}}
	summary := Summarize(&wf, now)

	assert.Equal(t, "w1", summary.ID)
	assert.Equal(t, "W", summary.Name)
	assert.Equal(t, 100, summary.CompletionRate)
	assert.Equal(t, 100, summary.TimeEfficiency)
	assert.Len(t, summary.Tasks, 1)
	assert.Equal(t, 90, summary.Tasks[0].Performance)
	assert.Equal(t, "Process is well-optimized", summary.Tasks[0].Notes)
}
