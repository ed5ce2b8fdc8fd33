// Package wizard drives the chat-based workflow creation flow: a
// forward-only step machine that collects a title and description,
// asks the completion service for a task breakdown, and commits the
// accepted tasks to the store.
package wizard

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"simplify/backend/pkg/models"
)

// The parser is heuristic and best-effort: it scans free-form LLM
// prose line by line and silently drops anything it cannot classify.
var (
	numberedTitleRe = regexp.MustCompile(`^\d+\.\s+(.+?)\s*(?:[-:].*)?$`)
	taskPrefixRe    = regexp.MustCompile(`(?i)^task(?:\s+name)?\s*[-:]\s*(.+)$`)
	descriptionRe   = regexp.MustCompile(`(?i)description:?\s*(.+)`)
	priorityRe      = regexp.MustCompile(`(?i)(?:priority|level):?\s*(.+)`)
	estimateRe      = regexp.MustCompile(`(?i)(\d+)\s*(hours?|mins?|minutes?)`)
)

// ParseTaskList converts a completion-service text response into
// draft tasks. A numbered item or a "Task:" prefix opens a draft;
// description, priority and estimated-time lines fill it in.
func ParseTaskList(text string) []models.Task {
	var tasks []models.Task
	var current *models.Task

	flush := func() {
		if current != nil && current.Title != "" {
			tasks = append(tasks, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		title := matchTitle(line)
		if title != "" {
			flush()
			draft := newDraftTask(title)
			current = &draft
			continue
		}
		if current == nil {
			continue
		}

		if m := descriptionRe.FindStringSubmatch(line); m != nil && current.Description == "" {
			current.Description = strings.TrimSpace(m[1])
			continue
		}
		if m := priorityRe.FindStringSubmatch(line); m != nil {
			applyPriority(current, m[1])
			continue
		}
		if m := estimateRe.FindStringSubmatch(line); m != nil {
			applyEstimate(current, m[1], m[2])
			continue
		}
	}

	flush()
	return tasks
}

func matchTitle(line string) string {
	if m := numberedTitleRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := taskPrefixRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func newDraftTask(title string) models.Task {
	now := time.Now()
	return models.Task{
		ID:               uuid.New().String(),
		Title:            title,
		Status:           models.TaskStatusNotStarted,
		Priority:         models.TaskPriorityMedium,
		Assignees:        []string{},
		Dependencies:     []string{},
		Tools:            []string{},
		Tags:             []string{},
		TimeEntries:      []models.TimeEntry{},
		MethodComparison: models.NewMethodComparison(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func applyPriority(task *models.Task, value string) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(value, "high") || strings.Contains(value, "urgent"):
		task.Priority = models.TaskPriorityHigh
	case strings.Contains(value, "medium"):
		task.Priority = models.TaskPriorityMedium
	case strings.Contains(value, "low"):
		task.Priority = models.TaskPriorityLow
	}
}

func applyEstimate(task *models.Task, amount, unit string) {
	n, err := strconv.Atoi(amount)
	if err != nil {
		return
	}
	if strings.HasPrefix(strings.ToLower(unit), "hour") {
		n *= 60
	}
	task.EstimatedTime = &n
}
