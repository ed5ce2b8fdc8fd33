package store

import (
	"simplify/backend/pkg/models"
)

// Clone helpers so query results never alias live store state.

func cloneWorkflow(wf *models.Workflow) models.Workflow {
	out := *wf
	out.Tasks = make([]models.Task, len(wf.Tasks))
	for i := range wf.Tasks {
		out.Tasks[i] = cloneTask(&wf.Tasks[i])
	}
	return out
}

func cloneTask(task *models.Task) models.Task {
	out := *task
	out.Assignees = append([]string(nil), task.Assignees...)
	out.Dependencies = append([]string(nil), task.Dependencies...)
	out.Tools = append([]string(nil), task.Tools...)
	out.Tags = append([]string(nil), task.Tags...)
	out.TimeEntries = append([]models.TimeEntry(nil), task.TimeEntries...)
	out.MethodComparison.CurrentMethod = cloneMethodRecord(&task.MethodComparison.CurrentMethod)
	out.MethodComparison.AIMethod = cloneMethodRecord(&task.MethodComparison.AIMethod)
	return out
}

func cloneMethodRecord(rec *models.MethodRecord) models.MethodRecord {
	out := *rec
	out.TimeEntries = append([]models.TimeEntry(nil), rec.TimeEntries...)
	out.Tools = append([]string(nil), rec.Tools...)
	return out
}

func cloneCreation(state *models.WorkflowCreationState) models.WorkflowCreationState {
	out := *state
	out.SuggestedTasks = make([]models.Task, len(state.SuggestedTasks))
	for i := range state.SuggestedTasks {
		out.SuggestedTasks[i] = cloneTask(&state.SuggestedTasks[i])
	}
	out.SelectedTasks = make([]models.Task, len(state.SelectedTasks))
	for i := range state.SelectedTasks {
		out.SelectedTasks[i] = cloneTask(&state.SelectedTasks[i])
	}
	out.ChatHistory = append([]models.ChatMessage(nil), state.ChatHistory...)
	return out
}
