package wizard

import (
	"context"
	"fmt"
	"strings"

	"simplify/backend/internal/logging"
	"simplify/backend/internal/services"
	"simplify/backend/internal/store"
	"simplify/backend/pkg/models"
)

const (
	defaultChatModel    = "claude-3-haiku-20240307"
	defaultSuggestModel = "claude-3-sonnet-20240229"

	ackMaxTokens     = 300
	suggestMaxTokens = 2000
	editMaxTokens    = 1500
	chatMaxTokens    = 1000

	defaultTemperature = 0.7
)

// Config selects the completion-service models the wizard calls.
type Config struct {
	// ChatModel handles short conversational replies.
	ChatModel string
	// SuggestModel handles task suggestion and edit passes.
	SuggestModel string
}

// Wizard advances the workflow-creation conversation. Every mutation
// goes through the injected store; completion-service failures never
// advance the step machine.
type Wizard struct {
	store  store.WorkflowStore
	client services.CompletionClient
	logger *logging.Logger
	parse  func(string) []models.Task
	cfg    Config
}

// New creates a Wizard over the given store and completion client.
func New(st store.WorkflowStore, client services.CompletionClient, logger *logging.Logger, cfg Config) *Wizard {
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaultChatModel
	}
	if cfg.SuggestModel == "" {
		cfg.SuggestModel = defaultSuggestModel
	}
	return &Wizard{
		store:  st,
		client: client,
		logger: logger,
		parse:  ParseTaskList,
		cfg:    cfg,
	}
}

// HandleMessage processes one user message against the current step.
// It returns the created workflow's id when the message finalized the
// draft, otherwise an empty string. The error return is reserved for
// store failures; completion-service errors surface in the transcript.
func (w *Wizard) HandleMessage(ctx context.Context, content, imageData string) (string, error) {
	if strings.TrimSpace(content) == "" && imageData == "" {
		return "", nil
	}

	display := content
	if imageData != "" {
		display = content + "\n[Image attached]"
	}
	w.store.AddChatMessage(models.ChatRoleUser, display, imageData)

	switch w.store.Creation().CurrentStep {
	case models.StepInitial:
		w.handleInitial(ctx, content)
	case models.StepNaming:
		w.handleNaming(ctx, content)
	case models.StepTasks:
		return w.handleTasks(ctx, content)
	case models.StepComplete:
		w.store.ResetCreation()
		w.reply("Would you like to create another workflow?")
	default:
		w.handleConversation(ctx, content)
	}
	return "", nil
}

// handleInitial stores the workflow title and asks for a description.
// The acknowledgment call is fire-and-forget: its failure lands in the
// transcript without moving the step machine again.
func (w *Wizard) handleInitial(ctx context.Context, content string) {
	w.store.SetCreationTitle(content)
	w.store.SetCreationStep(models.StepNaming)

	prompt := fmt.Sprintf(
		"The user wants to create a workflow named %q. "+
			"Generate a friendly, conversational response acknowledging their workflow name and asking for a description of what this workflow is for. "+
			"Keep your response under 2 sentences and make it sound natural and helpful.",
		content,
	)

	resp, err := w.complete(ctx, w.cfg.ChatModel, ackMaxTokens, prompt)
	if err != nil {
		w.replyError(err)
		return
	}
	w.reply(resp.Content)
}

// handleNaming asks the completion service for a 5-7 task breakdown.
// The description and the step transition are only committed once the
// suggestion call has succeeded.
func (w *Wizard) handleNaming(ctx context.Context, content string) {
	creation := w.store.Creation()
	prompt := fmt.Sprintf(
		"I need to create a workflow named %q with the following description: %q.\n\n"+
			"Please suggest 5-7 tasks that would be appropriate for this workflow.\n"+
			"For each task, include:\n"+
			"1. Task name (short and clear)\n"+
			"2. Brief description (1-2 sentences)\n"+
			"3. Estimated time to complete (in hours)\n"+
			"4. Priority level (low, medium, high, urgent)\n\n"+
			"Format your response as a structured list that I can easily read.\n\n"+
			"IMPORTANT: Your response should ONLY include the task list without any introduction or conclusion.",
		creation.WorkflowTitle, content,
	)

	resp, err := w.complete(ctx, w.cfg.SuggestModel, suggestMaxTokens, prompt)
	if err != nil {
		w.replyError(err)
		return
	}

	w.store.SetCreationDescription(content)
	w.store.SetCreationStep(models.StepTasks)
	w.store.SetSuggestedTasks(w.parse(resp.Content), true)

	w.reply(fmt.Sprintf(
		"Here are the suggested tasks for your %q workflow:\n\n%s\n\n"+
			"Would you like to create this workflow now with these tasks? "+
			"Reply with \"yes\" to create the workflow, or let me know if you'd like to modify any tasks first.",
		creation.WorkflowTitle, resp.Content,
	))
}

// handleTasks branches on the user's intent: accept the suggestions,
// request edits, or ask a clarifying question.
func (w *Wizard) handleTasks(ctx context.Context, content string) (string, error) {
	switch {
	case isAffirmative(content):
		return w.finalize()
	case isEditIntent(content):
		w.handleEdit(ctx, content)
	default:
		w.handleQuestion(ctx, content)
	}
	return "", nil
}

// finalize creates the workflow and its accepted tasks, then resets
// the draft. An empty selection falls back to the full suggestion list.
func (w *Wizard) finalize() (string, error) {
	creation := w.store.Creation()
	tasks := creation.SelectedTasks
	if len(tasks) == 0 {
		tasks = creation.SuggestedTasks
	}

	workflowID, err := w.store.CreateWorkflow(store.NewWorkflow{
		Title:       creation.WorkflowTitle,
		Description: creation.WorkflowDescription,
		CreatedBy:   "current-user",
		Status:      models.WorkflowStatusActive,
	})
	if err != nil {
		return "", err
	}

	for i := range tasks {
		draft := &tasks[i]
		if _, err := w.store.CreateTask(workflowID, store.NewTask{
			Title:         draft.Title,
			Description:   draft.Description,
			Status:        models.TaskStatusNotStarted,
			Priority:      draft.Priority,
			Assignees:     draft.Assignees,
			DueDate:       draft.DueDate,
			EstimatedTime: draft.EstimatedTime,
			Dependencies:  draft.Dependencies,
			Tools:         draft.Tools,
			Tags:          draft.Tags,
		}); err != nil {
			return "", err
		}
	}

	w.reply(fmt.Sprintf(
		"Great! I've created your %q workflow with %d tasks. You can now view and manage your workflow.",
		creation.WorkflowTitle, len(tasks),
	))
	w.store.ResetCreation()
	return workflowID, nil
}

// handleEdit sends the suggestion list plus the edit request back to
// the completion service and re-parses the returned list. Only the
// suggestions are replaced; the selection stands until re-confirmed.
func (w *Wizard) handleEdit(ctx context.Context, content string) {
	creation := w.store.Creation()
	prompt := fmt.Sprintf(
		"We are creating a workflow named %q with the description: %q.\n\n"+
			"I've suggested these tasks:\n%s\n\n"+
			"The user wants to edit these tasks with this request: %q\n\n"+
			"Please respond with:\n"+
			"1. A helpful response acknowledging their edit request\n"+
			"2. A COMPLETE updated list of tasks with the requested changes applied\n\n"+
			"Format your response so that the updated task list is clearly separated from your message and formatted as a numbered list.\n"+
			"Make sure each task has a title, description, priority, and estimated time.",
		creation.WorkflowTitle, creation.WorkflowDescription, formatTaskList(creation.SuggestedTasks), content,
	)

	resp, err := w.complete(ctx, w.cfg.SuggestModel, editMaxTokens, prompt)
	if err != nil {
		w.replyError(err)
		return
	}

	w.reply(resp.Content)
	if updated := w.parse(resp.Content); len(updated) > 0 {
		w.store.SetSuggestedTasks(updated, false)
	}
	w.reply("Are you happy with these tasks now? Say \"use these tasks\" to create the workflow, or let me know if you'd like to make more changes.")
}

// handleQuestion forwards anything else as a clarifying question with
// the workflow context attached.
func (w *Wizard) handleQuestion(ctx context.Context, content string) {
	creation := w.store.Creation()
	prompt := fmt.Sprintf(
		"We are creating a workflow named %q with the description: %q.\n\n"+
			"I've suggested these tasks:\n%s\n\n"+
			"The user's message is: %q\n\n"+
			"Please provide a helpful response that addresses their message. If they're asking a question about the workflow or tasks, answer it helpfully.\n"+
			"Keep your response concise and focused on helping them complete their workflow creation.",
		creation.WorkflowTitle, creation.WorkflowDescription, formatTaskList(creation.SuggestedTasks), content,
	)

	resp, err := w.complete(ctx, w.cfg.SuggestModel, chatMaxTokens, prompt)
	if err != nil {
		w.replyError(err)
		return
	}

	w.reply(resp.Content)
	w.reply("Would you like to use the suggested tasks to create this workflow now? Say \"use these tasks\" to proceed, or let me know if you'd like to modify any tasks.")
}

// handleConversation covers the declared-but-unreached steps with a
// plain contextual reply.
func (w *Wizard) handleConversation(ctx context.Context, content string) {
	creation := w.store.Creation()
	prompt := fmt.Sprintf(
		"We are creating a workflow named %q with the description: %q.\n"+
			"The current step is: %q.\n\n"+
			"The user's message is: %q\n\n"+
			"Please provide a helpful, conversational response that addresses their message and helps them continue building their workflow.",
		creation.WorkflowTitle, creation.WorkflowDescription, creation.CurrentStep, content,
	)

	resp, err := w.complete(ctx, w.cfg.SuggestModel, chatMaxTokens, prompt)
	if err != nil {
		w.replyError(err)
		return
	}
	w.reply(resp.Content)
}

func (w *Wizard) complete(ctx context.Context, model string, maxTokens int, prompt string) (*services.CompletionResponse, error) {
	return w.client.Complete(ctx, services.CompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: defaultTemperature,
		Messages:    []services.Message{services.TextMessage("user", prompt)},
	})
}

func (w *Wizard) reply(content string) {
	w.store.AddChatMessage(models.ChatRoleAssistant, content, "")
}

func (w *Wizard) replyError(err error) {
	if w.logger != nil {
		w.logger.Error("completion service call failed: %v", err)
	}
	w.store.AddChatMessage(models.ChatRoleAssistant,
		fmt.Sprintf("I encountered an error while processing your request. Error: %v. Please try again.", err), "")
}

func formatTaskList(tasks []models.Task) string {
	lines := make([]string, 0, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		line := fmt.Sprintf("%d. %s - %s (Priority: %s", i+1, task.Title, task.Description, task.Priority)
		if task.EstimatedTime != nil {
			line += fmt.Sprintf(", Est. time: %d minutes", *task.EstimatedTime)
		}
		line += ")"
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func isAffirmative(content string) bool {
	lower := strings.ToLower(content)
	if strings.Contains(lower, "use these tasks") ||
		strings.Contains(lower, "looks good") ||
		strings.Contains(lower, "proceed with these") {
		return true
	}
	return strings.Contains(lower, "yes") &&
		!strings.Contains(lower, "remove") &&
		!strings.Contains(lower, "change") &&
		!strings.Contains(lower, "edit")
}

func isEditIntent(content string) bool {
	lower := strings.ToLower(content)
	for _, word := range []string{"edit", "change", "modify", "remove", "add", "replace"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
