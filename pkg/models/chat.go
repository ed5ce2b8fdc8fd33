package models

import (
	"time"
)

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
)

// ChatMessage is one entry in the workflow-creation chat transcript
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ImageData string    `json:"imageData,omitempty"` // base64 data URL
}

// CreationStep is one state of the workflow-creation wizard.
// Transitions only move forward; tools, users and review are declared
// but not reached by any transition.
type CreationStep string

const (
	StepInitial  CreationStep = "initial"
	StepNaming   CreationStep = "naming"
	StepTasks    CreationStep = "tasks"
	StepTools    CreationStep = "tools"
	StepUsers    CreationStep = "users"
	StepReview   CreationStep = "review"
	StepComplete CreationStep = "complete"
)

// WorkflowCreationState is the single in-flight wizard draft. It is
// never persisted across restarts.
type WorkflowCreationState struct {
	CurrentStep         CreationStep  `json:"currentStep"`
	WorkflowTitle       string        `json:"workflowTitle"`
	WorkflowDescription string        `json:"workflowDescription"`
	SuggestedTasks      []Task        `json:"suggestedTasks"`
	SelectedTasks       []Task        `json:"selectedTasks"`
	ChatHistory         []ChatMessage `json:"chatHistory"`
}
