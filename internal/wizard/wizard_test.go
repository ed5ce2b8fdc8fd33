package wizard

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplify/backend/internal/logging"
	"simplify/backend/internal/services"
	"simplify/backend/internal/storage"
	"simplify/backend/internal/store"
	"simplify/backend/pkg/models"
)

// fakeClient queues canned completion responses and records requests.
type fakeClient struct {
	responses []string
	err       error
	requests  []services.CompletionRequest
}

func (f *fakeClient) Complete(ctx context.Context, req services.CompletionRequest) (*services.CompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	content := "ok"
	if len(f.responses) > 0 {
		content = f.responses[0]
		f.responses = f.responses[1:]
	}
	return &services.CompletionResponse{Content: content, StopReason: "end_turn"}, nil
}

const suggestionText = "1. Screen resumes\n" +
	"Description: Review applicants\n" +
	"Priority: high\n" +
	"Estimated time: 2 hours\n" +
	"2. Schedule interviews\n" +
	"Priority: medium\n" +
	"3. Prepare onboarding docs\n" +
	"Priority: low\n"

func newTestWizard(t *testing.T, client services.CompletionClient) (*Wizard, store.WorkflowStore) {
	t.Helper()
	slot := storage.NewFileSlot(filepath.Join(t.TempDir(), "state.json"))
	st, err := store.NewMemoryStore(slot, logging.NewLogger())
	require.NoError(t, err)
	return New(st, client, logging.NewLogger(), Config{}), st
}

func TestHandleMessageEmptyInput(t *testing.T) {
	client := &fakeClient{}
	wiz, st := newTestWizard(t, client)

	id, err := wiz.HandleMessage(context.Background(), "   ", "")
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, client.requests)
	assert.Len(t, st.Creation().ChatHistory, 1)
}

func TestInitialStepCollectsTitle(t *testing.T) {
	client := &fakeClient{responses: []string{"Nice name! What is it for?"}}
	wiz, st := newTestWizard(t, client)

	id, err := wiz.HandleMessage(context.Background(), "Hiring Pipeline", "")
	require.NoError(t, err)
	assert.Empty(t, id)

	creation := st.Creation()
	assert.Equal(t, "Hiring Pipeline", creation.WorkflowTitle)
	assert.Equal(t, models.StepNaming, creation.CurrentStep)
	// seed + user + assistant ack
	require.Len(t, creation.ChatHistory, 3)
	assert.Equal(t, models.ChatRoleUser, creation.ChatHistory[1].Role)
	assert.Equal(t, "Nice name! What is it for?", creation.ChatHistory[2].Content)
}

func TestInitialStepAdvancesDespiteClientError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("service unavailable")}
	wiz, st := newTestWizard(t, client)

	_, err := wiz.HandleMessage(context.Background(), "Hiring Pipeline", "")
	require.NoError(t, err)

	creation := st.Creation()
	assert.Equal(t, models.StepNaming, creation.CurrentStep)
	assert.Equal(t, "Hiring Pipeline", creation.WorkflowTitle)
	last := creation.ChatHistory[len(creation.ChatHistory)-1]
	assert.Equal(t, models.ChatRoleAssistant, last.Role)
	assert.Contains(t, last.Content, "I encountered an error")
}

func TestNamingStepSuggestsTasks(t *testing.T) {
	client := &fakeClient{responses: []string{"ack", suggestionText}}
	wiz, st := newTestWizard(t, client)

	_, err := wiz.HandleMessage(context.Background(), "Hiring Pipeline", "")
	require.NoError(t, err)
	_, err = wiz.HandleMessage(context.Background(), "Screen, interview and onboard engineers", "")
	require.NoError(t, err)

	creation := st.Creation()
	assert.Equal(t, models.StepTasks, creation.CurrentStep)
	assert.Equal(t, "Screen, interview and onboard engineers", creation.WorkflowDescription)
	require.Len(t, creation.SuggestedTasks, 3)
	assert.Len(t, creation.SelectedTasks, 3)
	assert.Equal(t, "Screen resumes", creation.SuggestedTasks[0].Title)
	assert.Equal(t, models.TaskPriorityHigh, creation.SuggestedTasks[0].Priority)

	last := creation.ChatHistory[len(creation.ChatHistory)-1]
	assert.Contains(t, last.Content, "Would you like to create this workflow now")
}

func TestNamingStepFailureKeepsState(t *testing.T) {
	client := &fakeClient{responses: []string{"ack"}}
	wiz, st := newTestWizard(t, client)

	_, err := wiz.HandleMessage(context.Background(), "Hiring Pipeline", "")
	require.NoError(t, err)

	client.err = fmt.Errorf("service unavailable")
	_, err = wiz.HandleMessage(context.Background(), "Some description", "")
	require.NoError(t, err)

	creation := st.Creation()
	// The failed suggestion call commits nothing
	assert.Equal(t, models.StepNaming, creation.CurrentStep)
	assert.Empty(t, creation.WorkflowDescription)
	assert.Empty(t, creation.SuggestedTasks)
	last := creation.ChatHistory[len(creation.ChatHistory)-1]
	assert.Contains(t, last.Content, "I encountered an error")
}

func runToTasksStep(t *testing.T, wiz *Wizard) {
	t.Helper()
	_, err := wiz.HandleMessage(context.Background(), "Hiring Pipeline", "")
	require.NoError(t, err)
	_, err = wiz.HandleMessage(context.Background(), "Screen, interview and onboard engineers", "")
	require.NoError(t, err)
}

func TestTasksStepAffirmativeFinalizes(t *testing.T) {
	client := &fakeClient{responses: []string{"ack", suggestionText}}
	wiz, st := newTestWizard(t, client)
	runToTasksStep(t, wiz)

	id, err := wiz.HandleMessage(context.Background(), "yes", "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	wf, err := st.GetWorkflow(id)
	require.NoError(t, err)
	assert.Equal(t, "Hiring Pipeline", wf.Title)
	assert.Equal(t, models.WorkflowStatusActive, wf.Status)
	require.Len(t, wf.Tasks, 3)
	assert.Equal(t, "Screen resumes", wf.Tasks[0].Title)
	assert.Equal(t, models.TaskStatusNotStarted, wf.Tasks[0].Status)
	require.NotNil(t, wf.Tasks[0].EstimatedTime)
	assert.Equal(t, 120, *wf.Tasks[0].EstimatedTime)

	// Draft resets for the next workflow
	creation := st.Creation()
	assert.Equal(t, models.StepInitial, creation.CurrentStep)
	assert.Empty(t, creation.WorkflowTitle)
	assert.Len(t, creation.ChatHistory, 1)
}

func TestTasksStepYesWithEditWordIsNotAffirmative(t *testing.T) {
	client := &fakeClient{responses: []string{"ack", suggestionText, "1. Screen resumes\n2. Schedule interviews\n"}}
	wiz, st := newTestWizard(t, client)
	runToTasksStep(t, wiz)

	id, err := wiz.HandleMessage(context.Background(), "yes, but remove the onboarding task", "")
	require.NoError(t, err)
	assert.Empty(t, id)

	creation := st.Creation()
	assert.Equal(t, models.StepTasks, creation.CurrentStep)
	require.Len(t, creation.SuggestedTasks, 2)
	// The earlier selection stands until the user re-confirms
	assert.Len(t, creation.SelectedTasks, 3)
}

func TestTasksStepEditFailureKeepsSuggestions(t *testing.T) {
	client := &fakeClient{responses: []string{"ack", suggestionText}}
	wiz, st := newTestWizard(t, client)
	runToTasksStep(t, wiz)

	client.err = fmt.Errorf("service unavailable")
	_, err := wiz.HandleMessage(context.Background(), "please change the second task", "")
	require.NoError(t, err)

	creation := st.Creation()
	assert.Len(t, creation.SuggestedTasks, 3)
	assert.Len(t, creation.SelectedTasks, 3)
	last := creation.ChatHistory[len(creation.ChatHistory)-1]
	assert.Contains(t, last.Content, "I encountered an error")
}

func TestTasksStepQuestionKeepsState(t *testing.T) {
	client := &fakeClient{responses: []string{"ack", suggestionText, "About two weeks total."}}
	wiz, st := newTestWizard(t, client)
	runToTasksStep(t, wiz)

	id, err := wiz.HandleMessage(context.Background(), "how long will this take overall?", "")
	require.NoError(t, err)
	assert.Empty(t, id)

	creation := st.Creation()
	assert.Equal(t, models.StepTasks, creation.CurrentStep)
	assert.Len(t, creation.SuggestedTasks, 3)
	assert.Contains(t, creation.ChatHistory[len(creation.ChatHistory)-2].Content, "About two weeks")
}

func TestFinalizeFallsBackToSuggestions(t *testing.T) {
	client := &fakeClient{responses: []string{"ack", suggestionText}}
	wiz, st := newTestWizard(t, client)
	runToTasksStep(t, wiz)

	st.SetSelectedTasks(nil)

	id, err := wiz.HandleMessage(context.Background(), "use these tasks", "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	wf, err := st.GetWorkflow(id)
	require.NoError(t, err)
	assert.Len(t, wf.Tasks, 3)
}

func TestImageAttachmentNoted(t *testing.T) {
	client := &fakeClient{responses: []string{"ack"}}
	wiz, st := newTestWizard(t, client)

	_, err := wiz.HandleMessage(context.Background(), "Hiring Pipeline", "base64data")
	require.NoError(t, err)

	creation := st.Creation()
	userMsg := creation.ChatHistory[1]
	assert.Contains(t, userMsg.Content, "[Image attached]")
	assert.Equal(t, "base64data", userMsg.ImageData)
}
