package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"simplify/backend/internal/logging"
	"simplify/backend/internal/storage"
	"simplify/backend/pkg/models"
)

const seedMessage = "Let's create a new workflow. What workflow do you want to create?"

// MemoryStore is the in-memory WorkflowStore implementation. The
// workflow list is serialized into the storage slot after every
// mutation; the wizard draft and the current-workflow selection are
// session state only.
type MemoryStore struct {
	mu     sync.Mutex
	slot   storage.Slot
	logger *logging.Logger

	now   func() time.Time
	newID func() string

	workflows []models.Workflow
	currentID string
	creation  models.WorkflowCreationState
}

// NewMemoryStore creates a MemoryStore hydrated from the slot.
func NewMemoryStore(slot storage.Slot, logger *logging.Logger) (*MemoryStore, error) {
	state, err := slot.Load()
	if err != nil {
		return nil, err
	}

	s := &MemoryStore{
		slot:      slot,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		workflows: state.Workflows,
	}
	s.creation = s.seedCreation()
	return s, nil
}

func (s *MemoryStore) seedCreation() models.WorkflowCreationState {
	return models.WorkflowCreationState{
		CurrentStep:    models.StepInitial,
		SuggestedTasks: []models.Task{},
		SelectedTasks:  []models.Task{},
		ChatHistory: []models.ChatMessage{
			{
				ID:        "1",
				Role:      models.ChatRoleAssistant,
				Content:   seedMessage,
				Timestamp: s.now(),
			},
		},
	}
}

// persist serializes the workflow list into the slot. Local state is
// authoritative; a failed write is logged and not rolled back.
func (s *MemoryStore) persist() {
	state := &storage.State{Workflows: s.workflows}
	if err := s.slot.Save(state); err != nil && s.logger != nil {
		s.logger.Error("failed to persist workflow state: %v", err)
	}
}

func (s *MemoryStore) findWorkflow(id string) *models.Workflow {
	for i := range s.workflows {
		if s.workflows[i].ID == id {
			return &s.workflows[i]
		}
	}
	return nil
}

func findTask(wf *models.Workflow, taskID string) *models.Task {
	for i := range wf.Tasks {
		if wf.Tasks[i].ID == taskID {
			return &wf.Tasks[i]
		}
	}
	return nil
}

// ListWorkflows returns a copy of every workflow in creation order.
func (s *MemoryStore) ListWorkflows() []models.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Workflow, 0, len(s.workflows))
	for i := range s.workflows {
		out = append(out, cloneWorkflow(&s.workflows[i]))
	}
	return out
}

// GetWorkflow returns a copy of the workflow with the given id.
func (s *MemoryStore) GetWorkflow(id string) (*models.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := s.findWorkflow(id)
	if wf == nil {
		return nil, ErrWorkflowNotFound
	}
	clone := cloneWorkflow(wf)
	return &clone, nil
}

// GetTask returns a copy of the task within the given workflow.
func (s *MemoryStore) GetTask(workflowID, taskID string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := s.findWorkflow(workflowID)
	if wf == nil {
		return nil, ErrWorkflowNotFound
	}
	task := findTask(wf, taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}
	clone := cloneTask(task)
	return &clone, nil
}

// CurrentWorkflow returns a copy of the selected workflow, or nil.
func (s *MemoryStore) CurrentWorkflow() *models.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentID == "" {
		return nil
	}
	wf := s.findWorkflow(s.currentID)
	if wf == nil {
		return nil
	}
	clone := cloneWorkflow(wf)
	return &clone
}

// SetCurrentWorkflow selects the working workflow for this session.
func (s *MemoryStore) SetCurrentWorkflow(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.currentID = ""
		return nil
	}
	if s.findWorkflow(id) == nil {
		return ErrWorkflowNotFound
	}
	s.currentID = id
	return nil
}

// CreateWorkflow adds a workflow with an empty task list and selects
// it as the current workflow.
func (s *MemoryStore) CreateWorkflow(nw NewWorkflow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	status := nw.Status
	if status == "" {
		status = models.WorkflowStatusActive
	}

	wf := models.Workflow{
		ID:          s.newID(),
		Title:       nw.Title,
		Description: nw.Description,
		Tasks:       []models.Task{},
		CreatedBy:   nw.CreatedBy,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.workflows = append(s.workflows, wf)
	s.currentID = wf.ID
	s.persist()
	return wf.ID, nil
}

// UpdateWorkflow applies the non-nil fields and refreshes updatedAt.
func (s *MemoryStore) UpdateWorkflow(id string, upd models.WorkflowUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := s.findWorkflow(id)
	if wf == nil {
		return ErrWorkflowNotFound
	}

	if upd.Title != nil {
		wf.Title = *upd.Title
	}
	if upd.Description != nil {
		wf.Description = *upd.Description
	}
	if upd.Status != nil {
		wf.Status = *upd.Status
	}
	wf.UpdatedAt = s.now()
	s.persist()
	return nil
}

// DeleteWorkflow removes the workflow and every task it owns.
func (s *MemoryStore) DeleteWorkflow(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.workflows {
		if s.workflows[i].ID == id {
			s.workflows = append(s.workflows[:i], s.workflows[i+1:]...)
			if s.currentID == id {
				s.currentID = ""
			}
			s.persist()
			return nil
		}
	}
	return ErrWorkflowNotFound
}

// CreateTask appends a task to the owning workflow's list.
func (s *MemoryStore) CreateTask(workflowID string, nt NewTask) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := s.findWorkflow(workflowID)
	if wf == nil {
		return "", ErrWorkflowNotFound
	}

	now := s.now()
	status := nt.Status
	if status == "" {
		status = models.TaskStatusNotStarted
	}
	priority := nt.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := models.Task{
		ID:               s.newID(),
		WorkflowID:       workflowID,
		Title:            nt.Title,
		Description:      nt.Description,
		Status:           status,
		Priority:         priority,
		Assignees:        orEmpty(nt.Assignees),
		DueDate:          nt.DueDate,
		StartDate:        nt.StartDate,
		EstimatedTime:    nt.EstimatedTime,
		ActualTime:       nt.ActualTime,
		Dependencies:     orEmpty(nt.Dependencies),
		Tools:            orEmpty(nt.Tools),
		Tags:             orEmpty(nt.Tags),
		TimeEntries:      []models.TimeEntry{},
		MethodComparison: models.NewMethodComparison(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	wf.Tasks = append(wf.Tasks, task)
	wf.UpdatedAt = now
	s.persist()
	return task.ID, nil
}

// UpdateTask applies the partial update. A status change with a method
// supplied is mirrored into that method's record in addition to the
// task-level status.
func (s *MemoryStore) UpdateTask(workflowID, taskID string, upd models.TaskUpdate, method models.Method) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if method != "" && !method.Valid() {
		return ErrUnknownMethod
	}

	wf := s.findWorkflow(workflowID)
	if wf == nil {
		return ErrWorkflowNotFound
	}
	task := findTask(wf, taskID)
	if task == nil {
		return ErrTaskNotFound
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Status != nil {
		task.Status = *upd.Status
		if method != "" {
			task.MethodComparison.Record(method).Status = *upd.Status
		}
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.Assignees != nil {
		task.Assignees = upd.Assignees
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}
	if upd.StartDate != nil {
		task.StartDate = upd.StartDate
	}
	if upd.EstimatedTime != nil {
		task.EstimatedTime = upd.EstimatedTime
	}
	if upd.ActualTime != nil {
		task.ActualTime = upd.ActualTime
	}
	if upd.Dependencies != nil {
		task.Dependencies = upd.Dependencies
	}
	if upd.Tools != nil {
		task.Tools = upd.Tools
	}
	if upd.Tags != nil {
		task.Tags = upd.Tags
	}

	now := s.now()
	task.UpdatedAt = now
	wf.UpdatedAt = now
	s.persist()
	return nil
}

// DeleteTask removes the task from its workflow's list.
func (s *MemoryStore) DeleteTask(workflowID, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := s.findWorkflow(workflowID)
	if wf == nil {
		return ErrWorkflowNotFound
	}

	for i := range wf.Tasks {
		if wf.Tasks[i].ID == taskID {
			wf.Tasks = append(wf.Tasks[:i], wf.Tasks[i+1:]...)
			wf.UpdatedAt = s.now()
			s.persist()
			return nil
		}
	}
	return ErrTaskNotFound
}

// UpdateTaskTools replaces the tool list inside the named method record.
func (s *MemoryStore) UpdateTaskTools(workflowID, taskID string, tools []string, method models.Method) error {
	return s.updateMethodRecord(workflowID, taskID, method, func(rec *models.MethodRecord) {
		rec.Tools = orEmpty(tools)
	})
}

// UpdateTaskManualTime replaces the manual time inside the named method record.
func (s *MemoryStore) UpdateTaskManualTime(workflowID, taskID string, seconds *int64, method models.Method) error {
	return s.updateMethodRecord(workflowID, taskID, method, func(rec *models.MethodRecord) {
		rec.ManualTime = seconds
	})
}

func (s *MemoryStore) updateMethodRecord(workflowID, taskID string, method models.Method, apply func(*models.MethodRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !method.Valid() {
		return ErrUnknownMethod
	}
	wf := s.findWorkflow(workflowID)
	if wf == nil {
		return ErrWorkflowNotFound
	}
	task := findTask(wf, taskID)
	if task == nil {
		return ErrTaskNotFound
	}

	apply(task.MethodComparison.Record(method))
	now := s.now()
	task.UpdatedAt = now
	wf.UpdatedAt = now
	s.persist()
	return nil
}

// StartTimer opens a time entry on the named method. The entry lands
// on the flat list and the method record; a not_started task or method
// is promoted to in_progress as a side effect.
func (s *MemoryStore) StartTimer(workflowID, taskID string, method models.Method, notes string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !method.Valid() {
		return "", ErrUnknownMethod
	}
	wf := s.findWorkflow(workflowID)
	if wf == nil {
		return "", ErrWorkflowNotFound
	}
	task := findTask(wf, taskID)
	if task == nil {
		return "", ErrTaskNotFound
	}

	rec := task.MethodComparison.Record(method)
	for i := range rec.TimeEntries {
		if rec.TimeEntries[i].Running() {
			return "", ErrTimerActive
		}
	}

	now := s.now()
	entry := models.TimeEntry{
		ID:        s.newID(),
		TaskID:    taskID,
		StartTime: now,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	task.TimeEntries = append(task.TimeEntries, entry)
	rec.TimeEntries = append(rec.TimeEntries, entry)
	if task.Status == models.TaskStatusNotStarted {
		task.Status = models.TaskStatusInProgress
	}
	if rec.Status == models.TaskStatusNotStarted {
		rec.Status = models.TaskStatusInProgress
	}
	task.UpdatedAt = now
	wf.UpdatedAt = now
	s.persist()
	return entry.ID, nil
}

// StopTimer closes the entry in the method record and mirrors the
// closure onto the flat copy with the same id. Status is untouched.
func (s *MemoryStore) StopTimer(workflowID, taskID, timeEntryID string, method models.Method) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !method.Valid() {
		return ErrUnknownMethod
	}
	wf := s.findWorkflow(workflowID)
	if wf == nil {
		return ErrWorkflowNotFound
	}
	task := findTask(wf, taskID)
	if task == nil {
		return ErrTaskNotFound
	}

	rec := task.MethodComparison.Record(method)
	var entry *models.TimeEntry
	for i := range rec.TimeEntries {
		if rec.TimeEntries[i].ID == timeEntryID {
			entry = &rec.TimeEntries[i]
			break
		}
	}
	if entry == nil {
		return ErrTimeEntryNotFound
	}
	if !entry.Running() {
		// Stopping is one-way; a closed entry never changes again.
		return nil
	}

	now := s.now()
	closeEntry(entry, now)
	for i := range task.TimeEntries {
		if task.TimeEntries[i].ID == timeEntryID {
			closeEntry(&task.TimeEntries[i], now)
			break
		}
	}
	task.UpdatedAt = now
	wf.UpdatedAt = now
	s.persist()
	return nil
}

func closeEntry(entry *models.TimeEntry, now time.Time) {
	end := now
	duration := int64(end.Sub(entry.StartTime) / time.Second)
	entry.EndTime = &end
	entry.Duration = &duration
	entry.UpdatedAt = now
}

// AddManualTimeEntry records an already-elapsed interval. The entry is
// closed on arrival, with duration derived from the two timestamps,
// and lands on the flat list and the current method.
func (s *MemoryStore) AddManualTimeEntry(workflowID, taskID string, start, end time.Time, notes string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if end.Before(start) {
		return "", ErrInvalidTimeRange
	}
	wf := s.findWorkflow(workflowID)
	if wf == nil {
		return "", ErrWorkflowNotFound
	}
	task := findTask(wf, taskID)
	if task == nil {
		return "", ErrTaskNotFound
	}

	now := s.now()
	endCopy := end
	duration := int64(end.Sub(start) / time.Second)
	entry := models.TimeEntry{
		ID:        s.newID(),
		TaskID:    taskID,
		StartTime: start,
		EndTime:   &endCopy,
		Duration:  &duration,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	task.TimeEntries = append(task.TimeEntries, entry)
	rec := task.MethodComparison.Record(models.MethodCurrent)
	rec.TimeEntries = append(rec.TimeEntries, entry)
	task.UpdatedAt = now
	wf.UpdatedAt = now
	s.persist()
	return entry.ID, nil
}

// Creation returns a copy of the wizard draft.
func (s *MemoryStore) Creation() models.WorkflowCreationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCreation(&s.creation)
}

// SetCreationStep moves the wizard to the given step.
func (s *MemoryStore) SetCreationStep(step models.CreationStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creation.CurrentStep = step
}

// SetCreationTitle records the workflow title collected by the wizard.
func (s *MemoryStore) SetCreationTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creation.WorkflowTitle = title
}

// SetCreationDescription records the workflow description collected by the wizard.
func (s *MemoryStore) SetCreationDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creation.WorkflowDescription = description
}

// SetSuggestedTasks replaces the drafted task list. With selectAll the
// selection follows the suggestions; otherwise the user must re-confirm.
func (s *MemoryStore) SetSuggestedTasks(tasks []models.Task, selectAll bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creation.SuggestedTasks = orEmptyTasks(tasks)
	if selectAll {
		s.creation.SelectedTasks = orEmptyTasks(tasks)
	}
}

// SetSelectedTasks replaces the accepted subset of suggestions.
func (s *MemoryStore) SetSelectedTasks(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creation.SelectedTasks = orEmptyTasks(tasks)
}

// AddChatMessage appends a message to the wizard transcript and
// returns its id.
func (s *MemoryStore) AddChatMessage(role models.ChatRole, content, imageData string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.ChatMessage{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
		ImageData: imageData,
	}
	s.creation.ChatHistory = append(s.creation.ChatHistory, msg)
	return msg.ID
}

// ResetCreation returns the wizard draft to its seed state.
func (s *MemoryStore) ResetCreation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creation = s.seedCreation()
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func orEmptyTasks(list []models.Task) []models.Task {
	if list == nil {
		return []models.Task{}
	}
	return list
}
