package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplify/backend/pkg/models"
)

func TestFileSlotLoadMissingFile(t *testing.T) {
	slot := NewFileSlot(filepath.Join(t.TempDir(), "missing.json"))

	state, err := slot.Load()
	require.NoError(t, err)
	assert.NotNil(t, state.Workflows)
	assert.Empty(t, state.Workflows)
}

func TestFileSlotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	slot := NewFileSlot(path)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	est := 120
	state := &State{Workflows: []models.Workflow{
		{
			ID:        "w1",
			Title:     "Hiring Pipeline",
			Status:    models.WorkflowStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
			Tasks: []models.Task{
				{
					ID:               "t1",
					WorkflowID:       "w1",
					Title:            "Screen resumes",
					Status:           models.TaskStatusInProgress,
					Priority:         models.TaskPriorityHigh,
					EstimatedTime:    &est,
					MethodComparison: models.NewMethodComparison(),
					CreatedAt:        now,
					UpdatedAt:        now,
				},
			},
		},
	}}

	require.NoError(t, slot.Save(state))

	loaded, err := slot.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Workflows, 1)
	wf := loaded.Workflows[0]
	assert.Equal(t, "Hiring Pipeline", wf.Title)
	require.Len(t, wf.Tasks, 1)
	assert.Equal(t, models.TaskPriorityHigh, wf.Tasks[0].Priority)
	require.NotNil(t, wf.Tasks[0].EstimatedTime)
	assert.Equal(t, 120, *wf.Tasks[0].EstimatedTime)
}

func TestFileSlotSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	slot := NewFileSlot(filepath.Join(dir, "state.json"))

	require.NoError(t, slot.Save(&State{Workflows: []models.Workflow{}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestFileSlotLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileSlot(path).Load()
	assert.Error(t, err)
}
