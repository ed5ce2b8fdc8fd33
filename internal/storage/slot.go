// Package storage provides the durable client-storage slot the
// workflow store serializes into on every state change.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"simplify/backend/pkg/models"
)

// State is the slice of store state that survives restarts. The
// wizard draft and the current-workflow selection are excluded.
type State struct {
	Workflows []models.Workflow `json:"workflows"`
}

// Slot is a single named storage location for the workflow list.
type Slot interface {
	// Load reads the persisted state. A slot that has never been
	// written returns an empty state, not an error.
	Load() (*State, error)
	// Save overwrites the slot with the given state.
	Save(state *State) error
}

// FileSlot stores the state as a JSON document on disk.
type FileSlot struct {
	path string
}

// NewFileSlot creates a FileSlot at the given path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Load reads and decodes the slot file.
func (s *FileSlot) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &State{Workflows: []models.Workflow{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode state file: %w", err)
	}
	if state.Workflows == nil {
		state.Workflows = []models.Workflow{}
	}
	return &state, nil
}

// Save writes the state to a temp file and renames it into place so a
// crash mid-write never leaves a truncated slot.
func (s *FileSlot) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
