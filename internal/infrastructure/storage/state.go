package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vitos/futures-trader/internal/domain"
)

// StateFile persists the bot state as JSON. A corrupted file is moved aside
// with a timestamp suffix and a fresh state is returned, so a bad shutdown
// never blocks the next start.
type StateFile struct {
	path string
}

func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

func (s *StateFile) Load() (*domain.BotState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &domain.BotState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", s.path, err)
	}

	var state domain.BotState
	if err := json.Unmarshal(data, &state); err != nil {
		backup := fmt.Sprintf("%s.corrupted.%s", s.path, time.Now().UTC().Format("20060102T150405"))
		if renameErr := os.Rename(s.path, backup); renameErr != nil {
			return nil, fmt.Errorf("state: %w (backup also failed: %v)", domain.ErrStateCorrupted, renameErr)
		}
		return &domain.BotState{}, nil
	}
	return &state, nil
}

func (s *StateFile) Save(state *domain.BotState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}

	// Write-then-rename keeps the file intact if we die mid-write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("state: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("state: rename: %w", err)
	}
	return nil
}
