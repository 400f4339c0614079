package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"liquidityEngine/internal/model"
)

// CheckpointFile keeps named checkpoints in one JSON document, so loops over
// different pool selections can share a file.
type CheckpointFile struct {
	path string
	mu   sync.Mutex
}

func NewCheckpointFile(path string) *CheckpointFile {
	return &CheckpointFile{path: path}
}

func (f *CheckpointFile) LoadCheckpoint(_ context.Context, name string) (model.Checkpoint, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return model.Checkpoint{}, false, err
	}
	cp, ok := all[name]
	return cp, ok, nil
}

// SaveCheckpoint replaces the entry for name and rewrites the document
// through a temp file.
func (f *CheckpointFile) SaveCheckpoint(_ context.Context, name string, cp model.Checkpoint) error {
	if name == "" {
		return fmt.Errorf("checkpoint name required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return err
	}
	all[name] = cp

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoints: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoints: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *CheckpointFile) read() (map[string]model.Checkpoint, error) {
	all := make(map[string]model.Checkpoint)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return all, nil
		}
		return nil, fmt.Errorf("read checkpoints: %w", err)
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse checkpoints %s: %w", f.path, err)
	}
	return all, nil
}
