// Package jsonfile persists the ledger state as a single JSON document on
// disk: the "one opaque blob" flavour of local storage. Saves write to a
// temp file and rename, so a crash mid-save leaves the previous blob intact.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mizaniya/internal/core"
)

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(_ context.Context) (core.State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.NewState(), nil
	}
	if err != nil {
		return core.NewState(), fmt.Errorf("read state file: %w", err)
	}

	state := core.NewState()
	if err := json.Unmarshal(data, &state); err != nil {
		return core.NewState(), fmt.Errorf("decode state file: %w", err)
	}
	if state.Records == nil {
		state.Records = make(map[string]core.Record)
	}
	return state, nil
}

func (s *Store) Save(_ context.Context, state core.State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
