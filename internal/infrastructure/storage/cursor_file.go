package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"ChannelSync/internal/domain"
	"ChannelSync/internal/ports"
)

// FileCursorStore keeps all channel cursors in one JSON document keyed by channel.
type FileCursorStore struct {
	path string
	mu   sync.Mutex
}

var _ ports.CursorStore = (*FileCursorStore)(nil)

// NewFileCursorStore uses the JSON file at path; it is created on first save.
func NewFileCursorStore(path string) *FileCursorStore {
	return &FileCursorStore{path: path}
}

// Load returns the channel's cursor, or a zero cursor when none was saved yet.
func (s *FileCursorStore) Load(_ context.Context, channel string) (domain.SyncCursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return domain.SyncCursor{}, err
	}
	return state[channel], nil
}

// Save replaces the channel's cursor and rewrites the file.
func (s *FileCursorStore) Save(_ context.Context, channel string, cursor domain.SyncCursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return err
	}
	state[channel] = cursor

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sync state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write sync state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace sync state: %w", err)
	}
	return nil
}

func (s *FileCursorStore) read() (map[string]domain.SyncCursor, error) {
	state := map[string]domain.SyncCursor{}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sync state: %w", err)
	}
	if len(data) == 0 {
		return state, nil
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode sync state %s: %w", s.path, err)
	}
	return state, nil
}
