// Package store persists conversations as flat JSON snapshots.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/raphaelgruber/redactchat/internal/models"
)

// ErrNotFound indicates an explicitly named conversation file does not
// exist. Check with errors.Is.
var ErrNotFound = errors.New("conversation file not found")

// DefaultPath returns the fallback snapshot location.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "redactchat_previous.json")
}

// Load reads the conversation at path. A missing file is ErrNotFound: an
// explicit path pointing nowhere is a caller mistake, not an empty
// conversation.
func Load(path string) (models.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("parse conversation %s: %w", path, err)
	}
	return conv, nil
}

// LoadDefault reads the fallback snapshot, returning an empty
// conversation if none exists.
func LoadDefault() (models.Conversation, error) {
	conv, err := Load(DefaultPath())
	if errors.Is(err, ErrNotFound) {
		return models.Conversation{}, nil
	}
	return conv, err
}

// Save overwrites path with the full snapshot. The persisted shape is
// the in-memory shape serialized directly; no versioning.
func Save(conv models.Conversation, path string) error {
	if conv == nil {
		conv = models.Conversation{}
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write conversation: %w", err)
	}
	return nil
}

// AutoSaver writes the conversation snapshot at most once, and only if
// the conversation changed since load. The chat front end wires Flush to
// its interrupt handler.
type AutoSaver struct {
	path string
	conv *models.Conversation

	mu    sync.Mutex
	dirty bool
	once  sync.Once
}

// NewAutoSaver tracks conv for saving to path, falling back to
// DefaultPath when path is empty.
func NewAutoSaver(conv *models.Conversation, path string) *AutoSaver {
	if path == "" {
		path = DefaultPath()
	}
	return &AutoSaver{path: path, conv: conv}
}

// Path returns the resolved snapshot location.
func (s *AutoSaver) Path() string {
	return s.path
}

// MarkDirty records that the conversation changed since load.
func (s *AutoSaver) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// Flush saves the snapshot if the conversation is dirty. Only the first
// call does any work; it reports whether a snapshot was written.
func (s *AutoSaver) Flush() (saved bool, err error) {
	s.once.Do(func() {
		s.mu.Lock()
		dirty := s.dirty
		s.mu.Unlock()
		if !dirty {
			return
		}
		if err = Save(*s.conv, s.path); err == nil {
			saved = true
		}
	})
	return saved, err
}
