package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jocilejr/whatsbot/internal/model"
)

// FileBackend keeps the snapshot in a single JSON file. Writes go to a temp
// file in the same directory which is fsynced and renamed over the target.
type FileBackend struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewFileBackend(path string, logger *slog.Logger) *FileBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileBackend{path: path, logger: logger.With("component", "persist", "backend", "file")}
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Load(_ context.Context) model.Snapshot {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			b.logger.Warn("state file unreadable, starting empty", "path", b.path, "error", err)
		}
		return model.EmptySnapshot()
	}
	snap, err := Decode(data)
	if err != nil {
		if !errors.Is(err, ErrEmpty) {
			b.logger.Warn("state file corrupt, starting empty", "path", b.path, "error", err)
		}
		return model.EmptySnapshot()
	}
	return snap
}

func (b *FileBackend) Save(_ context.Context, snap model.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
