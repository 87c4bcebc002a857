package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jocilejr/whatsbot/internal/metrics"
	"github.com/jocilejr/whatsbot/internal/model"
	"github.com/jocilejr/whatsbot/internal/persist"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failure")
)

// Store owns the live snapshot and is the only writer of its backend.
// Every operation runs inside one exclusive critical section; mutations are
// applied to a deep copy that replaces the live snapshot only after the
// backend accepted it.
type Store struct {
	mu      sync.Mutex
	snap    model.Snapshot
	backend persist.Backend

	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	newID   func() string
}

type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	Now     func() time.Time
	NewID   func() string
}

func New(ctx context.Context, backend persist.Backend, opts Options) *Store {
	if backend == nil {
		backend = persist.NewMemoryBackend()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		backend: backend,
		logger:  logger.With("component", "store"),
		metrics: opts.Metrics,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	s.snap = backend.Load(ctx)
	s.snap.Normalize()
	s.metrics.SetOwners(len(s.snap.Owners))
	s.logger.Info("snapshot loaded", "backend", backend.Name(), "owners", len(s.snap.Owners))
	return s
}

// mutate runs fn against a copy of the live snapshot. When fn reports a
// change the copy is saved and then published; otherwise nothing is written.
func (s *Store) mutate(ctx context.Context, op string, fn func(next *model.Snapshot) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	changed, err := fn(&next)
	if err != nil {
		s.metrics.ObserveOp(op, resultOf(err))
		return err
	}
	if !changed {
		s.metrics.ObserveOp(op, "noop")
		return nil
	}

	start := time.Now()
	if err := s.backend.Save(context.WithoutCancel(ctx), next); err != nil {
		s.metrics.ObserveOp(op, "persistence_failure")
		s.logger.Error("persist failed, keeping previous snapshot", "op", op, "backend", s.backend.Name(), "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.metrics.ObservePersist(s.backend.Name(), time.Since(start))
	s.metrics.ObserveOp(op, "ok")

	s.snap = next
	s.metrics.SetOwners(len(s.snap.Owners))
	return nil
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

// Snapshot returns a deep copy of the live dataset.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

func (s *Store) Backend() persist.Backend { return s.backend }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

func ownerNotFound(id string) error {
	return fmt.Errorf("owner %s: %w", id, ErrNotFound)
}

func deviceNotFound(id string) error {
	return fmt.Errorf("device %s: %w", id, ErrNotFound)
}

// lookupDevice resolves an owner and one of its devices inside snap.
func lookupDevice(snap *model.Snapshot, ownerID, deviceID string) (oi, di int, err error) {
	oi = snap.OwnerIndex(ownerID)
	if oi < 0 {
		return -1, -1, ownerNotFound(ownerID)
	}
	di = snap.Owners[oi].DeviceIndex(deviceID)
	if di < 0 {
		return oi, -1, deviceNotFound(deviceID)
	}
	return oi, di, nil
}
