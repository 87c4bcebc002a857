// Package persist defines how a model.Snapshot is written to and restored
// from durable storage. Every backend rewrites the whole snapshot on Save and
// falls back to an empty snapshot when Load finds nothing usable.
package persist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jocilejr/whatsbot/internal/model"
)

// Backend is a durable home for the snapshot.
type Backend interface {
	Name() string
	// Load never fails: missing or unreadable data yields model.EmptySnapshot().
	Load(ctx context.Context) model.Snapshot
	Save(ctx context.Context, snap model.Snapshot) error
	Close() error
}

var ErrEmpty = errors.New("empty state")

// Encode renders the snapshot as the persisted JSON document.
func Encode(snap model.Snapshot) ([]byte, error) {
	snap.Normalize()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted document. Empty input returns ErrEmpty.
func Decode(data []byte) (model.Snapshot, error) {
	if len(data) == 0 {
		return model.Snapshot{}, ErrEmpty
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, err
	}
	snap.Normalize()
	return snap, nil
}
