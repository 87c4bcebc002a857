package persist

import (
	"context"
	"sync"

	"github.com/jocilejr/whatsbot/internal/model"
)

// MemoryBackend holds the last saved document in memory. It goes through the
// same codec as the durable backends so round-trip behaviour matches.
type MemoryBackend struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Load(_ context.Context) model.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap, err := Decode(b.data)
	if err != nil {
		return model.EmptySnapshot()
	}
	return snap
}

func (b *MemoryBackend) Save(_ context.Context, snap model.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = data
	b.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

func (b *MemoryBackend) Close() error { return nil }
