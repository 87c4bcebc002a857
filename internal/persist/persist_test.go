package persist

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jocilejr/whatsbot/internal/model"
)

func sampleSnapshot() model.Snapshot {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	addr := "+5511999990000"
	snap := model.EmptySnapshot()
	snap.Owners = append(snap.Owners, model.Owner{
		ID:        "o1",
		Name:      "Ana",
		Login:     "ana",
		Secret:    "hash",
		CreatedAt: created,
		Devices: []model.Device{{
			ID:         "d1",
			Name:       "Main",
			Address:    "+55",
			Status:     model.DeviceActive,
			CreatedAt:  created,
			LastAccess: &created,
			Metrics:    model.DefaultDeviceMetrics(),
		}},
	})
	snap.Conversations["o1"] = []model.Conversation{{
		ID:        "c1",
		OwnerID:   "o1",
		DeviceID:  "d1",
		Name:      "Chat",
		Address:   &addr,
		Unread:    2,
		Messages:  []model.Message{{From: "me", Text: "hi", SentAt: created, Status: "sent"}},
		UpdatedAt: created,
	}}
	snap.Campaigns["o1"] = []model.Campaign{{
		ID:           "k1",
		OwnerID:      "o1",
		DeviceID:     "d1",
		Name:         "Promo",
		Message:      "hello",
		Status:       model.CampaignActive,
		TargetGroups: []string{"g1"},
		CreatedAt:    created,
	}}
	return snap
}

func TestEncodeUsesDocumentFieldNames(t *testing.T) {
	data, err := Encode(sampleSnapshot())
	require.NoError(t, err)
	for _, field := range []string{`"users"`, `"instances"`, `"username"`, `"from_user"`, `"instance_id"`, `"target_groups"`, `"last_access"`} {
		assert.Contains(t, string(data), field)
	}

	snap, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot(), snap)
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode(nil)
	require.ErrorIs(t, err, ErrEmpty)

	snap, err := Decode([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, model.EmptySnapshot(), snap)
}

func TestFileBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "database.json")
	b := NewFileBackend(path, nil)

	require.NoError(t, b.Save(ctx, sampleSnapshot()))

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected state file written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected state file mode 0600, got %o", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")

	assert.Equal(t, sampleSnapshot(), NewFileBackend(path, nil).Load(ctx))
}

func TestFileBackend_MissingFileIsEmpty(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Equal(t, model.EmptySnapshot(), b.Load(context.Background()))
}

func TestFileBackend_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	b := NewFileBackend(path, logger)

	assert.Equal(t, model.EmptySnapshot(), b.Load(context.Background()))
	assert.True(t, strings.Contains(logs.String(), "state file corrupt"), logs.String())
}

func TestFileBackend_SaveFailsOnUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	b := NewFileBackend(filepath.Join(blocker, "database.json"), nil)
	require.Error(t, b.Save(context.Background(), sampleSnapshot()))
}

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	assert.Equal(t, model.EmptySnapshot(), b.Load(ctx))

	require.NoError(t, b.Save(ctx, sampleSnapshot()))
	assert.Equal(t, 1, b.Saves())
	assert.Equal(t, sampleSnapshot(), b.Load(ctx))
	assert.NoError(t, b.Close())
}
