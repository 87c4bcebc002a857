package redisstate

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jocilejr/whatsbot/internal/model"
)

func TestRedis_RequiresAddr(t *testing.T) {
	_, err := New(context.Background(), Config{}, nil)
	require.Error(t, err)
}

func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	key := "whatsbot:test:" + time.Now().Format("150405.000000")

	s, err := New(ctx, Config{Addr: addr, Key: key}, nil)
	require.NoError(t, err)
	defer func() {
		_ = s.rdb.Del(ctx, key).Err()
		_ = s.Close()
	}()
	assert.Equal(t, "redis", s.Name())
	assert.Equal(t, model.EmptySnapshot(), s.Load(ctx))

	snap := model.EmptySnapshot()
	snap.Owners = append(snap.Owners, model.Owner{ID: "o1", Login: "ana", Devices: []model.Device{}})
	require.NoError(t, s.Save(ctx, snap))
	assert.Equal(t, snap, s.Load(ctx))

	require.NoError(t, s.rdb.Set(ctx, key, "garbage", 0).Err())
	assert.Equal(t, model.EmptySnapshot(), s.Load(ctx))
}

func TestRedis_UnreachableAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, Config{Addr: "127.0.0.1:1"}, nil)
	require.Error(t, err)
}
