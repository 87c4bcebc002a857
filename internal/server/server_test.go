package server

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jocilejr/whatsbot/internal/config"
	"github.com/jocilejr/whatsbot/internal/persist"
)

func TestNewHTTPServer(t *testing.T) {
	cfg := config.Config{Port: 4321, MasterSecret: "x"}
	srv := NewHTTPServer(cfg, http.NewServeMux())
	if srv.Addr != ":4321" {
		t.Fatalf("expected :4321, got %q", srv.Addr)
	}
	if srv.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("unexpected ReadHeaderTimeout")
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Run(ctx, config.Config{Port: port}, http.NewServeMux(), nil) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, err := OpenBackend(ctx, config.Storage{Driver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.Equal(t, "memory", b.Name())

	b, err = OpenBackend(ctx, config.Storage{Driver: config.DriverFile, DataFile: filepath.Join(t.TempDir(), "db.json")}, nil)
	require.NoError(t, err)
	assert.IsType(t, &persist.FileBackend{}, b)

	b, err = OpenBackend(ctx, config.Storage{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "db.sqlite")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", b.Name())
	require.NoError(t, b.Close())

	_, err = OpenBackend(ctx, config.Storage{Driver: "mongo"}, nil)
	require.Error(t, err)
	_, err = OpenBackend(ctx, config.Storage{Driver: config.DriverS3}, nil)
	require.Error(t, err)
	_, err = OpenBackend(ctx, config.Storage{Driver: config.DriverRedis}, nil)
	require.Error(t, err)
}
