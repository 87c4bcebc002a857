// Package sqlstate persists the snapshot into a single SQL table as JSON
// buckets, one row per top-level collection. SQLite and Postgres share the
// implementation and differ only in dialect.
package sqlstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jocilejr/whatsbot/internal/model"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

type Dialect struct {
	Name        string
	Driver      string
	CreateTable string
	Upsert      string
}

var SQLite = Dialect{
	Name:   "sqlite",
	Driver: "sqlite",
	CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
	Upsert: `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
}

var Postgres = Dialect{
	Name:   "postgres",
	Driver: "pgx",
	CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`,
	Upsert: `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`,
}

const (
	defaultSQLitePath  = "whatsbot.db"
	defaultPostgresDSN = "postgres://localhost/whatsbot?sslmode=disable"
)

const (
	bucketOwners        = "users"
	bucketConversations = "conversations"
	bucketCampaigns     = "campaigns"
)

var buckets = []string{bucketOwners, bucketConversations, bucketCampaigns}

var sqlOpen = sql.Open

// Store is a persist.Backend over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
	logger  *slog.Logger
}

// OpenSQLite opens (creating if needed) a SQLite database at path.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return Open(ctx, SQLite, path, logger)
}

// OpenPostgres connects to Postgres using dsn (falls back to a local default).
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	return Open(ctx, Postgres, dsn, logger)
}

func Open(ctx context.Context, dialect Dialect, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sqlOpen(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logger.With("component", "persist", "backend", dialect.Name),
	}, nil
}

func (s *Store) Name() string { return s.dialect.Name }

// DB exposes the underlying sql.DB for tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Load(ctx context.Context) model.Snapshot {
	snap, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("state unreadable, starting empty", "error", err)
		return model.EmptySnapshot()
	}
	return snap
}

func (s *Store) load(ctx context.Context) (model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := model.EmptySnapshot()
	targets := map[string]any{
		bucketOwners:        &snap.Owners,
		bucketConversations: &snap.Conversations,
		bucketCampaigns:     &snap.Campaigns,
	}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return model.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		if target, ok := targets[bucket]; ok {
			if err := json.Unmarshal(payload, target); err != nil {
				return model.Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	snap.Normalize()
	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap model.Snapshot) error {
	snap.Normalize()
	payloads := make(map[string][]byte, len(buckets))
	for _, bucket := range buckets {
		var data []byte
		var err error
		switch bucket {
		case bucketOwners:
			data, err = json.Marshal(snap.Owners)
		case bucketConversations:
			data, err = json.Marshal(snap.Conversations)
		case bucketCampaigns:
			data, err = json.Marshal(snap.Campaigns)
		}
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		payloads[bucket] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range buckets {
		if _, err := tx.ExecContext(ctx, s.dialect.Upsert, bucket, payloads[bucket]); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	prev := sqlOpen
	sqlOpen = fn
	return func() { sqlOpen = prev }
}
