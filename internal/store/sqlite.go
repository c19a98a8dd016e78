package store

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"blockvault/internal/domain"
)

// Store is the SQLite-backed implementation of every metadata store
// interface in the domain package.
type Store struct {
	db *bun.DB
}

// Open connects to the SQLite database at dsn and creates missing tables.
// Use "file::memory:?cache=shared" for an in-memory database in tests.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// modernc sqlite mishandles concurrent writers on one file; a single
	// connection serializes access.
	sqldb.SetMaxOpenConns(1)

	s := &Store{db: bun.NewDB(sqldb, sqlitedialect.New())}
	if err := s.init(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	models := []any{
		(*userRow)(nil),
		(*nonceRow)(nil),
		(*fileRow)(nil),
		(*shareRow)(nil),
		(*documentRow)(nil),
		(*auditRow)(nil),
	}
	for _, m := range models {
		if _, err := s.db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	stmts := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_shares_triple ON shares (file_id, owner, recipient)",
		"CREATE INDEX IF NOT EXISTS idx_files_owner_created ON files (owner, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_shares_recipient ON shares (recipient)",
		"CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents (owner)",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks database liveness for the health endpoint.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Compile-time assertions that Store satisfies the domain interfaces.
var (
	_ domain.UserStore     = (*Store)(nil)
	_ domain.NonceStore    = (*Store)(nil)
	_ domain.FileStore     = (*Store)(nil)
	_ domain.ShareStore    = (*Store)(nil)
	_ domain.DocumentStore = (*Store)(nil)
	_ domain.AuditStore    = (*Store)(nil)
)
