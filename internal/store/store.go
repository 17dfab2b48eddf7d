package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Options struct {
	// DSN is either a postgres:// URL or a SQLite file path.
	DSN         string
	BusyTimeout time.Duration
	// LockTimeout bounds how long busy SQLite statements are retried.
	LockTimeout time.Duration
	SkipMigrate bool
}

type Store struct {
	db          *sql.DB
	d           dialect
	lockTimeout time.Duration
}

func Open(ctx context.Context, opts Options) (*Store, error) {
	d, dsn, err := resolveDSN(opts.DSN, opts.BusyTimeout)
	if err != nil {
		return nil, err
	}
	if !opts.SkipMigrate {
		if err := MigrateUp(opts); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	slog.Debug("store open", "dialect", d.name)
	return &Store{db: db, d: d, lockTimeout: opts.LockTimeout}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Dialect() string {
	return s.d.name
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
