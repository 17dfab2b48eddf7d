package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type retryRow struct {
	ctx     context.Context
	query   func() *sql.Row
	timeout time.Duration
	text    string
}

func (r retryRow) Scan(dest ...any) error {
	start := time.Now()
	for attempt := 0; ; attempt++ {
		err := r.query().Scan(dest...)
		if !shouldRetry(r.ctx, err, attempt, start, r.timeout) {
			slog.Debug("sql query row done", "query", r.text, "duration_ms", time.Since(start).Milliseconds(), "attempts", attempt+1, "err", err)
			return err
		}
		time.Sleep(retryDelay(attempt))
	}
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) rowScanner {
	query = s.d.rebind(query)
	slog.Debug("sql query row", "query", query, "args", args)
	return retryRow{
		ctx:     ctx,
		query:   func() *sql.Row { return s.db.QueryRowContext(ctx, query, args...) },
		timeout: s.lockTimeout,
		text:    query,
	}
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query = s.d.rebind(query)
	slog.Debug("sql query", "query", query, "args", args)
	start := time.Now()
	for attempt := 0; ; attempt++ {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if !shouldRetry(ctx, err, attempt, start, s.lockTimeout) {
			slog.Debug("sql query done", "duration_ms", time.Since(start).Milliseconds(), "attempts", attempt+1, "err", err)
			return rows, err
		}
		time.Sleep(retryDelay(attempt))
	}
}

// inTx runs fn in a transaction, retrying the whole transaction while
// SQLite reports the database as busy.
func (s *Store) inTx(ctx context.Context, name string, fn func(tx *txn) error) error {
	start := time.Now()
	for attempt := 0; ; attempt++ {
		err := s.runTx(ctx, name, fn)
		if !shouldRetry(ctx, err, attempt, start, s.lockTimeout) {
			return err
		}
		slog.Debug("sql tx busy", "op", name, "attempt", attempt+1, "err", err)
		time.Sleep(retryDelay(attempt))
	}
}

func (s *Store) runTx(ctx context.Context, name string, fn func(tx *txn) error) error {
	start := time.Now()
	slog.Debug("sql tx begin", "op", name)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&txn{tx: tx, d: s.d}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			slog.Warn("sql tx rollback failed", "op", name, "err", rbErr)
		}
		slog.Debug("sql tx rollback", "op", name, "duration_ms", time.Since(start).Milliseconds(), "err", err)
		return err
	}
	err = tx.Commit()
	slog.Debug("sql tx commit", "op", name, "duration_ms", time.Since(start).Milliseconds(), "err", err)
	return err
}

// txn applies the store dialect to statements run inside a transaction.
type txn struct {
	tx *sql.Tx
	d  dialect
}

func (t *txn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = t.d.rebind(query)
	slog.Debug("sql exec tx", "query", query, "args", args)
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *txn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	query = t.d.rebind(query)
	slog.Debug("sql query row tx", "query", query, "args", args)
	return t.tx.QueryRowContext(ctx, query, args...)
}

func shouldRetry(ctx context.Context, err error, attempt int, start time.Time, timeout time.Duration) bool {
	if err == nil || !isSQLiteBusy(err) {
		return false
	}
	if timeout <= 0 || ctx.Err() != nil {
		return false
	}
	return time.Since(start) < timeout && attempt < 20
}

func retryDelay(attempt int) time.Duration {
	delay := time.Duration(attempt+1) * 40 * time.Millisecond
	if delay > 300*time.Millisecond {
		delay = 300 * time.Millisecond
	}
	return delay
}
