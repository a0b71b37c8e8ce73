package storage

// sqlite.go — run-result persistence.
//
// Layout:
//   - `runs`: one summary row per run (strategy, symbols, return, counts).
//   - `fills`: the ordered fill log of each run.
//   - `equity`: the equity curve of each run, one row per sample.
//   - Prune on startup: runs (and their fills/equity) older than 90 days.
//
// The kernel never reads any of this during a run; it is the durable output
// consumers compare across parameter sweeps.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/botsim/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    run_name      TEXT NOT NULL,
    strategy      TEXT NOT NULL,
    symbols       TEXT NOT NULL,
    started_at    DATETIME NOT NULL,
    finished_at   DATETIME NOT NULL,
    recorded_at   DATETIME NOT NULL,
    initial_cash  REAL NOT NULL,
    final_equity  REAL NOT NULL,
    return_pct    REAL NOT NULL,
    ticks         INTEGER NOT NULL DEFAULT 0,
    fills         INTEGER NOT NULL DEFAULT 0,
    orders        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS fills (
    run_id    TEXT NOT NULL REFERENCES runs(id),
    seq       INTEGER NOT NULL,
    order_id  TEXT NOT NULL,
    symbol    TEXT NOT NULL,
    side      TEXT NOT NULL,
    quantity  REAL NOT NULL,
    price     REAL NOT NULL,
    fee       REAL NOT NULL,
    ts        DATETIME NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
    run_id  TEXT NOT NULL REFERENCES runs(id),
    seq     INTEGER NOT NULL,
    ts      DATETIME NOT NULL,
    equity  REAL NOT NULL,
    PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_recorded ON runs(recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_fills_run     ON fills(run_id, seq);
CREATE INDEX IF NOT EXISTS idx_equity_run    ON equity(run_id, seq);
`

const retentionRuns = 90 * 24 * time.Hour

// SQLiteStore implements ports.RunStore using SQLite (pure Go, no CGo).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at the given path, applies
// the schema, and prunes old runs.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStore: apply schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persists one run: summary row plus full fill log and equity curve
// in a single transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, result domain.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.New().String()
	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
			(id, run_name, strategy, symbols, started_at, finished_at,
			 recorded_at, initial_cash, final_equity, return_pct, ticks, fills, orders)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, result.RunID, result.Strategy, strings.Join(result.Symbols, ","),
		result.StartedAt, result.FinishedAt, now,
		result.InitialCash, result.FinalEquity, result.TotalReturn(),
		result.Ticks, len(result.Fills), len(result.Orders),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	fillStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fills (run_id, seq, order_id, symbol, side, quantity, price, fee, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare fills: %w", err)
	}
	defer fillStmt.Close()

	for i, f := range result.Fills {
		if _, err := fillStmt.ExecContext(ctx,
			id, i, f.OrderID, f.Symbol, string(f.Side), f.Quantity, f.Price, f.Fee, f.Timestamp,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: insert fill %d: %w", i, err)
		}
	}

	eqStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO equity (run_id, seq, ts, equity) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare equity: %w", err)
	}
	defer eqStmt.Close()

	for i, p := range result.EquityCurve {
		if _, err := eqStmt.ExecContext(ctx, id, i, p.Timestamp, p.Equity); err != nil {
			return fmt.Errorf("storage.SaveRun: insert equity %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// GetRuns returns run summaries recorded in [from, to], newest first. Fill
// logs and equity curves are not rehydrated.
func (s *SQLiteStore) GetRuns(ctx context.Context, from, to time.Time) ([]domain.RunResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_name, strategy, symbols, started_at, finished_at,
		       initial_cash, final_equity, ticks
		FROM runs
		WHERE recorded_at BETWEEN ? AND ?
		ORDER BY recorded_at DESC`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("storage.GetRuns: query: %w", err)
	}
	defer rows.Close()

	var out []domain.RunResult
	for rows.Next() {
		var r domain.RunResult
		var symbols string
		if err := rows.Scan(
			&r.RunID, &r.Strategy, &symbols, &r.StartedAt, &r.FinishedAt,
			&r.InitialCash, &r.FinalEquity, &r.Ticks,
		); err != nil {
			return nil, fmt.Errorf("storage.GetRuns: scan: %w", err)
		}
		if symbols != "" {
			r.Symbols = strings.Split(symbols, ",")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// pruneOld deletes runs past retention along with their fills and equity.
func (s *SQLiteStore) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	s.db.ExecContext(ctx, `DELETE FROM fills  WHERE run_id IN (SELECT id FROM runs WHERE recorded_at < ?)`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM equity WHERE run_id IN (SELECT id FROM runs WHERE recorded_at < ?)`, cutoff)
	s.db.ExecContext(ctx, `DELETE FROM runs   WHERE recorded_at < ?`, cutoff)
}
