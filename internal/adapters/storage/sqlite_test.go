package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/botsim/internal/domain"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() domain.RunResult {
	start := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return domain.RunResult{
		RunID:       "dip-run",
		Strategy:    "dip-buyer",
		Symbols:     []string{"AAPL", "MSFT"},
		StartedAt:   start,
		FinishedAt:  start.Add(time.Hour),
		InitialCash: 10000,
		FinalEquity: 10500,
		Ticks:       240,
		Fills: []domain.Fill{
			{OrderID: "o1", Symbol: "AAPL", Side: domain.SideBuy, Quantity: 1, Price: 100, Fee: 0.1, Timestamp: start},
			{OrderID: "o2", Symbol: "AAPL", Side: domain.SideSell, Quantity: 1, Price: 105, Fee: 0.1, Timestamp: start.Add(time.Minute)},
		},
		EquityCurve: []domain.EquityPoint{
			{Timestamp: start, Equity: 10000},
			{Timestamp: start.Add(time.Minute), Equity: 10500},
		},
	}
}

func TestSQLiteStore_SaveAndGetRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, sampleResult()))

	runs, err := s.GetRuns(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, runs, 1)

	r := runs[0]
	assert.Equal(t, "dip-run", r.RunID)
	assert.Equal(t, "dip-buyer", r.Strategy)
	assert.Equal(t, []string{"AAPL", "MSFT"}, r.Symbols)
	assert.Equal(t, 10000.0, r.InitialCash)
	assert.Equal(t, 10500.0, r.FinalEquity)
	assert.Equal(t, int64(240), r.Ticks)
}

func TestSQLiteStore_GetRunsWindowExcludes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleResult()))

	runs, err := s.GetRuns(ctx, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSQLiteStore_MultipleRunsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := sampleResult()
	first.RunID = "first"
	require.NoError(t, s.SaveRun(ctx, first))

	time.Sleep(10 * time.Millisecond) // distinct recorded_at

	second := sampleResult()
	second.RunID = "second"
	require.NoError(t, s.SaveRun(ctx, second))

	runs, err := s.GetRuns(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[0].RunID)
	assert.Equal(t, "first", runs[1].RunID)
}

func TestSQLiteStore_FillsAndEquityPersisted(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleResult()))

	var fills, equity int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fills`).Scan(&fills))
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM equity`).Scan(&equity))
	assert.Equal(t, 2, fills)
	assert.Equal(t, 2, equity)
}

func TestSQLiteStore_EmptyRunSaves(t *testing.T) {
	s := testStore(t)
	r := sampleResult()
	r.Fills = nil
	r.EquityCurve = nil
	r.Symbols = nil

	require.NoError(t, s.SaveRun(context.Background(), r))

	runs, err := s.GetRuns(context.Background(), time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Empty(t, runs[0].Symbols)
}
