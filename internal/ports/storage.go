package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// RunStore persists finished run results. Storage is write-side only during
// a run; the kernel never reads it back while ticking.
type RunStore interface {
	// SaveRun persists the fills, equity curve and summary of one run.
	SaveRun(ctx context.Context, result domain.RunResult) error

	// GetRuns returns run summaries recorded in the given time range,
	// newest first. Fills and equity curves are not rehydrated.
	GetRuns(ctx context.Context, from, to time.Time) ([]domain.RunResult, error)

	// Close releases the underlying database cleanly.
	Close() error
}
