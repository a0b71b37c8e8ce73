package ports

import (
	"context"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// BarSource supplies the finite, ordered bar sequences a run consumes. Bars
// are fully materialized before the run starts; the kernel performs no I/O
// while ticking.
type BarSource interface {
	// Symbols lists the symbols this source can serve.
	Symbols() []string

	// Bars returns the ordered bar sequence for one symbol.
	Bars(ctx context.Context, symbol string) ([]domain.Bar, error)
}
