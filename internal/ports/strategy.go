package ports

import (
	"context"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// Strategy is the single capability a trading decision component must
// implement: given a market/portfolio snapshot, produce zero or more order
// requests. Concrete strategies are injected into the runner; the kernel
// never knows what they trade.
type Strategy interface {
	// Name identifies the strategy in logs and persisted run results.
	Name() string

	// Decide is invoked once per tick with everything the strategy is
	// allowed to see. Returned requests are submitted in order.
	Decide(ctx context.Context, snap domain.Snapshot) ([]domain.OrderRequest, error)
}

// RiskValidator is an optional pass-through in front of the book: requests
// it rejects never reach submission. A nil validator admits everything.
type RiskValidator interface {
	Validate(ctx context.Context, snap domain.Snapshot, req domain.OrderRequest) error
}
