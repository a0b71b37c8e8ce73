package ports

import (
	"context"

	"github.com/alejandrodnm/botsim/internal/domain"
)

// Notifier reports finished runs to the user.
type Notifier interface {
	Notify(ctx context.Context, result domain.RunResult) error
}
