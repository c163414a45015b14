package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope.
	// Returning an error from fn rolls back every write made through ctx.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
