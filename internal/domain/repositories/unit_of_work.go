package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// Savepoint runs fn inside the transaction carried by ctx and rolls back
	// only fn's writes when it fails. Without a transaction it behaves like Do.
	Savepoint(ctx context.Context, fn func(ctx context.Context) error) error
	// Snapshot runs read-only fn against one consistent view of the data
	Snapshot(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock marks ctx so reads through it take row locks
	WithLock(ctx context.Context) context.Context
}
