package postgres

import "context"

// IClient is the transactional boundary consumed by services. *DB is
// the production implementation; tests substitute a client that runs
// the function without a database.
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

var _ IClient = (*DB)(nil)
