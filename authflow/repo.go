package authflow

import "context"

// Repo persists issued transactions keyed by their state value so the
// callback can enforce single use: a state is consumed exactly once and
// a second presentation fails.
type Repo interface {
	Upsert(ctx context.Context, txn *Transaction) error
	// Consume atomically fetches and removes the transaction for a
	// state value. Returns errors.ErrFlowStateMissing when the state
	// was never issued, expired, or was already consumed.
	Consume(ctx context.Context, state string) (*Transaction, error)
}
