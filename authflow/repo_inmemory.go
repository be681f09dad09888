package authflow

import (
	"context"
	"sync"
	"time"

	"github.com/dottapps/auth-gateway/internal/errors"
)

// InMemoryRepo is a thread-safe in-memory implementation of Repo,
// suitable for single-instance deployments and tests.
type InMemoryRepo struct {
	mu    sync.Mutex
	ttl   time.Duration
	txns  map[string]*Transaction
	nowFn func() time.Time
}

// NewInMemoryRepo creates a new in-memory transaction repository.
func NewInMemoryRepo(ttl time.Duration) *InMemoryRepo {
	return &InMemoryRepo{
		ttl:   ttl,
		txns:  make(map[string]*Transaction),
		nowFn: time.Now,
	}
}

// Upsert stores a transaction under its state value.
func (r *InMemoryRepo) Upsert(_ context.Context, txn *Transaction) error {
	if txn == nil || txn.State == "" {
		return errors.Wrapf(errors.ErrInternal, "[InMemoryRepo Upsert] empty transaction")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *txn
	r.txns[txn.State] = &cp
	return nil
}

// Consume removes and returns the transaction for a state value.
func (r *InMemoryRepo) Consume(_ context.Context, state string) (*Transaction, error) {
	if state == "" {
		return nil, errors.ErrFlowStateMissing
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.txns[state]
	if !ok {
		return nil, errors.ErrFlowStateMissing
	}
	delete(r.txns, state)

	if r.nowFn().Sub(txn.CreatedAt) > r.ttl {
		return nil, errors.ErrFlowStateMissing
	}

	cp := *txn
	return &cp, nil
}
