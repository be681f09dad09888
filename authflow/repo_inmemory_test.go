package authflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dottapps/auth-gateway/internal/errors"
)

func TestInMemoryRepoConsumeIsSingleUse(t *testing.T) {
	repo := NewInMemoryRepo(10 * time.Minute)
	txn, err := NewTransaction("/home", "web")
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(context.Background(), txn))

	got, err := repo.Consume(context.Background(), txn.State)
	require.NoError(t, err)
	require.Equal(t, txn.CodeVerifier, got.CodeVerifier)
	require.Equal(t, txn.ReturnURL, got.ReturnURL)

	_, err = repo.Consume(context.Background(), txn.State)
	require.ErrorIs(t, err, errors.ErrFlowStateMissing)
}

func TestInMemoryRepoConsumeUnknownState(t *testing.T) {
	repo := NewInMemoryRepo(10 * time.Minute)

	_, err := repo.Consume(context.Background(), "never-issued")
	require.ErrorIs(t, err, errors.ErrFlowStateMissing)

	_, err = repo.Consume(context.Background(), "")
	require.ErrorIs(t, err, errors.ErrFlowStateMissing)
}

func TestInMemoryRepoConsumeExpired(t *testing.T) {
	repo := NewInMemoryRepo(10 * time.Minute)
	txn, err := NewTransaction("", "")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), txn))

	repo.nowFn = func() time.Time { return time.Now().Add(11 * time.Minute) }

	_, err = repo.Consume(context.Background(), txn.State)
	require.ErrorIs(t, err, errors.ErrFlowStateMissing)
}
