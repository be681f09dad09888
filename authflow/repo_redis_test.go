package authflow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dottapps/auth-gateway/internal/errors"
)

func newRedisTestRepo(t *testing.T) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisRepo(client, 10*time.Minute), mr
}

func TestRedisRepoConsumeIsSingleUse(t *testing.T) {
	repo, _ := newRedisTestRepo(t)
	txn, err := NewTransaction("/banking", "web")
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(context.Background(), txn))

	got, err := repo.Consume(context.Background(), txn.State)
	require.NoError(t, err)
	require.Equal(t, txn.CodeVerifier, got.CodeVerifier)

	_, err = repo.Consume(context.Background(), txn.State)
	require.ErrorIs(t, err, errors.ErrFlowStateMissing)
}

func TestRedisRepoConsumeExpired(t *testing.T) {
	repo, mr := newRedisTestRepo(t)
	txn, err := NewTransaction("", "")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(context.Background(), txn))

	mr.FastForward(11 * time.Minute)

	_, err = repo.Consume(context.Background(), txn.State)
	require.ErrorIs(t, err, errors.ErrFlowStateMissing)
}
