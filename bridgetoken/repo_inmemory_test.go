package bridgetoken

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dottapps/auth-gateway/internal/errors"
)

func newToken(value string) *Token {
	return &Token{
		Value:     value,
		SessionID: "sess-1",
		UserID:    "user-1",
		TenantID:  "tenant-1",
		IssuedAt:  time.Now(),
	}
}

func TestInMemoryRedeemFirstUse(t *testing.T) {
	repo := NewInMemoryRepo(5 * time.Minute)
	require.NoError(t, repo.Issue(context.Background(), newToken("t1")))

	tok, replayed, err := repo.Redeem(context.Background(), "t1")
	require.NoError(t, err)
	require.False(t, replayed)
	require.Equal(t, "sess-1", tok.SessionID)
}

func TestInMemoryRedeemIsIdempotentWithinWindow(t *testing.T) {
	repo := NewInMemoryRepo(5 * time.Minute)
	require.NoError(t, repo.Issue(context.Background(), newToken("t1")))

	first, _, err := repo.Redeem(context.Background(), "t1")
	require.NoError(t, err)

	second, replayed, err := repo.Redeem(context.Background(), "t1")
	require.NoError(t, err)
	require.True(t, replayed)
	require.Equal(t, first.SessionID, second.SessionID)
}

func TestInMemoryRedeemExpired(t *testing.T) {
	repo := NewInMemoryRepo(5 * time.Minute)
	require.NoError(t, repo.Issue(context.Background(), newToken("t1")))

	repo.nowFn = func() time.Time { return time.Now().Add(6 * time.Minute) }

	_, _, err := repo.Redeem(context.Background(), "t1")
	require.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestInMemoryRedeemReplayAfterWindow(t *testing.T) {
	repo := NewInMemoryRepo(5 * time.Minute)
	require.NoError(t, repo.Issue(context.Background(), newToken("t1")))

	_, _, err := repo.Redeem(context.Background(), "t1")
	require.NoError(t, err)

	repo.nowFn = func() time.Time { return time.Now().Add(6 * time.Minute) }

	_, _, err = repo.Redeem(context.Background(), "t1")
	require.ErrorIs(t, err, errors.ErrTokenReplayed)
}

func TestInMemoryRedeemUnknown(t *testing.T) {
	repo := NewInMemoryRepo(5 * time.Minute)

	_, _, err := repo.Redeem(context.Background(), "never-issued")
	require.ErrorIs(t, err, errors.ErrTokenNotFound)
}

func TestInMemoryRedeemSerializesConcurrentDuplicates(t *testing.T) {
	repo := NewInMemoryRepo(5 * time.Minute)
	require.NoError(t, repo.Issue(context.Background(), newToken("t1")))

	const goroutines = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	firstUses := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, replayed, err := repo.Redeem(context.Background(), "t1")
			require.NoError(t, err)
			if !replayed {
				mu.Lock()
				firstUses++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, firstUses)
}
