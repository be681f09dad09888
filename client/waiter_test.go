package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dottapps/auth-gateway/client"
)

func TestAwaitSessionReturnsOncePropagated(t *testing.T) {
	var calls int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/session", r.URL.Path)
		if atomic.AddInt64(&calls, 1) < 3 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	waiter := client.NewWaiter(backend.Client(), backend.URL)

	start := time.Now()
	ok := waiter.AwaitSession(context.Background(), 3*time.Second)
	require.True(t, ok)
	require.GreaterOrEqual(t, atomic.LoadInt64(&calls), int64(3))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestAwaitSessionTimesOut(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	waiter := client.NewWaiter(backend.Client(), backend.URL)

	start := time.Now()
	ok := waiter.AwaitSession(context.Background(), 500*time.Millisecond)
	require.False(t, ok)
	// The wait is bounded, not open-ended.
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestAwaitSessionStopsOnContextCancel(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer backend.Close()

	waiter := client.NewWaiter(backend.Client(), backend.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	ok := waiter.AwaitSession(ctx, 10*time.Second)
	require.False(t, ok)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestAwaitSessionTreatsConnectionErrorAsNotYet(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // nothing listening anymore

	waiter := client.NewWaiter(http.DefaultClient, backend.URL)

	ok := waiter.AwaitSession(context.Background(), 300*time.Millisecond)
	require.False(t, ok)
}
