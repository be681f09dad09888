package client

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultMissThreshold = 3

// BeatFunc performs one heartbeat against the gateway. A nil error
// means the session is still alive.
type BeatFunc func(ctx context.Context) error

// Keeper sends periodic heartbeats while the page is visible and the
// network is online. Ticks never overlap: a new tick is skipped while
// the previous call is in flight. A consecutive-miss counter fires
// OnMissedHeartbeat exactly once when it first reaches the threshold;
// any success resets it.
type Keeper struct {
	beat          BeatFunc
	interval      time.Duration
	missThreshold int
	onMissed      func()

	mu          sync.Mutex
	running     bool
	inFlight    bool
	visible     bool
	online      bool
	lastBeat    time.Time
	misses      int
	missedFired bool

	runCtx context.Context
	cancel context.CancelFunc
	stopCh chan struct{}
}

// KeeperOption customizes a Keeper.
type KeeperOption func(*Keeper)

// WithMissThreshold overrides the consecutive-miss threshold.
func WithMissThreshold(n int) KeeperOption {
	return func(k *Keeper) {
		if n > 0 {
			k.missThreshold = n
		}
	}
}

// WithOnMissedHeartbeat registers the callback fired when the miss
// counter first reaches the threshold.
func WithOnMissedHeartbeat(fn func()) KeeperOption {
	return func(k *Keeper) { k.onMissed = fn }
}

// NewKeeper creates a heartbeat keeper. It starts suspended; call
// Start to begin ticking.
func NewKeeper(beat BeatFunc, interval time.Duration, opts ...KeeperOption) *Keeper {
	k := &Keeper{
		beat:          beat,
		interval:      interval,
		missThreshold: defaultMissThreshold,
		visible:       true,
		online:        true,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Start begins the tick loop. Calling Start on a running keeper is a
// no-op.
func (k *Keeper) Start() {
	k.mu.Lock()
	if k.running {
		k.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	k.running = true
	k.runCtx = ctx
	k.cancel = cancel
	k.stopCh = make(chan struct{})
	stopCh := k.stopCh
	k.mu.Unlock()

	go func() {
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				k.tryBeat(ctx)
			case <-stopCh:
				return
			}
		}
	}()
}

// Stop halts ticking and cancels any in-flight heartbeat. It is safe
// to call at any time, repeatedly, including mid-flight.
func (k *Keeper) Stop() {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return
	}
	k.running = false
	cancel := k.cancel
	stopCh := k.stopCh
	k.mu.Unlock()

	cancel()
	close(stopCh)
}

// SetVisible records a page visibility transition. Becoming visible
// fires one immediate catch-up beat when the interval has lapsed.
func (k *Keeper) SetVisible(visible bool) {
	k.resume(func() bool {
		if k.visible == visible {
			return false
		}
		k.visible = visible
		return visible
	})
}

// SetOnline records a network transition. Repeated online events in
// quick succession trigger at most one extra heartbeat.
func (k *Keeper) SetOnline(online bool) {
	k.resume(func() bool {
		if k.online == online {
			return false
		}
		k.online = online
		return online
	})
}

// resume applies a state transition and, when it re-enables ticking,
// fires a catch-up beat if the last one is older than the interval.
func (k *Keeper) resume(apply func() bool) {
	k.mu.Lock()
	resumed := apply()
	catchUp := resumed && k.running && k.visible && k.online &&
		time.Since(k.lastBeat) >= k.interval
	ctx := k.runCtx
	k.mu.Unlock()

	if catchUp {
		k.tryBeat(ctx)
	}
}

// tryBeat runs one heartbeat unless suspended or one is already in
// flight.
func (k *Keeper) tryBeat(ctx context.Context) {
	k.mu.Lock()
	if !k.running || !k.visible || !k.online || k.inFlight {
		k.mu.Unlock()
		return
	}
	k.inFlight = true
	k.lastBeat = time.Now()
	k.mu.Unlock()

	err := k.beat(ctx)

	var fire func()
	k.mu.Lock()
	k.inFlight = false
	if err != nil {
		k.misses++
		log.Debug().Err(err).Int("consecutive_misses", k.misses).Msg("heartbeat missed")
		if k.misses == k.missThreshold && !k.missedFired {
			k.missedFired = true
			fire = k.onMissed
		}
	} else {
		k.misses = 0
		k.missedFired = false
	}
	k.mu.Unlock()

	if fire != nil {
		fire()
	}
}
