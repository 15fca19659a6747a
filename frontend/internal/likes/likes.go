// Package likes flips like state optimistically and settles it with the backend.
package likes

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/forumstartup/forum/frontend/internal/state"
	"github.com/forumstartup/forum/shared/logger"
	"github.com/forumstartup/forum/shared/metrics"
)

var (
	// ErrToggleInFlight rejects a toggle while the previous one on the
	// same entity has not been answered.
	ErrToggleInFlight = errors.New("like toggle already in progress")
	ErrUnknownTarget  = errors.New("entity is not loaded")
)

type Counts struct {
	Liked bool
	Count int
}

// flipped is c after the current user changed their mind.
func (c Counts) flipped() Counts {
	if c.Liked {
		return Counts{Liked: false, Count: max(c.Count-1, 0)}
	}
	return Counts{Liked: true, Count: c.Count + 1}
}

// Target binds a toggle to one entity held in view state.
type Target struct {
	// Current reads the held state; false when the entity is gone.
	Current func() (Counts, bool)
	Apply   func(Counts)
	// Like and Unlike may return the state the backend confirmed.
	Like   func(ctx context.Context) (*Counts, error)
	Unlike func(ctx context.Context) (*Counts, error)
	// Reconcile, when set, re-reads the entity after a toggle that the
	// backend did not confirm.
	Reconcile func(ctx context.Context) (Counts, error)
}

type Toggler[K comparable] struct {
	name  string
	delay time.Duration
	log   *slog.Logger

	guard state.KeyedGuard[K]

	mu          sync.Mutex
	generations map[K]uint64
	pending     sync.WaitGroup
}

// NewToggler returns a toggler that reconciles delay after each
// unconfirmed toggle. A zero delay disables reconciliation.
func NewToggler[K comparable](name string, delay time.Duration) *Toggler[K] {
	return &Toggler[K]{
		name:        name,
		delay:       delay,
		log:         logger.For(name),
		generations: make(map[K]uint64),
	}
}

// InFlight reports whether a toggle on id awaits the backend.
func (t *Toggler[K]) InFlight(id K) bool {
	return t.guard.Held(id)
}

// Toggle flips the like state of id at once and sends the change. On
// failure the previous state is restored and the error returned.
func (t *Toggler[K]) Toggle(ctx context.Context, id K, target Target) error {
	if !t.guard.TryAcquire(id) {
		return ErrToggleInFlight
	}
	defer t.guard.Release(id)

	before, ok := target.Current()
	if !ok {
		return ErrUnknownTarget
	}
	gen := t.bump(id)
	target.Apply(before.flipped())

	send := target.Like
	action := t.name + "_like"
	if before.Liked {
		send = target.Unlike
		action = t.name + "_unlike"
	}

	confirmed, err := send(ctx)
	if err != nil {
		target.Apply(before)
		metrics.ObserveAction(action, metrics.OutcomeFailed)
		t.log.Warn("like toggle reverted", "id", id, "error", err)
		return err
	}
	metrics.ObserveAction(action, metrics.OutcomeOK)

	if confirmed != nil {
		target.Apply(*confirmed)
		return nil
	}
	if target.Reconcile != nil && t.delay > 0 {
		t.scheduleReconcile(ctx, id, gen, target)
	}
	return nil
}

func (t *Toggler[K]) bump(id K) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.generations[id]++
	return t.generations[id]
}

func (t *Toggler[K]) current(id K) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generations[id]
}

// scheduleReconcile overwrites the optimistic state with the backend's
// after the delay, unless the user toggled again in the meantime.
func (t *Toggler[K]) scheduleReconcile(ctx context.Context, id K, gen uint64, target Target) {
	ctx = context.WithoutCancel(ctx)
	t.pending.Add(1)
	time.AfterFunc(t.delay, func() {
		defer t.pending.Done()
		if t.current(id) != gen || t.guard.Held(id) {
			return
		}
		counts, err := target.Reconcile(ctx)
		if err != nil {
			t.log.Debug("like reconcile failed", "id", id, "error", err)
			return
		}
		// Holding the guard keeps a new toggle from starting between the
		// generation check and the write.
		if !t.guard.TryAcquire(id) {
			return
		}
		defer t.guard.Release(id)
		if t.current(id) != gen {
			return
		}
		target.Apply(counts)
	})
}

// Wait blocks until every scheduled reconciliation has run.
func (t *Toggler[K]) Wait() {
	t.pending.Wait()
}
