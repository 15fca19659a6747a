package likes

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entity is a liked thing held in memory.
type entity struct {
	mu     sync.Mutex
	counts Counts
}

func (e *entity) target(like, unlike func(context.Context) (*Counts, error)) Target {
	return Target{
		Current: func() (Counts, bool) {
			e.mu.Lock()
			defer e.mu.Unlock()
			return e.counts, true
		},
		Apply: func(c Counts) {
			e.mu.Lock()
			e.counts = c
			e.mu.Unlock()
		},
		Like:   like,
		Unlike: unlike,
	}
}

func (e *entity) get() Counts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counts
}

func succeed(context.Context) (*Counts, error) { return nil, nil }

func TestToggle(t *testing.T) {
	boom := stderrors.New("boom")
	fail := func(context.Context) (*Counts, error) { return nil, boom }

	tests := []struct {
		name     string
		start    Counts
		like     func(context.Context) (*Counts, error)
		unlike   func(context.Context) (*Counts, error)
		expected Counts
		wantErr  error
	}{
		{
			name:     "like",
			start:    Counts{Liked: false, Count: 3},
			like:     succeed,
			expected: Counts{Liked: true, Count: 4},
		},
		{
			name:     "unlike",
			start:    Counts{Liked: true, Count: 4},
			unlike:   succeed,
			expected: Counts{Liked: false, Count: 3},
		},
		{
			name:     "failed like is reverted",
			start:    Counts{Liked: false, Count: 3},
			like:     fail,
			expected: Counts{Liked: false, Count: 3},
			wantErr:  boom,
		},
		{
			name:     "failed unlike is reverted",
			start:    Counts{Liked: true, Count: 1},
			unlike:   fail,
			expected: Counts{Liked: true, Count: 1},
			wantErr:  boom,
		},
		{
			name:  "backend confirmation wins",
			start: Counts{Liked: false, Count: 3},
			like: func(context.Context) (*Counts, error) {
				return &Counts{Liked: true, Count: 10}, nil
			},
			expected: Counts{Liked: true, Count: 10},
		},
		{
			name:     "count never goes negative",
			start:    Counts{Liked: true, Count: 0},
			unlike:   succeed,
			expected: Counts{Liked: false, Count: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &entity{counts: tt.start}
			toggler := NewToggler[int64]("post", 0)

			err := toggler.Toggle(context.Background(), 1, e.target(tt.like, tt.unlike))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.expected, e.get())
			assert.False(t, toggler.InFlight(1))
		})
	}
}

func TestToggleWhileInFlight(t *testing.T) {
	e := &entity{counts: Counts{Count: 0}}
	toggler := NewToggler[int64]("post", 0)

	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(context.Context) (*Counts, error) {
		close(started)
		<-release
		return nil, nil
	}

	done := make(chan error)
	go func() { done <- toggler.Toggle(context.Background(), 1, e.target(slow, succeed)) }()
	<-started

	err := toggler.Toggle(context.Background(), 1, e.target(succeed, succeed))
	assert.ErrorIs(t, err, ErrToggleInFlight)
	assert.Equal(t, Counts{Liked: true, Count: 1}, e.get(), "second toggle left state alone")

	other := &entity{}
	assert.NoError(t, toggler.Toggle(context.Background(), 2, other.target(succeed, succeed)), "other ids are independent")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Counts{Liked: true, Count: 1}, e.get())
}

func TestReconcile(t *testing.T) {
	e := &entity{counts: Counts{Count: 3}}
	toggler := NewToggler[int64]("post", 10*time.Millisecond)

	target := e.target(succeed, succeed)
	target.Reconcile = func(context.Context) (Counts, error) {
		return Counts{Liked: true, Count: 7}, nil
	}

	require.NoError(t, toggler.Toggle(context.Background(), 1, target))
	assert.Equal(t, Counts{Liked: true, Count: 4}, e.get())

	toggler.Wait()
	assert.Equal(t, Counts{Liked: true, Count: 7}, e.get())
}

func TestReconcileSkippedAfterNewerToggle(t *testing.T) {
	e := &entity{counts: Counts{Count: 3}}
	toggler := NewToggler[int64]("post", 20*time.Millisecond)

	calls := 0
	target := e.target(succeed, succeed)
	target.Reconcile = func(context.Context) (Counts, error) {
		calls++
		return Counts{Liked: true, Count: 99}, nil
	}

	require.NoError(t, toggler.Toggle(context.Background(), 1, target))
	noReconcile := e.target(succeed, succeed)
	require.NoError(t, toggler.Toggle(context.Background(), 1, noReconcile))

	toggler.Wait()
	assert.Equal(t, 0, calls)
	assert.Equal(t, Counts{Liked: false, Count: 3}, e.get())
}

func TestReconcileApplyExcludesToggle(t *testing.T) {
	e := &entity{counts: Counts{Count: 3}}
	toggler := NewToggler[int64]("post", 10*time.Millisecond)

	target := e.target(succeed, succeed)
	target.Reconcile = func(context.Context) (Counts, error) {
		return Counts{Liked: true, Count: 7}, nil
	}
	var during error
	apply := target.Apply
	reconciled := false
	target.Apply = func(c Counts) {
		if c == (Counts{Liked: true, Count: 7}) {
			reconciled = true
			during = toggler.Toggle(context.Background(), 1, e.target(succeed, succeed))
		}
		apply(c)
	}

	require.NoError(t, toggler.Toggle(context.Background(), 1, target))
	toggler.Wait()

	require.True(t, reconciled)
	assert.ErrorIs(t, during, ErrToggleInFlight)
	assert.Equal(t, Counts{Liked: true, Count: 7}, e.get())
	assert.False(t, toggler.InFlight(1))
}

func TestToggleUnknownTarget(t *testing.T) {
	toggler := NewToggler[int64]("post", 0)
	err := toggler.Toggle(context.Background(), 1, Target{
		Current: func() (Counts, bool) { return Counts{}, false },
	})
	assert.ErrorIs(t, err, ErrUnknownTarget)
	assert.False(t, toggler.InFlight(1))
}
