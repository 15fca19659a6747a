package state

import "sync"

// Cell is an observable value. The zero Cell holds the zero T and is
// ready to use. Subscribers run after every write, outside the lock,
// in subscription order.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T
	subs  []subscriber[T]
	next  int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	subs := c.snapshot()
	c.mu.Unlock()
	notify(subs, v)
}

// Update replaces the value with fn(old) atomically and returns the new value.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	v := fn(c.value)
	c.value = v
	subs := c.snapshot()
	c.mu.Unlock()
	notify(subs, v)
	return v
}

// Subscribe registers fn for future writes and returns a function that
// removes it.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	c.next++
	id := c.next
	c.subs = append(c.subs, subscriber[T]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Cell[T]) snapshot() []subscriber[T] {
	if len(c.subs) == 0 {
		return nil
	}
	return append([]subscriber[T](nil), c.subs...)
}

func notify[T any](subs []subscriber[T], v T) {
	for _, s := range subs {
		s.fn(v)
	}
}
