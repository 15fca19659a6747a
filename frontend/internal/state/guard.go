package state

import "sync"

// KeyedGuard marks keys as busy. At most one holder per key.
type KeyedGuard[K comparable] struct {
	mu   sync.Mutex
	held map[K]struct{}
}

// TryAcquire takes k and reports true, or reports false if k is already held.
func (g *KeyedGuard[K]) TryAcquire(k K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == nil {
		g.held = make(map[K]struct{})
	}
	if _, busy := g.held[k]; busy {
		return false
	}
	g.held[k] = struct{}{}
	return true
}

func (g *KeyedGuard[K]) Release(k K) {
	g.mu.Lock()
	delete(g.held, k)
	g.mu.Unlock()
}

func (g *KeyedGuard[K]) Held(k K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.held[k]
	return busy
}
