package lock

import (
	"context"
	"sync"
)

type slot struct {
	held chan struct{}
	refs int
}

type localImpl struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// NewLocal returns an in-process keyed mutex. Slots are dropped once nobody holds or
// waits on them, so the map only grows with contention.
func NewLocal() Locker {
	return &localImpl{slots: map[string]*slot{}}
}

func (l *localImpl) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{held: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.held <- struct{}{}:
		return sync.OnceFunc(func() {
			<-s.held
			l.unref(key, s)
		}), nil
	case <-ctx.Done():
		l.unref(key, s)

		return nil, ErrTimeout
	}
}

func (l *localImpl) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
