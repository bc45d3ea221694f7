package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"rag-chatbot-be/internal/repository/contract"
)

// sessionLock is a one-slot semaphore so waiting can be cancelled through ctx.
type sessionLock struct {
	slot chan struct{}
	// holders plus waiters; guarded by SessionLockRepository.mu
	refs int
}

// SessionLockRepository hands out one in-process lock per session key.
// A lock that is held or awaited never expires; idle locks leave the
// registry after idleTTL.
type SessionLockRepository struct {
	mu      sync.Mutex
	cache   *cache.Cache
	idleTTL time.Duration
}

var _ contract.SessionLocker = &SessionLockRepository{}

func NewSessionLockRepository(idleTTL time.Duration) *SessionLockRepository {
	if idleTTL <= 0 {
		idleTTL = time.Hour
	}
	return &SessionLockRepository{
		cache:   cache.New(idleTTL, 10*time.Minute),
		idleTTL: idleTTL,
	}
}

func (r *SessionLockRepository) acquire(key string) *sessionLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	var l *sessionLock
	if x, found := r.cache.Get(key); found {
		l = x.(*sessionLock)
	} else {
		l = &sessionLock{slot: make(chan struct{}, 1)}
	}
	l.refs++
	r.cache.Set(key, l, cache.NoExpiration)
	return l
}

func (r *SessionLockRepository) release(key string, l *sessionLock) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		r.cache.Set(key, l, r.idleTTL)
	}
}

func (r *SessionLockRepository) Lock(ctx context.Context, key string) (func(), error) {
	l := r.acquire(key)

	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		r.release(key, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.slot
			r.release(key, l)
		})
	}, nil
}
