package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Store interface {
	// Allow takes one token from key's bucket. When the bucket is empty it reports
	// how long until the next token is available.
	Allow(key string, now time.Time) (allowed bool, remaining int, retryAfter time.Duration)
}

// MemoryStore keeps one token bucket per key and forgets keys idle for longer
// than the idle timeout.
type MemoryStore struct {
	mu    sync.Mutex
	data  map[string]*entry
	limit rate.Limit
	burst int
	idle  time.Duration
	stop  chan struct{}
	once  sync.Once
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryStore allows requests per period with the given burst.
func NewMemoryStore(requests int, period time.Duration, burst int) *MemoryStore {
	if requests <= 0 {
		requests = 10
	}
	if period <= 0 {
		period = time.Minute
	}
	if burst <= 0 {
		burst = 1
	}

	store := &MemoryStore{
		data:  make(map[string]*entry),
		limit: rate.Every(period / time.Duration(requests)),
		burst: burst,
		idle:  max(period, time.Minute),
		stop:  make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *MemoryStore) Allow(key string, now time.Time) (bool, int, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.data[key]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.data[key] = e
	}
	e.lastSeen = now

	reservation := e.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0, s.idle
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, 0, delay
	}

	return true, int(e.limiter.TokensAt(now)), 0
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Sweep drops buckets that have not been used since before now minus the idle timeout.
func (s *MemoryStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.data {
		if now.Sub(e.lastSeen) > s.idle {
			delete(s.data, key)
		}
	}
}

func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}
