package slideshow

import (
	"sync"
	"time"

	"home-gallery/internal/logging"
	"home-gallery/internal/metrics"
)

// session is the state of one client's slideshow.
type session struct {
	mu         sync.Mutex
	seeded     bool
	params     ListRequest
	all        []string
	queue      []string
	shown      map[string]struct{}
	lastAccess time.Time
}

// Store keeps sessions by opaque key and evicts the ones idle longer
// than the TTL.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*session
	stop     chan struct{}
	once     sync.Once
}

// NewStore returns a Store with the given idle TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*session),
		stop:     make(chan struct{}),
	}
}

// get returns the session for key, creating it on first use, and
// refreshes its idle timer.
func (st *Store) get(key string) *session {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[key]
	if !ok {
		s = &session{}
		st.sessions[key] = s
		metrics.SlideshowSessionsActive.Set(float64(len(st.sessions)))
	}
	s.lastAccess = time.Now()
	return s
}

// Remove drops the session for key if present.
func (st *Store) Remove(key string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[key]; ok {
		delete(st.sessions, key)
		metrics.SlideshowSessionsActive.Set(float64(len(st.sessions)))
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts sessions idle past the TTL and returns how many were
// removed.
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for key, s := range st.sessions {
		if now.Sub(s.lastAccess) > st.ttl {
			delete(st.sessions, key)
			evicted++
		}
	}
	if evicted > 0 {
		metrics.SlideshowSessionsActive.Set(float64(len(st.sessions)))
		logging.Debug("evicted %d idle slideshow sessions", evicted)
	}
	return evicted
}

// StartSweeper runs Sweep periodically until Stop is called.
func (st *Store) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-st.stop:
				return
			case now := <-ticker.C:
				st.Sweep(now)
			}
		}
	}()
}

// Stop ends the sweeper goroutine.
func (st *Store) Stop() {
	st.once.Do(func() { close(st.stop) })
}
