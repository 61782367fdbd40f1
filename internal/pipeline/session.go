package pipeline

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/towerdash/internal/proxy"
)

// Session is the state one dashboard session keeps between fetches: the proxy
// rotation, the refresh timestamp and the in-memory query cache. A Session is
// safe for concurrent use.
type Session struct {
	id       string
	rotation *proxy.Rotation

	mu          sync.Mutex
	lastRefresh time.Time
	lastProxy   int
	queries     map[string]queryEntry
}

type queryEntry struct {
	result *Result
	at     time.Time
}

// NewSession creates a session over proxies. now seeds the refresh timestamp.
func NewSession(proxies []proxy.Proxy, now time.Time) *Session {
	return &Session{
		id:          uuid.NewString(),
		rotation:    proxy.NewRotation(proxies),
		lastRefresh: now,
		lastProxy:   -1,
		queries:     make(map[string]queryEntry),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Rotation returns the session's proxy rotation.
func (s *Session) Rotation() *proxy.Rotation { return s.rotation }

// LastRefresh returns the timestamp of the last user-triggered refresh.
func (s *Session) LastRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefresh
}

// QueryKey identifies the current query in the memory cache.
func (s *Session) QueryKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return queryKey(s.lastRefresh)
}

func queryKey(refresh time.Time) string {
	return "towers:" + strconv.FormatInt(refresh.UnixMilli(), 10)
}

// Refresh starts a new query generation: the refresh timestamp moves to now,
// earlier memory entries are dropped and the attempted proxy list is reset.
func (s *Session) Refresh(now time.Time) {
	s.mu.Lock()
	if !now.After(s.lastRefresh) {
		now = s.lastRefresh.Add(time.Millisecond)
	}
	s.lastRefresh = now
	s.queries = make(map[string]queryEntry)
	s.mu.Unlock()

	s.rotation.Reset()
}

// LastProxy returns the index of the proxy that last served a live batch, or
// -1 when no live fetch has succeeded in this session.
func (s *Session) LastProxy() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastProxy
}

func (s *Session) recordSuccess(index int) {
	s.rotation.RecordSuccess(index)
	s.mu.Lock()
	s.lastProxy = index
	s.mu.Unlock()
}

// cached returns the memory entry for key if it is younger than stale.
func (s *Session) cached(key string, now time.Time, stale time.Duration) (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.queries[key]
	if !ok {
		return nil, false
	}
	if now.Sub(e.at) >= stale {
		delete(s.queries, key)
		return nil, false
	}
	return e.result, true
}

func (s *Session) remember(key string, res *Result, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries[key] = queryEntry{result: res, at: now}
}

// forget drops the memory cache and the rotation's attempted list.
func (s *Session) forget() {
	s.mu.Lock()
	s.queries = make(map[string]queryEntry)
	s.mu.Unlock()

	s.rotation.Reset()
}
