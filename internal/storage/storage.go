package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eugenenazirov/chargeable-weight/internal/calculator"
)

var (
	// ErrSessionNotFound indicates the session id is unknown or has expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCapacityExceeded indicates the store already holds the maximum number of sessions.
	ErrCapacityExceeded = errors.New("session capacity exceeded")
)

const (
	defaultTTL         = 30 * time.Minute
	defaultMaxSessions = 10_000
)

// Storage keeps calculator sessions between requests.
type Storage interface {
	Create(cfg calculator.Config) (uuid.UUID, calculator.Result, error)
	Get(id uuid.UUID) (calculator.Result, error)
	Update(id uuid.UUID, mutate func(*calculator.Session)) (calculator.Result, error)
	Delete(id uuid.UUID) error
	Len() int
}

// Option configures a MemoryStorage.
type Option func(*MemoryStorage)

// WithTTL sets how long an untouched session is kept.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStorage) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStorage) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStorage) {
		s.clock = clock
	}
}

type entry struct {
	session    *calculator.Session
	lastAccess time.Time
}

// MemoryStorage keeps sessions in-memory and guards access with a RWMutex.
// Each mutation runs to completion while the lock is held.
type MemoryStorage struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*entry
	ttl         time.Duration
	maxSessions int
	clock       func() time.Time
}

// NewMemoryStorage creates an empty store.
func NewMemoryStorage(opts ...Option) *MemoryStorage {
	s := &MemoryStorage{
		sessions:    make(map[uuid.UUID]*entry),
		ttl:         defaultTTL,
		maxSessions: defaultMaxSessions,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session, evicting expired ones first.
func (s *MemoryStorage) Create(cfg calculator.Config) (uuid.UUID, calculator.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	s.sweepLocked(now)
	if len(s.sessions) >= s.maxSessions {
		return uuid.Nil, calculator.Result{}, ErrCapacityExceeded
	}

	id := uuid.New()
	session := calculator.NewSession(cfg)
	s.sessions[id] = &entry{session: session, lastAccess: now}
	return id, session.Snapshot(), nil
}

// Get returns a snapshot of the session.
func (s *MemoryStorage) Get(id uuid.UUID) (calculator.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookupLocked(id)
	if err != nil {
		return calculator.Result{}, err
	}
	return e.session.Snapshot(), nil
}

// Update applies mutate to the session and returns the resulting snapshot.
func (s *MemoryStorage) Update(id uuid.UUID, mutate func(*calculator.Session)) (calculator.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.lookupLocked(id)
	if err != nil {
		return calculator.Result{}, err
	}
	mutate(e.session)
	return e.session.Snapshot(), nil
}

// Delete discards the session.
func (s *MemoryStorage) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len reports the number of stored sessions, including any not yet swept.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the TTL and reports how many were removed.
func (s *MemoryStorage) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sweepLocked(s.clock())
}

func (s *MemoryStorage) lookupLocked(id uuid.UUID) (*entry, error) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.clock()
	if now.Sub(e.lastAccess) > s.ttl {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	e.lastAccess = now
	return e, nil
}

func (s *MemoryStorage) sweepLocked(now time.Time) int {
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastAccess) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
