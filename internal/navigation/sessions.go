package navigation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/collegedash/internal/logging"
	"github.com/conneroisu/collegedash/internal/sections"
)

// SessionStore keeps one Router per dashboard session.
type SessionStore struct {
	aliases  *sections.AliasTable
	logger   logging.Logger
	idle     time.Duration
	now      func() time.Time
	onCreate func(id string, router *Router)
	sessions map[string]*session
	mutex    sync.Mutex
}

type session struct {
	router   *Router
	lastSeen time.Time
}

// NewSessionStore creates a store whose sessions expire after idle of
// inactivity. A zero idle disables expiry.
func NewSessionStore(aliases *sections.AliasTable, idle time.Duration, logger logging.Logger) *SessionStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SessionStore{
		aliases:  aliases,
		logger:   logger.WithComponent("sessions"),
		idle:     idle,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// OnCreate registers a callback run, outside the store lock, for every newly
// created session.
func (s *SessionStore) OnCreate(fn func(id string, router *Router)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.onCreate = fn
}

// Get returns the router for id, creating it when needed. An id that is not
// a well-formed UUID is replaced with a fresh one; the returned id is the one
// the caller should hand back to the client.
func (s *SessionStore) Get(id string) (*Router, string) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	s.mutex.Lock()
	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		s.mutex.Unlock()
		return sess.router, id
	}

	router := NewRouter(s.aliases, WithLogger(s.logger.With("session", id)))
	s.sessions[id] = &session{router: router, lastSeen: s.now()}
	onCreate := s.onCreate
	s.mutex.Unlock()

	s.logger.Debug(context.Background(), "Session created", "session", id)
	if onCreate != nil {
		onCreate(id, router)
	}
	return router, id
}

// Lookup returns an existing session without creating one or refreshing its
// idle clock.
func (s *SessionStore) Lookup(id string) (*Router, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.router, true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than the configured timeout and
// closes their routers. It returns the number removed.
func (s *SessionStore) Sweep() int {
	if s.idle <= 0 {
		return 0
	}

	s.mutex.Lock()
	cutoff := s.now().Add(-s.idle)
	var expired []*Router
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess.router)
			delete(s.sessions, id)
		}
	}
	s.mutex.Unlock()

	for _, router := range expired {
		router.Close()
	}
	if len(expired) > 0 {
		s.logger.Debug(context.Background(), "Expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps on every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if s.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close closes every session router and empties the store.
func (s *SessionStore) Close() {
	s.mutex.Lock()
	routers := make([]*Router, 0, len(s.sessions))
	for id, sess := range s.sessions {
		routers = append(routers, sess.router)
		delete(s.sessions, id)
	}
	s.mutex.Unlock()

	for _, router := range routers {
		router.Close()
	}
}
