package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSessionTTL is how long an idle session is kept
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Registry maps session IDs to controllers and evicts idle sessions
type Registry struct {
	deps   Deps
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewRegistry creates a new session registry
func NewRegistry(deps Deps, ttl time.Duration, logger *zap.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		deps:     deps,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Get returns the controller for id, creating a session when id is empty
// or unknown. The returned ID is the one the caller should keep using.
func (r *Registry) Get(id string) (*Controller, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	if s, ok := r.sessions[id]; ok && id != "" {
		s.lastSeen = now
		return s.ctrl, id
	}

	id = uuid.NewString()
	ctrl := NewController(id, r.deps)
	r.sessions[id] = &session{ctrl: ctrl, lastSeen: now}
	r.logger.Debug("Dashboard session created", zap.String("session", id))
	return ctrl, id
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close cancels all in-flight fetches and drops every session
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.ctrl.Close()
		delete(r.sessions, id)
	}
}

// sweep evicts sessions idle for longer than ttl; callers hold mu
func (r *Registry) sweep(now time.Time) {
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.ttl {
			s.ctrl.Close()
			delete(r.sessions, id)
			r.logger.Debug("Dashboard session evicted", zap.String("session", id))
		}
	}
}
