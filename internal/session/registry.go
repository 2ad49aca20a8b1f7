package session

import "sync"

// Registry is the process-wide map from telegram user id to live session.
// It is the only mutable structure shared between the update dispatcher
// and the status watcher. Creation never fails; entries leave the map only
// through Destroy or process restart.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the user's session, allocating a fresh one with
// documented defaults (default locale, empty sequences, empty scratch)
// on first contact.
func (r *Registry) GetOrCreate(userID string, chatID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[userID]; ok {
		return s
	}
	s := newSession(userID, chatID)
	r.sessions[userID] = s
	return s
}

// Get returns the session or nil when the user has none.
func (r *Registry) Get(userID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

// Destroy removes the session unconditionally. Called on /cancel and on
// terminal success.
func (r *Registry) Destroy(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Snapshot returns the current sessions for a sweep. The slice is a stable
// copy so the sweep never iterates the live map.
func (r *Registry) Snapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
