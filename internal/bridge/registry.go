package bridge

import (
	"sync"

	"github.com/ergochat/irc-go/ircmsg"
)

// Registry holds every registered session, keyed by session ID. Nicknames are
// not keys: two sessions may share a nickname, and one disconnecting must not
// evict the other.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add inserts a registered session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	sessionsGauge.Inc()
}

// Remove deletes the session with the given ID, if present.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		sessionsGauge.Dec()
	}
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// snapshot copies the current session set so callers can iterate without
// holding the lock across socket writes.
func (r *Registry) snapshot() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// ForEach calls fn for every registered session.
func (r *Registry) ForEach(fn func(*Session)) {
	for _, s := range r.snapshot() {
		fn(s)
	}
}

// Broadcast sends one message to every registered session.
func (r *Registry) Broadcast(msg ircmsg.Message) {
	line, err := serialize(msg)
	if err != nil {
		return
	}
	for _, s := range r.snapshot() {
		s.sendRaw(line)
	}
}

// BroadcastExcept sends one message to every registered session whose
// nickname differs from nick. Used to keep a client's own relayed messages
// from echoing back at it.
func (r *Registry) BroadcastExcept(nick string, msg ircmsg.Message) {
	line, err := serialize(msg)
	if err != nil {
		return
	}
	for _, s := range r.snapshot() {
		if s.Nickname() == nick {
			continue
		}
		s.sendRaw(line)
	}
}

// SessionInfo is the read-only session view exposed over the status API.
type SessionInfo struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Hostname string `json:"hostname"`
}

// Infos returns a read-only view of every registered session.
func (r *Registry) Infos() []SessionInfo {
	sessions := r.snapshot()
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, SessionInfo{
			ID:       s.ID,
			Nickname: s.Nickname(),
			Hostname: s.Hostname(),
		})
	}
	return out
}
