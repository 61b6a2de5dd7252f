package application

import (
	"sync"
	"time"

	"github.com/viralforge/facility-assistant/internal/domain"
)

// clientSession is everything one connected client owns: auth state, conversation, board and voice.
// mu guards every field; it is released while a gateway call is outstanding.
type clientSession struct {
	mu           sync.Mutex
	id           string
	auth         *Authenticator
	log          *domain.ConversationLog
	board        *domain.ProblemBoard
	voice        *VoiceBridge
	turnInFlight bool
	createdAt    time.Time
	lastActiveAt time.Time
}

func (c *clientSession) viewLocked() SessionView {
	view := SessionView{
		SessionID:    c.id,
		State:        c.auth.State(),
		SelectedRole: c.auth.SelectedRole(),
		ResetStep:    c.auth.ResetStep(),
		ResetRole:    c.auth.ResetRole(),
		TurnInFlight: c.turnInFlight,
		Listening:    c.voice.Listening(),
		MessageCount: c.log.Len(),
		CreatedAt:    c.createdAt,
		LastActiveAt: c.lastActiveAt,
	}
	if account, ok := c.auth.Current(); ok {
		view.Account = &AccountView{Username: account.Username, Role: account.Role}
	}
	return view
}

// resetLocked clears the conversation and the board. Used by logout.
func (c *clientSession) resetLocked() {
	c.log.Reset()
	c.board.Clear()
}

// sessionRegistry indexes live client sessions by id.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*clientSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: map[string]*clientSession{}}
}

func (r *sessionRegistry) put(s *clientSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

func (r *sessionRegistry) get(id string) (*clientSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *sessionRegistry) remove(id string) (*clientSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

func (r *sessionRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// expired removes and returns sessions idle since before cutoff. Sessions with a turn in flight stay.
func (r *sessionRegistry) expired(cutoff time.Time) []*clientSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*clientSession
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := !s.turnInFlight && s.lastActiveAt.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			out = append(out, s)
		}
	}
	return out
}

// drain removes and returns every session.
func (r *sessionRegistry) drain() []*clientSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*clientSession, 0, len(r.sessions))
	for id, s := range r.sessions {
		delete(r.sessions, id)
		out = append(out, s)
	}
	return out
}
