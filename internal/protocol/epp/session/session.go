// Package session implements the per-connection EPP state machine: greeting
// issuance, login/logout, and the authenticated-or-not gate every command
// passes through before reaching the dispatcher.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a node in the session state machine described by the protocol:
// Greeted -> Authenticated -> Closing -> Closed, with hello returning any
// non-authenticated session to Greeted and leaving Authenticated as is.
type State string

const (
	StateGreeted       State = "greeted"
	StateAuthenticated State = "authenticated"
	StateClosing       State = "closing"
	StateClosed        State = "closed"
)

// Session is the per-connection record: greeting sent, authenticated client
// identifier, login time, client address and creation time. It carries no
// reference to the
// network connection itself; the listener owns that.
type Session struct {
	mu sync.Mutex

	ID         string
	State      State
	ClID       string
	LoginTime  time.Time
	ClientAddr string
	CreatedAt  time.Time
}

// New creates a session in the Greeted state for a freshly accepted
// connection from clientAddr.
func New(clientAddr string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		State:      StateGreeted,
		ClientAddr: clientAddr,
		CreatedAt:  time.Now(),
	}
}

// Authenticated reports whether the session has completed a successful
// login and not yet logged out.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State == StateAuthenticated
}

// Login transitions Greeted -> Authenticated, recording the sponsoring
// client identifier and login time. It is a no-op transition error if the
// session has already moved past Greeted/Authenticated (e.g. Closing).
func (s *Session) Login(clID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State == StateClosing || s.State == StateClosed {
		return fmt.Errorf("session: cannot login in state %s", s.State)
	}
	s.State = StateAuthenticated
	s.ClID = clID
	s.LoginTime = time.Now()
	return nil
}

// Logout transitions Authenticated -> Closing, the terminal action before
// the connection is torn down by the caller.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = StateClosing
}

// Hello re-enters the Greeted state; per the protocol a <hello> is legal in
// any state and simply causes the greeting to be re-emitted without
// otherwise disturbing authentication.
func (s *Session) Hello() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.State != StateAuthenticated {
		s.State = StateGreeted
	}
}

// Close marks the session Closed; subsequent command processing on it is a
// programming error in the caller.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = StateClosed
}

// SponsoringClient returns the authenticated client identifier, or "" if
// the session has not completed login.
func (s *Session) SponsoringClient() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ClID
}

// Snapshot is an immutable copy of session state safe to log or enumerate
// without holding the session's lock, used by shutdown handlers that walk
// the process-wide session table.
type Snapshot struct {
	ID         string
	State      State
	ClID       string
	ClientAddr string
	LoginTime  time.Time
	CreatedAt  time.Time
}

// Snapshot copies the session's current fields under lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.ID,
		State:      s.State,
		ClID:       s.ClID,
		ClientAddr: s.ClientAddr,
		LoginTime:  s.LoginTime,
		CreatedAt:  s.CreatedAt,
	}
}

// Table is the process-wide mapping from session identifier to session
// record. Its lifecycle is tied to connection accept/close: the owning
// connection task is the only writer of its own entry. Lookups from
// elsewhere (e.g. a shutdown signal handler enumerating active sessions)
// are read-only and never mutate an entry they do not own.
type Table struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewTable creates an empty session table.
func NewTable() *Table {
	return &Table{sessions: make(map[string]*Session)}
}

// Register adds a session to the table, called once by its owning
// connection task on accept.
func (t *Table) Register(s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[s.ID] = s
}

// Unregister removes a session, called once by its owning connection task
// on close.
func (t *Table) Unregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// Snapshot returns a point-in-time copy of every active session, used by
// graceful shutdown to report or wait on in-flight connections.
func (t *Table) Snapshot() []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Snapshot, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Len reports the number of active sessions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
