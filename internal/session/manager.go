package session

import (
	"log"
	"sync"

	"llm-chat/internal/auth"
	"llm-chat/internal/history"
	"llm-chat/internal/llm"
	"llm-chat/internal/reaper"
)

// historyPreload is how many persisted exchanges are replayed into the
// working buffer after sign-in.
const historyPreload = 5

type Manager struct {
	auth        *auth.Service
	hist        *history.Recorder
	reaper      *reaper.Reaper
	sampleEvery int

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(authSvc *auth.Service, hist *history.Recorder, rp *reaper.Reaper, sampleEvery int) *Manager {
	return &Manager{
		auth:        authSvc,
		hist:        hist,
		reaper:      rp,
		sampleEvery: sampleEvery,
		sessions:    make(map[string]*Session),
	}
}

// Ensure returns the session for token, or mints a fresh guest session when
// the token is unknown or empty (first contact, expired server restart).
func (m *Manager) Ensure(token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[token]; ok {
		return sess, nil
	}
	return m.newGuestSessionLocked()
}

func (m *Manager) newGuestSessionLocked() (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	guestID, err := newGuestID()
	if err != nil {
		return nil, err
	}
	if err := m.auth.RegisterGuest(guestID, token); err != nil {
		return nil, err
	}
	sess := &Session{Token: token, State: StateGuest, Identifier: guestID}
	m.sessions[token] = sess
	return sess, nil
}

// Touch counts one interaction and runs the guest reaper on a sampled
// cadence, bounding store I/O rather than sweeping every request.
func (m *Manager) Touch(sess *Session) {
	m.mu.Lock()
	sess.interactions++
	due := m.sampleEvery > 0 && sess.interactions%m.sampleEvery == 0
	m.mu.Unlock()
	if !due {
		return
	}
	if err := m.reaper.Reap(sess.Token); err != nil {
		log.Printf("guest cleanup failed: %v", err)
	}
}

// BeginSignIn shows the login/register forms.
func (m *Manager) BeginSignIn(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess.State == StateGuest {
		sess.State = StateAuthenticating
	}
}

// CancelSignIn hides the forms and resumes the guest identity.
func (m *Manager) CancelSignIn(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess.State == StateAuthenticating {
		sess.State = StateGuest
	}
}

// SignIn verifies credentials and switches the session to the registered
// identity: stale guests are reaped, the working buffer is replaced with up
// to the last five persisted exchanges.
func (m *Manager) SignIn(sess *Session, identifier, password string) error {
	if err := m.auth.Authenticate(identifier, password); err != nil {
		return err
	}
	if err := m.reaper.Reap(sess.Token); err != nil {
		log.Printf("guest cleanup failed: %v", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess.State = StateAuthenticated
	sess.Identifier = identifier
	sess.ClearBuffer()
	recent, err := m.hist.Recent(identifier, historyPreload)
	if err != nil {
		return err
	}
	for _, ex := range recent {
		sess.Buffer = append(sess.Buffer,
			llm.Message{Role: llm.RoleUser, Content: ex.Prompt},
			llm.Message{Role: llm.RoleAssistant, Content: ex.Response},
		)
	}
	return nil
}

// Register creates a non-guest account. The session stays in the
// authenticating state; signing in is a separate step.
func (m *Manager) Register(sess *Session, identifier, password, confirm string) error {
	return m.auth.Register(identifier, password, confirm)
}

// SignOut abandons the current identity and returns a brand-new guest
// session with a fresh token; the caller re-binds the browser to it.
func (m *Manager) SignOut(sess *Session) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess.ClearBuffer()
	delete(m.sessions, sess.Token)
	return m.newGuestSessionLocked()
}

// LiveTokens lists the tokens of all sessions currently held in memory,
// for the scheduled guest sweep.
func (m *Manager) LiveTokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sessions))
	for tok := range m.sessions {
		out = append(out, tok)
	}
	return out
}
