// Package session tracks per-browser-session identity and the transient
// chat buffer, separate from durable storage. A Session is the unit the
// interaction pipeline passes around; the Manager owns the token -> Session
// mapping and the guest/authenticated transitions.
package session

import (
	"crypto/rand"
	"fmt"

	"llm-chat/internal/llm"
)

type State int

const (
	// StateGuest is the anonymous default: the visitor chats under a
	// disposable guest identity.
	StateGuest State = iota
	// StateAuthenticating means the login/register forms are visible.
	StateAuthenticating
	// StateAuthenticated means credentials were verified.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateGuest:
		return "guest"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one browser session's view of the app: its token, auth state,
// and the working conversation buffer for the current display session.
//
// Interactions within one session are expected to arrive serially (one
// browser, one user). Two tabs sharing a cookie can interleave; like the
// shared store document, that races with last-write-wins.
type Session struct {
	Token      string
	State      State
	Identifier string
	Buffer     []llm.Message

	interactions int
}

// IsGuest reports whether the session lacks verified credentials. Sessions
// in the authenticating state still chat under their guest identity.
func (s *Session) IsGuest() bool { return s.State != StateAuthenticated }

// ClearBuffer drops the working conversation without touching persisted
// history.
func (s *Session) ClearBuffer() { s.Buffer = nil }

const (
	guestIDPrefix = "Guest_"
	guestIDLength = 8
	tokenLength   = 16

	guestIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

func newGuestID() (string, error) {
	suffix, err := randomString(guestIDLength, guestIDAlphabet)
	if err != nil {
		return "", err
	}
	return guestIDPrefix + suffix, nil
}

func newToken() (string, error) {
	return randomString(tokenLength, tokenAlphabet)
}

func randomString(n int, alphabet string) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random string: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
