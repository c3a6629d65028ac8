// Package auth implements credential checks and registration over the user
// store.
//
// The credential digest is a single unsalted sha256 pass rendered as
// lowercase hex. That is deliberately kept for compatibility with existing
// users.json documents: changing it would lock out every registered user.
// It is weak (no per-user salt, no stretching); do not reuse this store
// across trust boundaries.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"llm-chat/internal/store"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid password")
	ErrDuplicateUser     = errors.New("user already exists")
)

// ValidationError reports a rejected registration input. Each rule violation
// is a distinct value so callers can render the exact reason inline.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

var (
	ErrPasswordTooShort = &ValidationError{Reason: "password must be at least 6 characters"}
	ErrPasswordMismatch = &ValidationError{Reason: "passwords don't match"}
	ErrBadIdentifier    = &ValidationError{Reason: "please enter a valid email"}
)

func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

type Service struct {
	repo store.Repository
}

func New(repo store.Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate checks a registered identifier's credentials.
func (s *Service) Authenticate(identifier, password string) error {
	st, err := s.repo.Load()
	if err != nil {
		return err
	}
	rec, ok := st[identifier]
	if !ok {
		return ErrUserNotFound
	}
	if rec.CredentialHash != HashPassword(password) {
		return ErrInvalidCredential
	}
	return nil
}

// Register creates a new non-guest record. Validation failures and duplicate
// identifiers are returned as error values for inline display, never fatal.
func (s *Service) Register(identifier, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	if !strings.Contains(identifier, "@") {
		return ErrBadIdentifier
	}

	st, err := s.repo.Load()
	if err != nil {
		return err
	}
	if _, ok := st[identifier]; ok {
		return ErrDuplicateUser
	}
	st[identifier] = &store.UserRecord{
		CredentialHash: HashPassword(password),
		CreatedAt:      time.Now().UTC(),
	}
	return s.repo.Save(st)
}

// RegisterGuest creates (or recreates) a disposable guest record bound to
// the given browser session token. Unlike Register, an existing guest
// identifier is overwritten rather than rejected.
func (s *Service) RegisterGuest(identifier, sessionToken string) error {
	st, err := s.repo.Load()
	if err != nil {
		return err
	}
	if rec, ok := st[identifier]; ok && !rec.IsGuest {
		return ErrDuplicateUser
	}
	st[identifier] = &store.UserRecord{
		CreatedAt:      time.Now().UTC(),
		IsGuest:        true,
		GuestSessionID: sessionToken,
	}
	return s.repo.Save(st)
}
