package store

import (
	"fmt"
	"time"
)

// Exchange is one prompt/response pair plus the model that produced it.
// Exchanges are appended in chronological order and never rewritten.
type Exchange struct {
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Model     string    `json:"model"`
}

// UserRecord is one user entry in the document. Registered users carry a
// credential hash and an empty guest session id; guests carry the opposite.
type UserRecord struct {
	CredentialHash string     `json:"credential_hash"`
	CreatedAt      time.Time  `json:"created_at"`
	IsGuest        bool       `json:"is_guest"`
	GuestSessionID string     `json:"guest_session_id"`
	History        []Exchange `json:"history"`
}

// Store is the full identifier -> record mapping. The unit of persistence
// is the whole Store: mutations go load-entire / mutate / save-entire.
type Store map[string]*UserRecord

// Clone returns a deep copy so callers can mutate freely between Load and
// Save without sharing state with the cache or other callers.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for id, rec := range s {
		cp := *rec
		cp.History = append([]Exchange(nil), rec.History...)
		out[id] = &cp
	}
	return out
}

// Repository abstracts persistence of the Store.
// Implementations can be file-based, database, etc.
type Repository interface {
	Load() (Store, error)
	Save(Store) error
}

// ParseError reports a structurally malformed backing document. It is not
// recovered internally; any operation needing the Store surfaces it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
