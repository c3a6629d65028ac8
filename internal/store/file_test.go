package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	st, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(st) != 0 {
		t.Fatalf("want empty store, got %d records", len(st))
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	st, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(st) != 0 {
		t.Fatalf("want empty store, got %d records", len(st))
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	_, err = fs.Load()
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("want ParseError, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	st := Store{
		"a@x.com": {
			CredentialHash: "abc123",
			CreatedAt:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
			History: []Exchange{
				{Timestamp: time.Date(2025, 1, 2, 3, 5, 0, 0, time.UTC), Prompt: "hi", Response: "hello", Model: "llama-3.1-8b-instant"},
			},
		},
		"Guest_AB12CD34": {
			IsGuest:        true,
			GuestSessionID: "tok1234567890abc",
			CreatedAt:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}
	if err := fs.Save(st); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	rec := got["a@x.com"]
	if rec == nil || rec.CredentialHash != "abc123" || len(rec.History) != 1 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.History[0].Prompt != "hi" || rec.History[0].Model != "llama-3.1-8b-instant" {
		t.Fatalf("unexpected exchange: %+v", rec.History[0])
	}

	// save(load()) leaves the persisted state identical.
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := fs.Save(got); err != nil {
		t.Fatalf("resave: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("save(load()) changed persisted state:\n%s\nvs\n%s", before, after)
	}
}

func TestSaveInvalidatesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := fs.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	st := Store{"u@x.com": {CredentialHash: "h", CreatedAt: time.Now().UTC()}}
	if err := fs.Save(st); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got["u@x.com"] == nil {
		t.Fatalf("load after save did not reflect the write")
	}
}

func TestLoadReturnsCopies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := fs.Save(Store{"u@x.com": {CredentialHash: "h"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	first, _ := fs.Load()
	first["u@x.com"].CredentialHash = "mutated"
	second, _ := fs.Load()
	if second["u@x.com"].CredentialHash != "h" {
		t.Fatalf("cache mutated via returned store")
	}
}
