// Package reaper bounds store growth by discarding guest records whose
// browser session is no longer live.
package reaper

import "llm-chat/internal/store"

type Reaper struct {
	repo store.Repository
}

func New(repo store.Repository) *Reaper {
	return &Reaper{repo: repo}
}

// Reap removes every guest record not bound to activeToken. Non-guest
// records are always retained.
func (r *Reaper) Reap(activeToken string) error {
	return r.Sweep([]string{activeToken})
}

// Sweep is Reap generalized to the set of live session tokens, used by the
// scheduled sweep where several browser sessions may be active at once.
// The store is rewritten only when something was actually discarded.
func (r *Reaper) Sweep(activeTokens []string) error {
	st, err := r.repo.Load()
	if err != nil {
		return err
	}
	live := make(map[string]bool, len(activeTokens))
	for _, tok := range activeTokens {
		if tok != "" {
			live[tok] = true
		}
	}

	kept := store.Store{}
	for id, rec := range st {
		if !rec.IsGuest || live[rec.GuestSessionID] {
			kept[id] = rec
		}
	}
	if len(kept) == len(st) {
		return nil
	}
	return r.repo.Save(kept)
}
