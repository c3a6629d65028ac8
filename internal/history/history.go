// Package history persists prompt/response exchanges on user records.
package history

import (
	"time"

	"llm-chat/internal/store"
)

type Recorder struct {
	repo store.Repository
}

func New(repo store.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one exchange to the identifier's history. An unknown
// identifier is a silent no-op. That swallows typos in identifiers, so
// callers that need certainty should verify the record exists first.
func (r *Recorder) Record(identifier, prompt, response, model string) error {
	st, err := r.repo.Load()
	if err != nil {
		return err
	}
	rec, ok := st[identifier]
	if !ok {
		return nil
	}
	rec.History = append(rec.History, store.Exchange{
		Timestamp: time.Now().UTC(),
		Prompt:    prompt,
		Response:  response,
		Model:     model,
	})
	return r.repo.Save(st)
}

// Recent returns up to limit of the identifier's latest exchanges, oldest
// first. Unknown identifiers yield an empty slice.
func (r *Recorder) Recent(identifier string, limit int) ([]store.Exchange, error) {
	st, err := r.repo.Load()
	if err != nil {
		return nil, err
	}
	rec, ok := st[identifier]
	if !ok {
		return nil, nil
	}
	h := rec.History
	if limit >= 0 && len(h) > limit {
		h = h[len(h)-limit:]
	}
	return append([]store.Exchange(nil), h...), nil
}
