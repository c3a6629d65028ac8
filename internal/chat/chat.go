// Package chat assembles outbound model requests from the session's working
// buffer and routes successful exchanges into persisted history.
package chat

import (
	"context"
	"fmt"
	"log"

	"llm-chat/internal/history"
	"llm-chat/internal/llm"
	"llm-chat/internal/session"
)

// systemPrompt enforces the hard response-length ceiling on every request;
// the client additionally caps completion tokens.
const systemPrompt = "You MUST keep your responses very short and concise. " +
	"Maximum 200 words total. Maximum 3 paragraphs. Be direct and to the point. " +
	"Do not elaborate unnecessarily. Stop writing when you reach the limit."

// ExternalCallError wraps any transport or API failure from the model
// endpoint. It is surfaced inline to the user, never fatal.
type ExternalCallError struct {
	Err error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *ExternalCallError) Unwrap() error { return e.Err }

type Orchestrator struct {
	client llm.Client
	rec    *history.Recorder
}

func New(client llm.Client, rec *history.Recorder) *Orchestrator {
	return &Orchestrator{client: client, rec: rec}
}

// Send appends prompt as a user turn, calls the model, and on success
// appends the assistant turn and records the exchange for non-guest
// callers.
//
// On failure the buffer keeps the just-added user turn and gains no
// assistant turn: the prompt was sent, so the user can retry without
// re-typing it.
func (o *Orchestrator) Send(ctx context.Context, sess *session.Session, prompt, model string) (string, error) {
	sess.Buffer = append(sess.Buffer, llm.Message{Role: llm.RoleUser, Content: prompt})

	messages := make([]llm.Message, 0, len(sess.Buffer)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	messages = append(messages, sess.Buffer...)

	resp, err := o.client.Generate(ctx, messages, model)
	if err != nil {
		return "", &ExternalCallError{Err: err}
	}

	sess.Buffer = append(sess.Buffer, llm.Message{Role: llm.RoleAssistant, Content: resp.Content})

	if !sess.IsGuest() {
		if err := o.rec.Record(sess.Identifier, prompt, resp.Content, resp.Model); err != nil {
			log.Printf("failed to record history for %s: %v", sess.Identifier, err)
		}
	}
	return resp.Content, nil
}
