package llm

import "context"

type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client generates one completion for an ordered list of role-tagged
// messages. model selects the hosted model; an empty string means the
// client's default.
type Client interface {
	Generate(ctx context.Context, messages []Message, model string) (Response, error)
}

// ModelSource reports the selectable model set and endpoint connectivity.
type ModelSource interface {
	Models(ctx context.Context) []string
	Status(ctx context.Context) (ok bool, detail string)
}
