package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// maxCompletionTokens caps completions at roughly 200 words; the chat
// orchestrator additionally instructs the model to stay short.
const maxCompletionTokens = 300

// GroqClient talks to the Groq chat-completion endpoint, which is
// OpenAI-compatible, so it rides on the go-openai client with a custom
// base URL.
type GroqClient struct {
	client       *openai.Client
	defaultModel string
}

func NewGroq(apiKey, baseURL, defaultModel string) *GroqClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}
	config.BaseURL = baseURL
	return &GroqClient{
		client:       openai.NewClientWithConfig(config),
		defaultModel: defaultModel,
	}
}

func (c *GroqClient) Generate(ctx context.Context, messages []Message, model string) (Response, error) {
	if model == "" {
		model = c.defaultModel
	}
	var oaMsgs []openai.ChatCompletionMessage
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    oaMsgs,
		MaxTokens:   maxCompletionTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("empty completion from model %s", model)
	}

	out := Response{
		Content: resp.Choices[0].Message.Content,
		Model:   model,
	}
	out.PromptTokens = resp.Usage.PromptTokens
	out.CompletionTokens = resp.Usage.CompletionTokens
	out.TotalTokens = resp.Usage.TotalTokens
	return out, nil
}

// Models returns the selectable model ids, sorted. When the list-models call
// fails the hardcoded fallback set is substituted, so the picker always has
// something to show.
func (c *GroqClient) Models(ctx context.Context) []string {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return filterModels(fallbackModels)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return filterModels(ids)
}

// Status probes the list-models endpoint and reports connectivity for the
// status indicator.
func (c *GroqClient) Status(ctx context.Context) (bool, string) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		msg := err.Error()
		if len(msg) > 50 {
			msg = msg[:50]
		}
		return false, "Connection Error: " + msg
	}
	return true, fmt.Sprintf("API Connected - %d models available", len(list.Models))
}

// fallbackModels mirrors the static list served when the models endpoint is
// unreachable.
var fallbackModels = []string{
	"llama-3.1-70b-versatile",
	"llama-3.1-8b-instant",
	"llama-3.2-11b-text-preview",
	"llama-3.2-3b-preview",
	"llama-3.2-1b-preview",
	"llama3-groq-70b-8192-tool-use-preview",
	"llama3-groq-8b-8192-tool-use-preview",
	"llama3-70b-8192",
	"llama3-8b-8192",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
	"gemma-7b-it",
}

// filterModels drops non-text-generation models (speech, distilled variants)
// and families excluded from the picker, then sorts.
func filterModels(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !usableModel(id) {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func usableModel(id string) bool {
	lower := strings.ToLower(id)
	if strings.Contains(lower, "whisper") || strings.Contains(lower, "distil") {
		return false
	}
	if strings.HasPrefix(lower, "allam") || strings.HasPrefix(lower, "playai") {
		return false
	}
	return true
}
