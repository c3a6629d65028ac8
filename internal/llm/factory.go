package llm

import (
	"fmt"
	"strings"

	"llm-chat/internal/config"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderYandex = "yandex"
)

// Factory creates LLM clients with consistent logic.
type Factory struct {
	APIKey           string
	BaseURL          string
	DefaultModel     string
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		APIKey:           cfg.ResolveAPIKey(),
		BaseURL:          cfg.GroqBaseURL,
		DefaultModel:     cfg.DefaultModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderGroq, ProviderOpenAI, "":
		// Groq speaks the OpenAI wire protocol; "openai" selects the same
		// client pointed at whatever BaseURL is configured.
		return NewGroq(f.APIKey, f.BaseURL, f.DefaultModel), nil
	case ProviderYandex:
		if f.YandexOAuthToken == "" || f.YandexFolderID == "" {
			return nil, fmt.Errorf("yandex provider requires oauth token and folder id")
		}
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
