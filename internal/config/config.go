package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// PlaceholderAPIKey is the last-resort key value. Shipping it to production
// is a deployment mistake; ResolveAPIKey logs loudly when it is used.
const PlaceholderAPIKey = "gsk_YOUR_API_KEY_HERE_REPLACE_THIS_PLACEHOLDER"

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// LLM settings
	LLMProvider      string `env:"LLM_PROVIDER" envDefault:"groq"`
	GroqAPIKey       string `env:"GROQ_API_KEY"`
	GroqBaseURL      string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	DefaultModel     string `env:"DEFAULT_MODEL" envDefault:"llama-3.1-8b-instant"`
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// Storage
	UsersFilePath   string `env:"USERS_FILE_PATH" envDefault:"data/users.json"`
	SecretsFilePath string `env:"SECRETS_FILE_PATH" envDefault:"data/secrets.env"`

	// Guest cleanup
	ReapCronSpec    string `env:"REAP_CRON" envDefault:"@every 10m"`
	ReapSampleEvery int    `env:"REAP_SAMPLE_EVERY" envDefault:"10"`

	DevMode bool `env:"DEV_MODE" envDefault:"false"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// ResolveAPIKey returns the Groq API key with the documented precedence:
// environment variable, then the secrets file, then the placeholder.
func (c *Config) ResolveAPIKey() string {
	if c.GroqAPIKey != "" {
		return c.GroqAPIKey
	}
	if c.SecretsFilePath != "" {
		if secrets, err := godotenv.Read(c.SecretsFilePath); err == nil {
			if key := secrets["GROQ_API_KEY"]; key != "" {
				return key
			}
		}
	}
	log.Printf("WARNING: using placeholder API key; set GROQ_API_KEY for production")
	return PlaceholderAPIKey
}
