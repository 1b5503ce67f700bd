package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// The key is optional here: it is only demanded when a step that
	// calls the text-generation API is requested.
	OpenAIKey string `env:"OPENAI_API_KEY"`
	Model     string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	APIBase   string `env:"OPENAI_API_BASE"`

	MaxFetchBytes int  `env:"COACH_MAX_FETCH_BYTES" envDefault:"65536"`
	Debug         bool `env:"DEBUG" envDefault:"false"`
}

// Load reads configuration from the environment, after merging a local
// .env file if present. Values already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
