// Package config collects worker configuration from the environment
// and validates it before anything connects.
package config

import (
	"fmt"

	"github.com/go-playground/validator"

	"github.com/archivelab/vault/internal/util"
)

// Config is the validated worker configuration.
type Config struct {
	DatabaseURL string `validate:"required,url"`

	RabbitMQUser     string `validate:"required"`
	RabbitMQPassword string `validate:"required"`
	RabbitMQHost     string `validate:"required"`
	RabbitMQPort     string `validate:"required"`

	// AIProvider selects the analysis backend: openai, grok, ollama
	// or none.
	AIProvider string `validate:"oneof=openai grok ollama none"`
	AIModel    string
	AIKey      string
	AIBaseURL  string

	// ModelsDir caches downloaded NER models; empty disables the
	// local extraction path.
	ModelsDir string

	Concurrency int `validate:"gte=1"`
	Debug       bool
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: util.GetEnv("DATABASE_URL"),

		RabbitMQUser:     util.GetEnv("RABBITMQ_USER"),
		RabbitMQPassword: util.GetEnv("RABBITMQ_PASSWORD"),
		RabbitMQHost:     util.GetEnv("RABBITMQ_HOST"),
		RabbitMQPort:     util.GetEnv("RABBITMQ_PORT"),

		AIProvider: util.GetEnvString("AI_PROVIDER", "none"),
		AIModel:    util.GetEnv("AI_MODEL"),
		AIKey:      util.GetEnv("AI_KEY"),
		AIBaseURL:  util.GetEnv("AI_BASE_URL"),

		ModelsDir: util.GetEnv("MODELS_DIR"),

		Concurrency: util.GetEnvInt("WORKER_CONCURRENCY", 4),
		Debug:       util.GetEnvBool("DEBUG", false),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
