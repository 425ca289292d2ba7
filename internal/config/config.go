// /internal/config/config.go
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	AIProvider   string `env:"AI_PROVIDER" envDefault:"gemini"`
	AIModel      string `env:"AI_MODEL"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"affection.json"`
}

// New reads the environment and exits if a required secret is missing.
// Nothing should connect anywhere before this passes.
func New() *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		log.Fatal(err)
	}

	switch cfg.AIProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Fatal("GEMINI_API_KEY is not set")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatal("OPENAI_API_KEY is not set")
		}
	case "pollinations":
		// keyless
	default:
		log.Fatalf("unsupported AI_PROVIDER: %s", cfg.AIProvider)
	}

	return &cfg
}
