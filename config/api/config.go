package config

import "github.com/ilyakaznacheev/cleanenv"

type Config struct {
	Port         int    `env:"PORT" env-default:"8000"`
	DatabaseURL  string `env:"DATABASE_URL"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	UploadDir    string `env:"UPLOAD_DIR" env-default:"uploads"`
	Ingest       IngestConfig
}

type IngestConfig struct {
	Dir           string `env:"BOT_RECORDINGS_DIR" env-default:"bot_recordings"`
	Enabled       bool   `env:"INGEST_ENABLED" env-default:"true"`
	MaxConcurrent int    `env:"INGEST_MAX_CONCURRENT" env-default:"2"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read environment variables: " + err.Error())
	}
	return &cfg
}
