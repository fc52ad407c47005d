package config

import "github.com/ilyakaznacheev/cleanenv"

type Config struct {
	// BackendURL is the fixed address of the ingestion backend.
	BackendURL        string `env:"BACKEND_URL" env-default:"http://localhost:8000"`
	MeetingType       string `env:"MEETING_TYPE" env-default:"team_meeting"`
	TitlePrefix       string `env:"TITLE_PREFIX" env-default:"Tab Recording"`
	ChunkIntervalMS   int    `env:"CHUNK_INTERVAL_MS" env-default:"1000"`
	UploadTimeoutSec  int    `env:"UPLOAD_TIMEOUT_SEC" env-default:"120"`
	OffscreenRecorder bool   `env:"OFFSCREEN_RECORDER" env-default:"true"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read environment variables: " + err.Error())
	}
	return &cfg
}
