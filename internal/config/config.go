package config

import (
	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Storage StorageConfig
	Status  StatusConfig
	Log     LogConfig
}

// ServerConfig configures the local facade server.
type ServerConfig struct {
	Port int
}

// BackendConfig points at the remote DocuMind API.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type StorageConfig struct {
	DataDir string
}

// StatusConfig controls the health poll.
type StatusConfig struct {
	PollSeconds int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4200,
		},
		Backend: BackendConfig{
			BaseURL:        "http://127.0.0.1:5001",
			TimeoutSeconds: 30,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Status: StatusConfig{
			PollSeconds: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/documind/config.json, a .env file in the working
// directory if present, and DOCUMIND_* environment variables. Environment
// variables override file values.
func Load() (Config, error) {
	// A missing .env file is the normal case.
	_ = godotenv.Load()
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}
