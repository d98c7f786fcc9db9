package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Backend selects the assistant service implementation.
type Backend string

const (
	BackendMock      Backend = "mock"
	BackendGeminiAPI Backend = "gemini-api"
	BackendVertex    Backend = "vertex"
)

type Config struct {
	Backend Backend `yaml:"backend"`

	APIKey      string `yaml:"api_key"`
	GCPProject  string `yaml:"gcp_project"`
	GCPLocation string `yaml:"gcp_location"`

	TextModel string `yaml:"text_model"`
	TTSModel  string `yaml:"tts_model"`
	LiveModel string `yaml:"live_model"`

	Persona        string `yaml:"persona"`
	CaptionSeconds int    `yaml:"caption_seconds"`
}

func defaults() *Config {
	return &Config{
		Backend:        BackendMock,
		GCPLocation:    "us-central1",
		Persona:        "Kore",
		CaptionSeconds: 5,
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lyra", "config.yml")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load builds the config in three layers: defaults, then the yaml file (a
// missing file is fine), then LYRA_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults apply
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg.Backend = Backend(getEnv("LYRA_BACKEND", string(cfg.Backend)))
	cfg.APIKey = getEnv("LYRA_API_KEY", cfg.APIKey)
	cfg.GCPProject = getEnv("LYRA_GCP_PROJECT", cfg.GCPProject)
	cfg.GCPLocation = getEnv("LYRA_GCP_LOCATION", cfg.GCPLocation)
	cfg.TextModel = getEnv("LYRA_TEXT_MODEL", cfg.TextModel)
	cfg.TTSModel = getEnv("LYRA_TTS_MODEL", cfg.TTSModel)
	cfg.LiveModel = getEnv("LYRA_LIVE_MODEL", cfg.LiveModel)
	cfg.Persona = getEnv("LYRA_PERSONA", cfg.Persona)
	cfg.CaptionSeconds = getIntEnv("LYRA_CAPTION_SECONDS", cfg.CaptionSeconds)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMock:
	case BackendGeminiAPI:
		if c.APIKey == "" {
			return fmt.Errorf("backend %q requires LYRA_API_KEY or api_key", c.Backend)
		}
	case BackendVertex:
		if c.GCPProject == "" {
			return fmt.Errorf("backend %q requires LYRA_GCP_PROJECT or gcp_project", c.Backend)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.CaptionSeconds <= 0 {
		return fmt.Errorf("caption_seconds must be positive, got %d", c.CaptionSeconds)
	}
	return nil
}
