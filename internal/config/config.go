package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// Mode is passed to gin (debug, release, test).
		Mode string `yaml:"mode"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Sets struct {
		TTL string `yaml:"ttl"`
		// Seed is an optional xlsx workbook saved into the set store on start.
		Seed string `yaml:"seed"`
	} `yaml:"sets"`
	Logging Logging `yaml:"logging"`
	Lookup  struct {
		Limit int `yaml:"limit"`
		// Seed is an optional xlsx workbook of lexicon rows for the in-memory lexicon.
		Seed string `yaml:"seed"`
	} `yaml:"lookup"`
	GenAI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"genai"`
	Events struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"events"`
}

// Logging configures the zap logger.
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads YAML config from path. Environment variables override secrets
// and addresses so the same file works across deployments.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GENAI_API_KEY"); v != "" {
		cfg.GenAI.APIKey = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Events.Brokers = strings.Split(v, ",")
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
