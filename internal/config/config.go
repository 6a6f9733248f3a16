package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Result storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Server struct {
		Port         string   `yaml:"port"`
		ReadTimeout  string   `yaml:"read_timeout"`
		WriteTimeout string   `yaml:"write_timeout"`
		CORSOrigins  []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	RabbitMQ struct {
		URL   string `yaml:"url"`
		Queue string `yaml:"queue"`
	} `yaml:"rabbitmq"`
	Results struct {
		Backend         string `yaml:"backend"`
		LeaderboardSize int    `yaml:"leaderboard_size"`
		MaxLeaderboard  int    `yaml:"max_leaderboard"`
	} `yaml:"results"`
	Log struct {
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"log"`
}

// Load reads YAML config from path, applies environment overrides and
// fills defaults. A missing file is not an error; env and defaults still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}
	switch c.Results.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return errors.New("results backend postgres needs postgres.url")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("results backend redis needs redis.addr")
		}
	default:
		return fmt.Errorf("unknown results backend %q", c.Results.Backend)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Auth.Issuer, "JWT_ISSUER")
	setString(&cfg.Postgres.URL, "POSTGRES_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.RabbitMQ.URL, "RABBITMQ_URL")
	setString(&cfg.Results.Backend, "RESULTS_BACKEND")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Dir, "LOG_DIR")
	if v, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		cfg.Redis.DB = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Results.Backend == "" {
		switch {
		case cfg.Postgres.URL != "":
			cfg.Results.Backend = BackendPostgres
		case cfg.Redis.Addr != "":
			cfg.Results.Backend = BackendRedis
		default:
			cfg.Results.Backend = BackendMemory
		}
	}
	if cfg.Results.LeaderboardSize <= 0 {
		cfg.Results.LeaderboardSize = 10
	}
	if cfg.Results.MaxLeaderboard <= 0 {
		cfg.Results.MaxLeaderboard = 100
	}
	if cfg.RabbitMQ.Queue == "" {
		cfg.RabbitMQ.Queue = "quiz.results"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
