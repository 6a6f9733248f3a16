package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "JWT_SECRET", "JWT_ISSUER", "POSTGRES_URL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "RABBITMQ_URL", "RESULTS_BACKEND", "LOG_LEVEL", "LOG_DIR"} {
		t.Setenv(key, "")
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
auth:
  jwt_secret: from-file
redis:
  addr: localhost:6379
results:
  leaderboard_size: 25
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("unexpected server/auth config %+v", cfg)
	}
	if cfg.Results.Backend != BackendRedis || cfg.Results.LeaderboardSize != 25 || cfg.Results.MaxLeaderboard != 100 {
		t.Fatalf("unexpected results config %+v", cfg.Results)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Results.Backend != BackendMemory || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing secret to fail validation")
	}
}

func TestValidateBackends(t *testing.T) {
	cfg := Config{}
	cfg.Auth.JWTSecret = "s"
	cfg.Results.Backend = BackendPostgres
	if err := cfg.Validate(); err == nil {
		t.Fatalf("postgres backend without url should fail")
	}
	cfg.Results.Backend = "cassandra"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := Duration("bogus", time.Second); got != time.Second {
		t.Fatalf("expected fallback for invalid, got %v", got)
	}
	if got := Duration("3m", time.Second); got != 3*time.Minute {
		t.Fatalf("expected 3m, got %v", got)
	}
}
