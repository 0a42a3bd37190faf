package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Store.Driver != DriverSQLite || cfg.Auth.JWTAlgorithm != "HS256" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != time.Hour || cfg.Redis.RankingCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected durations: %v %v", cfg.Auth.TokenTTL, cfg.Redis.RankingCacheTTL)
	}
	if cfg.Redis.Enabled() || cfg.Activity.AMQPURL != "" {
		t.Fatalf("optional backends should be off by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":       "s3cret",
		"JWT_ALGORITHM":    "HS512",
		"TOKEN_TTL":        "30m",
		"STORE_DRIVER":     "mysql",
		"REDIS_URL":        "redis://localhost:6379/1",
		"ACTIVITY_WORKERS": "8",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute || cfg.Store.Driver != DriverMySQL || !cfg.Redis.Enabled() || cfg.Activity.Workers != 8 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {},
		"bad driver":     {"JWT_SECRET": "x", "STORE_DRIVER": "postgres"},
		"bad algorithm":  {"JWT_SECRET": "x", "JWT_ALGORITHM": "RS256"},
		"bad ttl":        {"JWT_SECRET": "x", "TOKEN_TTL": "-1h"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			if err == nil || !strings.HasPrefix(err.Error(), "config:") {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
}
