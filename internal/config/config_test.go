package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("QUIZ_PRIMARY__ENV", "local")
	t.Setenv("QUIZ_DATABASE__HOST", "localhost")
	t.Setenv("QUIZ_DATABASE__USER", "quiz")
	t.Setenv("QUIZ_DATABASE__PASSWORD", "secret")
	t.Setenv("QUIZ_DATABASE__NAME", "quiz")
	t.Setenv("QUIZ_REDIS__ADDRESS", "localhost:6379")
	t.Setenv("QUIZ_AUTH__SECRET_KEY", "0123456789abcdef0123")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day access ttl, got %s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.JWTAlgorithm != "HS256" {
		t.Fatalf("expected HS256, got %s", cfg.Auth.JWTAlgorithm)
	}
	if cfg.Redis.EmailQueue != "email" {
		t.Fatalf("expected email queue, got %s", cfg.Redis.EmailQueue)
	}
	if cfg.Observability == nil {
		t.Fatal("expected observability defaults")
	}
	if cfg.Observability.ServiceName != "quiz-api" {
		t.Fatalf("expected service name quiz-api, got %s", cfg.Observability.ServiceName)
	}
	if cfg.Observability.Environment != "local" {
		t.Fatalf("expected environment to follow primary.env, got %s", cfg.Observability.Environment)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QUIZ_SERVER__PORT", "9000")
	t.Setenv("QUIZ_SERVER__CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("QUIZ_AUTH__ACCESS_TOKEN_TTL", "15m")
	t.Setenv("QUIZ_OAUTH__GITHUB__CLIENT_ID", "gh-id")
	t.Setenv("QUIZ_OBSERVABILITY__LOGGING__LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port 9000, got %q", cfg.Server.Port)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 2 || cfg.Server.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.Server.CORSAllowedOrigins)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m, got %s", cfg.Auth.AccessTokenTTL)
	}
	if cfg.OAuth.GitHub.ClientID != "gh-id" {
		t.Fatalf("expected github client id, got %q", cfg.OAuth.GitHub.ClientID)
	}
	if cfg.OAuth.GitHub.Enabled() {
		t.Fatal("github provider without secret must not be enabled")
	}
	if cfg.Observability.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %s", cfg.Observability.Logging.Level)
	}
	if cfg.Observability.Logging.Format != "json" {
		t.Fatalf("expected default format kept, got %s", cfg.Observability.Logging.Format)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "short secret",
			env:     map[string]string{"QUIZ_AUTH__SECRET_KEY": "short"},
			wantErr: "config validation failed",
		},
		{
			name:    "unknown algorithm",
			env:     map[string]string{"QUIZ_AUTH__JWT_ALGORITHM": "RS256"},
			wantErr: "config validation failed",
		},
		{
			name:    "resend without key",
			env:     map[string]string{"QUIZ_EMAIL__PROVIDER": "resend"},
			wantErr: "resend_api_key",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"QUIZ_OBSERVABILITY__LOGGING__LEVEL": "verbose"},
			wantErr: "invalid logging level",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey("QUIZ_OAUTH__GOOGLE__CLIENT_SECRET"); got != "oauth.google.client_secret" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestGetLogLevel(t *testing.T) {
	c := DefaultObservabilityConfig()
	c.Logging.Level = ""
	c.Environment = "production"
	if got := c.GetLogLevel(); got != "info" {
		t.Fatalf("expected info, got %s", got)
	}
	c.Environment = "development"
	if got := c.GetLogLevel(); got != "debug" {
		t.Fatalf("expected debug, got %s", got)
	}
}
