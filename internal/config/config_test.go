package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("SMARTAIR_TEST_KEY", "secret")
	os.Unsetenv("SMARTAIR_TEST_MISSING")

	tests := []struct {
		in, want string
	}{
		{`{"k":"${SMARTAIR_TEST_KEY}"}`, `{"k":"secret"}`},
		{`{"k":"$SMARTAIR_TEST_KEY"}`, `{"k":"secret"}`},
		{`{"k":"${SMARTAIR_TEST_MISSING}"}`, `{"k":"${SMARTAIR_TEST_MISSING}"}`},
		{`{"k":"plain"}`, `{"k":"plain"}`},
	}

	for _, tc := range tests {
		if got := ExpandEnv(tc.in); got != tc.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	if !IsPlaceholder("${GEMINI_API_KEY}") {
		t.Error("expected unresolved placeholder to be detected")
	}
	if IsPlaceholder("AIza-real-key") {
		t.Error("plain key must not be treated as placeholder")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.json"))
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Load()

	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected default cors origins, got %v", cfg.CORSOrigins)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected port 8000, got %q", cfg.Port)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("expected empty api key, got %q", cfg.GeminiAPIKey)
	}
	if cfg.StatusPolicy != "open" || cfg.Store != "memory" {
		t.Errorf("unexpected defaults: policy=%q store=%q", cfg.StatusPolicy, cfg.Store)
	}
}

func TestLoad_MalformedFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg := Load()
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected default cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_ExpandsPlaceholders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"cors_origins":["https://smartair.space"],"gemini_api_key":"${SMARTAIR_KEY}","chat_rate_limit":0}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SMARTAIR_KEY", "abc123")

	cfg := Load()
	if cfg.GeminiAPIKey != "abc123" {
		t.Errorf("expected expanded key, got %q", cfg.GeminiAPIKey)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "https://smartair.space" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.ChatRateLimit != 0 {
		t.Errorf("expected rate limit disabled, got %d", cfg.ChatRateLimit)
	}
}
