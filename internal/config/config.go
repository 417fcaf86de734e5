package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port        string
	CORSOrigins []string

	// Gemini AI
	GeminiAPIKey  string
	GeminiModel   string
	PersonaPath   string
	ChatRateLimit int

	// SMTP
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string
	NotifyEmail string

	// Reservations
	StatusPolicy string
	Store        string
	RedisURL     string
	DatabaseURL  string
}

// fileConfig mirrors the JSON layout of config.json.
type fileConfig struct {
	Port          string   `json:"port"`
	CORSOrigins   []string `json:"cors_origins"`
	GeminiAPIKey  string   `json:"gemini_api_key"`
	GeminiModel   string   `json:"gemini_model"`
	PersonaPath   string   `json:"persona_path"`
	ChatRateLimit *int     `json:"chat_rate_limit"`
	NotifyEmail   string   `json:"notify_email"`
	StatusPolicy  string   `json:"status_policy"`
	Store         string   `json:"store"`
	RedisURL      string   `json:"redis_url"`
	DatabaseURL   string   `json:"database_url"`
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	path := getEnvOrDefault("CONFIG_PATH", "config.json")
	fc := readFile(path)

	cfg := &Config{
		Port:          firstNonEmpty(os.Getenv("PORT"), fc.Port, "8000"),
		CORSOrigins:   fc.CORSOrigins,
		GeminiAPIKey:  firstNonEmpty(fc.GeminiAPIKey, os.Getenv("GEMINI_API_KEY")),
		GeminiModel:   firstNonEmpty(fc.GeminiModel, getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash")),
		PersonaPath:   firstNonEmpty(fc.PersonaPath, os.Getenv("PERSONA_PATH")),
		ChatRateLimit: getEnvAsIntOrDefault("CHAT_RATE_LIMIT", 20),
		SMTPHost:      getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort:      getEnvOrDefault("SMTP_PORT", "587"),
		SMTPUser:      getEnvOrDefault("SMTP_USER", ""),
		SMTPPass:      getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom:      getEnvOrDefault("SMTP_FROM", "noreply@smartair.space"),
		NotifyEmail:   firstNonEmpty(fc.NotifyEmail, os.Getenv("NOTIFY_EMAIL")),
		StatusPolicy:  firstNonEmpty(fc.StatusPolicy, getEnvOrDefault("STATUS_POLICY", "open")),
		Store:         firstNonEmpty(fc.Store, getEnvOrDefault("STORE", "memory")),
		RedisURL:      firstNonEmpty(fc.RedisURL, os.Getenv("REDIS_URL")),
		DatabaseURL:   firstNonEmpty(fc.DatabaseURL, os.Getenv("DATABASE_URL")),
	}
	if fc.ChatRateLimit != nil {
		cfg.ChatRateLimit = *fc.ChatRateLimit
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}

	return cfg
}

// readFile returns the parsed config file, or an empty one when the file is
// missing or malformed.
func readFile(path string) fileConfig {
	var fc fileConfig

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("config: cannot read %s: %v", path, err)
		}
		return fc
	}

	if err := json.Unmarshal([]byte(ExpandEnv(string(raw))), &fc); err != nil {
		log.Printf("config: ignoring malformed %s: %v", path, err)
		return fileConfig{}
	}
	return fc
}

// ExpandEnv replaces $VAR and ${VAR} with environment values. Unset variables
// are left as written so callers can tell an unresolved placeholder from an
// empty value.
func ExpandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return "${" + name + "}"
	})
}

// IsPlaceholder reports whether s still looks like an unexpanded ${VAR}.
func IsPlaceholder(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
