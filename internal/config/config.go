package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends selectable with STORE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

// Config holds the configuration for the application.
type Config struct {
	StoreBackend  string `yaml:"store_backend"`
	DataDir       string `yaml:"data_dir"`
	DatabasePath  string `yaml:"database_path"`
	MetricsDBPath string `yaml:"metrics_db_path"`

	SupabaseURL       string `yaml:"supabase_url"`
	SupabaseAnonKey   string `yaml:"supabase_anon_key"`
	SupabaseJWTSecret string `yaml:"supabase_jwt_secret"`
	PostgresDSN       string `yaml:"postgres_dsn"`

	GeminiAPIKey string `yaml:"gemini_api_key"`
	GroqAPIKey   string `yaml:"groq_api_key"`

	// Telegram Config
	TelegramBotToken       string  `yaml:"telegram_bot_token"`
	TelegramWebhookURL     string  `yaml:"telegram_webhook_url"`
	TelegramAllowedUserIDs []int64 `yaml:"telegram_allowed_user_ids"`
	AdminTelegramID        int64   `yaml:"admin_telegram_id"`

	Port        string        `yaml:"port"`
	DefaultUnit string        `yaml:"default_unit"`
	LogLevel    string        `yaml:"log_level"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Load reads a .env file from the working directory when there is one and
// then builds the Config with NewFromEnv.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return NewFromEnv()
}

// NewFromEnv creates a new Config object from environment variables. When
// CHEFMATE_CONFIG names a YAML file its values are read first and environment
// variables override them.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		StoreBackend: BackendSQLite,
		DataDir:      "data",
		Port:         "8080",
		DefaultUnit:  "db",
		LogLevel:     "info",
		HTTPTimeout:  15 * time.Second,
	}

	if path := os.Getenv("CHEFMATE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.DataDir, "DATA_DIR")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.MetricsDBPath, "METRICS_DB_PATH")
	setString(&cfg.SupabaseURL, "SUPABASE_URL")
	setString(&cfg.SupabaseAnonKey, "SUPABASE_ANON_KEY")
	setString(&cfg.SupabaseJWTSecret, "SUPABASE_JWT_SECRET")
	setString(&cfg.PostgresDSN, "POSTGRES_DSN")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GroqAPIKey, "GROQ_API_KEY")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.TelegramWebhookURL, "TELEGRAM_WEBHOOK_URL")
	setString(&cfg.Port, "PORT")
	setString(&cfg.DefaultUnit, "DEFAULT_UNIT")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
		}
		cfg.TelegramAllowedUserIDs = ids
	}
	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
		cfg.AdminTelegramID = id
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.SupabaseURL = strings.TrimRight(firstToken(cfg.SupabaseURL), "/")
	cfg.SupabaseAnonKey = firstToken(cfg.SupabaseAnonKey)

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDir, "chefmate.db")
	}
	if cfg.MetricsDBPath == "" {
		cfg.MetricsDBPath = filepath.Join(cfg.DataDir, "metrics.db")
	}

	switch cfg.StoreBackend {
	case BackendSQLite, BackendLocal:
	case BackendSupabase:
		if cfg.SupabaseURL == "" {
			return nil, fmt.Errorf("SUPABASE_URL environment variable not set")
		}
		if cfg.SupabaseAnonKey == "" {
			return nil, fmt.Errorf("SUPABASE_ANON_KEY environment variable not set")
		}
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// RequireTelegram reports whether the settings the bot needs are present.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	return nil
}

// IsAllowedUser reports whether a Telegram user may talk to the bot. An empty
// allow list admits everyone.
func (c *Config) IsAllowedUser(id int64) bool {
	if len(c.TelegramAllowedUserIDs) == 0 || id == c.AdminTelegramID {
		return true
	}
	for _, allowed := range c.TelegramAllowedUserIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// firstToken keeps the first whitespace-separated token of s. Pasted keys
// often carry a trailing comment or a second value.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSpace(fields[0])
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
