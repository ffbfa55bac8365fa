package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// BotConfig holds chat-platform API credentials.
type BotConfig struct {
	AppID     string `yaml:"app_id"`
	AppSecret string `yaml:"app_secret"`
	BaseURL   string `yaml:"base_url"`
}

// WebhookConfig holds the HTTP front end listen settings.
type WebhookConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// SessionConfig holds session broker settings.
type SessionConfig struct {
	StorageFile            string `yaml:"storage_file"`
	TokenLength            int    `yaml:"token_length"`
	ExpirationHours        int    `yaml:"expiration_hours"`
	CleanupIntervalMinutes int    `yaml:"cleanup_interval_minutes"`
	MaxSessionsPerOwner    int    `yaml:"max_sessions_per_owner"`
}

// SecurityConfig holds the whitelist location and command limits.
type SecurityConfig struct {
	WhitelistFile    string `yaml:"whitelist_file"`
	MaxCommandLength int    `yaml:"max_command_length"`
}

// HistoryConfig holds the execution history settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// LoggingConfig holds the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AgentConfig holds the one-shot CLI agent settings.
type AgentConfig struct {
	Binary string `yaml:"binary"`
}

// Config is the full service configuration, loaded from YAML with
// environment overrides.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Session  SessionConfig  `yaml:"session"`
	Security SecurityConfig `yaml:"security"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
	Agent    AgentConfig    `yaml:"agent"`
}

// DefaultConfig returns the configuration used when no file or
// overrides are present.
func DefaultConfig() Config {
	return Config{
		Webhook: WebhookConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Session: SessionConfig{
			StorageFile:            "data/sessions.json",
			TokenLength:            DefaultTokenLength,
			ExpirationHours:        24,
			CleanupIntervalMinutes: 60,
		},
		Security: SecurityConfig{
			WhitelistFile:    "configs/security/whitelist.yaml",
			MaxCommandLength: DefaultMaxCommandLength,
		},
		History: HistoryConfig{
			Enabled: true,
			File:    "data/history.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Agent: AgentConfig{
			Binary: "claude",
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, expands
// ${VAR} references in string values, then applies environment
// overrides. A missing file is not an error; the defaults plus the
// environment apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.Bot.AppID = resolveEnvRef(cfg.Bot.AppID)
	cfg.Bot.AppSecret = resolveEnvRef(cfg.Bot.AppSecret)
	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CHATRELAY_APP_ID"); v != "" {
		c.Bot.AppID = v
	}
	if v := os.Getenv("CHATRELAY_APP_SECRET"); v != "" {
		c.Bot.AppSecret = v
	}
	if v := os.Getenv("CHATRELAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Webhook.Port = port
		}
	}
	if v := os.Getenv("CHATRELAY_STORAGE_FILE"); v != "" {
		c.Session.StorageFile = v
	}
	if v := os.Getenv("CHATRELAY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// resolveEnvRef expands a value of the form ${VAR} from the
// environment, leaving the literal in place when the variable is
// unset.
func resolveEnvRef(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		name := value[2 : len(value)-1]
		if resolved := os.Getenv(name); resolved != "" {
			return resolved
		}
	}
	return value
}
