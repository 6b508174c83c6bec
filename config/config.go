// Package config provides typed configuration loading for the Iron Brothers server.
package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration structure for the Iron Brothers server.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Media    MediaConfig    `yaml:"media"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// ServerConfig contains HTTP/WebSocket server settings.
type ServerConfig struct {
	Listen           string   `yaml:"listen"`
	APIPrefix        string   `yaml:"api_prefix"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	UseXForwardedFor bool     `yaml:"use_x_forwarded_for"`
	ReadTimeout      int      `yaml:"read_timeout"`
	WriteTimeout     int      `yaml:"write_timeout"`
	IdleTimeout      int      `yaml:"idle_timeout"`
	ShutdownTimeout  int      `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Name            string `yaml:"name"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
	SQLTimeout      int    `yaml:"sql_timeout"`
	EncryptionKey   string `yaml:"encryption_key"`
}

// DSN returns a PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.SQLTimeout,
	)
}

// RedisConfig contains Redis settings for refresh-token records,
// presence and council pub/sub.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	NodeID   string `yaml:"node_id"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	// HMAC key for session/refresh tokens, base64
	TokenKey string `yaml:"token_key"`
	// Key for group invite tokens, base64 (falls back to TokenKey)
	InviteKey string `yaml:"invite_key"`
	// Session cookie lifetime in seconds
	SessionExpireIn int `yaml:"session_expire_in"`
	// Refresh cookie lifetime in seconds
	RefreshExpireIn int `yaml:"refresh_expire_in"`
	// Set Secure on auth cookies (disable for local development only)
	SecureCookies     bool `yaml:"secure_cookies"`
	MinPasswordLength int  `yaml:"min_password_length"`
	// Login/register attempts allowed per IP per minute
	LoginRateLimit int `yaml:"login_rate_limit"`
}

// EmailConfig contains SMTP settings for group invites.
type EmailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from_name"`
	BaseURL  string `yaml:"base_url"`
}

// MediaConfig contains avatar upload settings.
type MediaConfig struct {
	MaxSize   int64  `yaml:"max_size"`
	UploadDir string `yaml:"upload_dir"`
}

// LimitsConfig contains domain limits.
type LimitsConfig struct {
	// Maximum council chat message length in grapheme clusters
	MaxMessageGraphemes int `yaml:"max_message_graphemes"`
	// Maximum members per group
	MaxGroupSize int `yaml:"max_group_size"`
	// Days before a finished secondary mission may be regenerated
	SecondaryCooldownDays int `yaml:"secondary_cooldown_days"`
	// Council chat history page size
	ChatHistoryLimit int `yaml:"chat_history_limit"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars expands ${VAR} and ${VAR:default} patterns in the config.
func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		parts := re.FindStringSubmatch(match)
		envVar := parts[1]
		defaultVal := ""
		if len(parts) > 2 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(envVar); val != "" {
			return val
		}
		return defaultVal
	})
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.APIPrefix == "" {
		c.Server.APIPrefix = "/api/v1"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.Name == "" {
		c.Database.Name = "ironbrothers"
	}
	if c.Database.User == "" {
		c.Database.User = "postgres"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 50
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 50
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 60
	}
	if c.Database.SQLTimeout == 0 {
		c.Database.SQLTimeout = 10
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.Auth.SessionExpireIn == 0 {
		c.Auth.SessionExpireIn = 900 // 15 minutes
	}
	if c.Auth.RefreshExpireIn == 0 {
		c.Auth.RefreshExpireIn = 1209600 // 2 weeks
	}
	if c.Auth.MinPasswordLength == 0 {
		c.Auth.MinPasswordLength = 8
	}
	if c.Auth.LoginRateLimit == 0 {
		c.Auth.LoginRateLimit = 10
	}
	if c.Auth.InviteKey == "" {
		c.Auth.InviteKey = c.Auth.TokenKey
	}

	if c.Media.MaxSize == 0 {
		c.Media.MaxSize = 4194304 // 4MB
	}
	if c.Media.UploadDir == "" {
		c.Media.UploadDir = "./avatars"
	}

	if c.Limits.MaxMessageGraphemes == 0 {
		c.Limits.MaxMessageGraphemes = 1024
	}
	if c.Limits.MaxGroupSize == 0 {
		c.Limits.MaxGroupSize = 12
	}
	if c.Limits.SecondaryCooldownDays == 0 {
		c.Limits.SecondaryCooldownDays = 7
	}
	if c.Limits.ChatHistoryLimit == 0 {
		c.Limits.ChatHistoryLimit = 50
	}
}

// validate checks that required fields are set.
func (c *Config) validate() error {
	if c.Auth.TokenKey == "" {
		return fmt.Errorf("auth.token_key is required")
	}
	if c.Database.EncryptionKey == "" {
		return fmt.Errorf("database.encryption_key is required")
	}
	if c.Redis.Enabled && c.Redis.NodeID == "" {
		return fmt.Errorf("redis.node_id is required when redis is enabled")
	}
	return nil
}
