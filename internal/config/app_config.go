package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/shaharia-lab/emailnotify/internal/notification"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// ConfigFile is an optional YAML file holding the relay settings
	// (smtp_host, smtp_port, smtp_from, ...). Environment variables win over it.
	ConfigFile string `envconfig:"EMAILNOTIFY_CONFIG"`

	// DataDir is the root data directory. Defaults to ~/.emailnotify.
	DataDir string `envconfig:"EMAILNOTIFY_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogStderr also writes logs to stderr, next to the rotated log file.
	LogStderr bool `envconfig:"LOG_STDERR" default:"false"`

	// Relay selects the outbound mail relay: "smtp" (default) or "gmail".
	Relay string `envconfig:"MAIL_RELAY" default:"smtp"`

	SMTPHost       string        `envconfig:"SMTP_HOST"`
	SMTPPort       int           `envconfig:"SMTP_PORT"`
	SMTPFrom       string        `envconfig:"SMTP_FROM"`
	SMTPUsername   string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword   string        `envconfig:"SMTP_PASSWORD"`
	SMTPEncryption string        `envconfig:"SMTP_ENCRYPTION"`
	SMTPTimeout    time.Duration `envconfig:"SMTP_TIMEOUT"`

	GmailClientID     string `envconfig:"GMAIL_CLIENT_ID"`
	GmailClientSecret string `envconfig:"GMAIL_CLIENT_SECRET"`
	GmailTokenFile    string `envconfig:"GMAIL_TOKEN_FILE"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// QueueKey is the Redis list requests are read from.
	QueueKey string `envconfig:"QUEUE_KEY" default:"emailnotify"`

	// Workers is the number of requests processed concurrently.
	Workers int `envconfig:"WORKERS" default:"1"`

	// HTTPPort serves /health, /metrics and the status API. 0 disables it.
	HTTPPort int `envconfig:"HTTP_PORT" default:"9108"`

	// StatusRetention is how long status log entries are kept.
	StatusRetention time.Duration `envconfig:"STATUS_RETENTION" default:"168h"`
}

// Load reads AppConfig from environment variables using envconfig, then
// fills relay settings the environment left empty from ConfigFile.
// DataDir defaults to ~/.emailnotify if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".emailnotify")
	}

	if c.ConfigFile != "" {
		rf, err := LoadRelayFile(c.ConfigFile)
		if err != nil {
			return nil, err
		}
		c.applyRelayFile(rf)
	}

	if c.SMTPPort == 0 {
		c.SMTPPort = notification.DefaultSMTPPort
	}
	if c.SMTPTimeout == 0 {
		c.SMTPTimeout = notification.DefaultSendTimeout
	}
	return &c, nil
}

func (c *AppConfig) applyRelayFile(rf *RelayFile) {
	if c.SMTPHost == "" {
		c.SMTPHost = rf.SMTPHost
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = rf.SMTPPort
	}
	if c.SMTPFrom == "" {
		c.SMTPFrom = rf.SMTPFrom
	}
	if c.SMTPUsername == "" {
		c.SMTPUsername = rf.SMTPUsername
	}
	if c.SMTPPassword == "" {
		c.SMTPPassword = rf.SMTPPassword
	}
	if c.SMTPEncryption == "" {
		c.SMTPEncryption = rf.SMTPEncryption
	}
	if c.SMTPTimeout == 0 {
		c.SMTPTimeout = rf.SMTPTimeout
	}
}

// ValidateRelay reports the relay settings the worker cannot run without.
func (c *AppConfig) ValidateRelay() error {
	if c.SMTPFrom == "" {
		return fmt.Errorf("sender address is not configured (SMTP_FROM or smtp_from)")
	}
	switch c.Relay {
	case notification.RelaySMTP, "":
		if c.SMTPHost == "" {
			return fmt.Errorf("smtp host is not configured (SMTP_HOST or smtp_host)")
		}
		if c.SMTPPort < 1 || c.SMTPPort > 65535 {
			return fmt.Errorf("smtp port %d out of range", c.SMTPPort)
		}
	case notification.RelayGmail:
		if c.GmailTokenFile == "" {
			return fmt.Errorf("gmail relay requires GMAIL_TOKEN_FILE")
		}
		if c.GmailClientID == "" || c.GmailClientSecret == "" {
			return fmt.Errorf("gmail relay requires GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET")
		}
	default:
		return fmt.Errorf("unknown mail relay %q (want smtp or gmail)", c.Relay)
	}
	return nil
}

// Gmail returns the Gmail relay settings.
func (c *AppConfig) Gmail() notification.GmailConfig {
	return notification.GmailConfig{
		ClientID:     c.GmailClientID,
		ClientSecret: c.GmailClientSecret,
		TokenFile:    c.GmailTokenFile,
	}
}

// SMTP returns the relay settings as a notification.SMTPConfig.
func (c *AppConfig) SMTP() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:       c.SMTPHost,
		Port:       c.SMTPPort,
		FromAddr:   c.SMTPFrom,
		Username:   c.SMTPUsername,
		Password:   c.SMTPPassword,
		Encryption: c.SMTPEncryption,
		Timeout:    c.SMTPTimeout,
	}
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (~/.emailnotify/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DatabasePath returns the path to the status log database.
func (c *AppConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "emailnotify.db")
}
