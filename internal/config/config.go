// Package config loads application configuration from a YAML file with
// environment variable overrides. The resulting Config struct is passed to
// every component at construction; nothing in the application reads
// configuration from process globals.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable the server needs.
type Config struct {
	Environment string `mapstructure:"environment"`
	ClientURL   string `mapstructure:"client_url"`

	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Auth   AuthConfig   `mapstructure:"auth"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MongoConfig configures the document store connection.
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// AuthConfig configures session minting and action token lifetimes.
type AuthConfig struct {
	SigningKey      string        `mapstructure:"signing_key"`
	Issuer          string        `mapstructure:"issuer"`
	SessionDuration time.Duration `mapstructure:"session_duration"`
	VerificationTTL time.Duration `mapstructure:"verification_ttl"`
	ResetTTL        time.Duration `mapstructure:"reset_ttl"`
}

// SMTPConfig configures the mail delivery collaborator.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	ReplyTo  string `mapstructure:"reply_to"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode. It gates
// the Secure flag on session cookies and the log formatter.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads configuration from the given file, if any, applying TRIPLOG_*
// environment overrides on top. A missing file is not an error as long as the
// environment provides the required values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("environment", "development")
	v.SetDefault("client_url", "http://localhost:3000")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "triplog")
	v.SetDefault("auth.issuer", "triplog")
	v.SetDefault("auth.session_duration", 30*24*time.Hour)
	v.SetDefault("auth.verification_ttl", 24*time.Hour)
	v.SetDefault("auth.reset_ttl", time.Hour)
	v.SetDefault("smtp.port", 587)

	// Keys without a meaningful default still need registering so that
	// environment overrides survive Unmarshal.
	for _, key := range []string{
		"auth.signing_key",
		"smtp.host", "smtp.username", "smtp.password",
		"smtp.from", "smtp.reply_to",
	} {
		v.SetDefault(key, "")
	}

	v.SetEnvPrefix("TRIPLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Auth.SigningKey == "" {
		return nil, fmt.Errorf("auth.signing_key is required")
	}

	return cfg, nil
}
