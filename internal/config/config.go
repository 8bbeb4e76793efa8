// Package config loads the exselect service configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/exselect-go/pkg/exselect"
)

const (
	// JWTSecretEnv overrides auth.jwt_secret when set.
	JWTSecretEnv = "EXSELECT_JWT_SECRET"
	// VaultPasswordEnv overrides vault.password when set.
	VaultPasswordEnv = "EXSELECT_VAULT_PASSWORD"
)

// User is a login account seeded from the config file.
type User struct {
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

// Config represents the service configuration.
type Config struct {
	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`
	Auth struct {
		JWTSecret        string        `yaml:"jwt_secret"`
		SessionTTL       time.Duration `yaml:"session_ttl"`
		RememberTTL      time.Duration `yaml:"remember_ttl"`
		MinPasswordScore int           `yaml:"min_password_score"` // 0 disables the check
		AllowSignup      bool          `yaml:"allow_signup"`
		Users            []User        `yaml:"users"`
	} `yaml:"auth"`
	Widget struct {
		PageLength   int    `yaml:"page_length"`
		MaxUploadMB  int    `yaml:"max_upload_mb"`
		ExportPrefix string `yaml:"export_prefix"`
		SheetName    string `yaml:"sheet_name"`
	} `yaml:"widget"`
	Vault struct {
		Dir        string `yaml:"dir"`      // empty keeps saved tables in memory
		Password   string `yaml:"password"` // empty disables saving
		Salt       string `yaml:"salt"`
		Iterations int    `yaml:"iterations"`
		KeyLen     int    `yaml:"key_len"`
		Workers    int    `yaml:"workers"`
	} `yaml:"vault"`
	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // text, json
	} `yaml:"log"`
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			var tempCfg Config
			if err := yaml.Unmarshal(data, &tempCfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
			merge(cfg, &tempCfg)
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if secret := os.Getenv(JWTSecretEnv); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv(VaultPasswordEnv); password != "" {
		cfg.Vault.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies every field set in loaded over the defaults in cfg.
func merge(cfg, loaded *Config) {
	if loaded.Server.Addr != "" {
		cfg.Server.Addr = loaded.Server.Addr
	}
	if loaded.Server.ReadTimeout > 0 {
		cfg.Server.ReadTimeout = loaded.Server.ReadTimeout
	}
	if loaded.Server.WriteTimeout > 0 {
		cfg.Server.WriteTimeout = loaded.Server.WriteTimeout
	}

	if loaded.Auth.JWTSecret != "" {
		cfg.Auth.JWTSecret = loaded.Auth.JWTSecret
	}
	if loaded.Auth.SessionTTL > 0 {
		cfg.Auth.SessionTTL = loaded.Auth.SessionTTL
	}
	if loaded.Auth.RememberTTL > 0 {
		cfg.Auth.RememberTTL = loaded.Auth.RememberTTL
	}
	cfg.Auth.MinPasswordScore = loaded.Auth.MinPasswordScore
	cfg.Auth.AllowSignup = loaded.Auth.AllowSignup
	if len(loaded.Auth.Users) > 0 {
		cfg.Auth.Users = loaded.Auth.Users
	}

	if loaded.Widget.PageLength != 0 {
		cfg.Widget.PageLength = loaded.Widget.PageLength
	}
	if loaded.Widget.MaxUploadMB > 0 {
		cfg.Widget.MaxUploadMB = loaded.Widget.MaxUploadMB
	}
	if loaded.Widget.ExportPrefix != "" {
		cfg.Widget.ExportPrefix = loaded.Widget.ExportPrefix
	}
	cfg.Widget.SheetName = loaded.Widget.SheetName

	if loaded.Vault.Dir != "" {
		cfg.Vault.Dir = loaded.Vault.Dir
	}
	if loaded.Vault.Password != "" {
		cfg.Vault.Password = loaded.Vault.Password
	}
	if loaded.Vault.Salt != "" {
		cfg.Vault.Salt = loaded.Vault.Salt
	}
	if loaded.Vault.Iterations != 0 {
		cfg.Vault.Iterations = loaded.Vault.Iterations
	}
	if loaded.Vault.KeyLen != 0 {
		cfg.Vault.KeyLen = loaded.Vault.KeyLen
	}
	if loaded.Vault.Workers != 0 {
		cfg.Vault.Workers = loaded.Vault.Workers
	}

	if loaded.Log.Level != "" {
		cfg.Log.Level = loaded.Log.Level
	}
	if loaded.Log.Format != "" {
		cfg.Log.Format = loaded.Log.Format
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 bytes (or set %s)", JWTSecretEnv)
	}
	if c.Auth.MinPasswordScore < 0 || c.Auth.MinPasswordScore > 5 {
		return fmt.Errorf("auth.min_password_score must be within 0..5, got %d", c.Auth.MinPasswordScore)
	}
	for i, u := range c.Auth.Users {
		if u.Email == "" || u.PasswordHash == "" {
			return fmt.Errorf("auth.users[%d] needs email and password_hash", i)
		}
	}
	if !validPageLength(c.Widget.PageLength) {
		return fmt.Errorf("widget.page_length %d is not one of %v", c.Widget.PageLength, exselect.PageLengths)
	}
	if !exselect.ValidExportPrefix(c.Widget.ExportPrefix) {
		return fmt.Errorf("widget.export_prefix %q may only contain letters, digits, '_' and '-'", c.Widget.ExportPrefix)
	}
	switch c.Vault.KeyLen {
	case 16, 24, 32:
	default:
		return fmt.Errorf("vault.key_len must be 16, 24 or 32, got %d", c.Vault.KeyLen)
	}
	if c.Vault.Iterations < 1000 {
		return fmt.Errorf("vault.iterations must be at least 1000, got %d", c.Vault.Iterations)
	}
	if c.Vault.Workers < 1 {
		return fmt.Errorf("vault.workers must be positive, got %d", c.Vault.Workers)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// WidgetOptions converts the widget section to exselect.Options.
func (c *Config) WidgetOptions() exselect.Options {
	return exselect.Options{
		PageLength:   c.Widget.PageLength,
		SheetName:    c.Widget.SheetName,
		ExportPrefix: c.Widget.ExportPrefix,
		MaxBytes:     int64(c.Widget.MaxUploadMB) << 20,
	}
}

func validPageLength(n int) bool {
	for _, l := range exselect.PageLengths {
		if l == n {
			return true
		}
	}
	return false
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 60 * time.Second
	cfg.Auth.SessionTTL = 12 * time.Hour
	cfg.Auth.RememberTTL = 30 * 24 * time.Hour
	cfg.Widget.PageLength = exselect.DefaultPageLength
	cfg.Widget.MaxUploadMB = int(exselect.DefaultMaxBytes >> 20)
	cfg.Widget.ExportPrefix = exselect.DefaultExportPrefix
	cfg.Vault.Salt = "exselect-vault"
	cfg.Vault.Iterations = 10000
	cfg.Vault.KeyLen = 32
	cfg.Vault.Workers = 4
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}
