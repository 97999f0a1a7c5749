package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/s0up4200/paperbox/dropbox"
	"github.com/s0up4200/paperbox/paper"
)

// EnvPrefix prefixes environment overrides, e.g. PAPERBOX_DROPBOX_ACCESS_TOKEN.
const EnvPrefix = "PAPERBOX"

// ErrMissingAccessToken is returned by RequireAccessToken
var ErrMissingAccessToken = errors.New("dropbox.access_token is not set")

// Load loads the configuration. An explicit configPath must exist; without
// one the standard locations are searched and a missing file is fine, since
// everything can come from the environment. A .env file in the working
// directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".paperbox"))
		}
		v.AddConfigPath("/etc/paperbox/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key gets one so
// AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dropbox.access_token", "")
	v.SetDefault("dropbox.app_key", "")
	v.SetDefault("dropbox.app_secret", "")
	v.SetDefault("dropbox.redirect_uri", "http://localhost:8080/callback")
	v.SetDefault("dropbox.base_url", dropbox.DefaultBaseURL)
	v.SetDefault("dropbox.timeout", 30*time.Second)

	v.SetDefault("paper.page_size", paper.DefaultListLimit)
	v.SetDefault("paper.concurrency", paper.DefaultConcurrency)
	v.SetDefault("paper.export_format", string(paper.ExportMarkdown))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Dropbox.BaseURL == "" {
		return fmt.Errorf("dropbox.base_url is required")
	}
	if cfg.Dropbox.Timeout <= 0 {
		return fmt.Errorf("dropbox.timeout must be positive, got %s", cfg.Dropbox.Timeout)
	}

	if cfg.Paper.PageSize < 1 || cfg.Paper.PageSize > paper.DefaultListLimit {
		return fmt.Errorf("paper.page_size must be between 1 and %d, got %d", paper.DefaultListLimit, cfg.Paper.PageSize)
	}
	if cfg.Paper.Concurrency < 1 {
		return fmt.Errorf("paper.concurrency must be at least 1, got %d", cfg.Paper.Concurrency)
	}
	switch paper.ExportFormat(cfg.Paper.ExportFormat) {
	case paper.ExportHTML, paper.ExportMarkdown:
	default:
		return fmt.Errorf("invalid paper.export_format: %s", cfg.Paper.ExportFormat)
	}

	for name, expression := range cfg.Filter {
		if strings.TrimSpace(expression) == "" {
			return fmt.Errorf("filter.%s has an empty expression", name)
		}
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}

// RequireAccessToken returns the user access token or ErrMissingAccessToken.
func (c *Config) RequireAccessToken() (string, error) {
	if c.Dropbox.AccessToken == "" {
		return "", fmt.Errorf("%w (set it in the config file or %s_DROPBOX_ACCESS_TOKEN)", ErrMissingAccessToken, EnvPrefix)
	}
	return c.Dropbox.AccessToken, nil
}

// RequireApp returns the app key and secret needed by the auth commands.
func (c *Config) RequireApp() (key, secret string, err error) {
	if c.Dropbox.AppKey == "" {
		return "", "", fmt.Errorf("dropbox.app_key is required")
	}
	return c.Dropbox.AppKey, c.Dropbox.AppSecret, nil
}
