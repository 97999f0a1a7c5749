package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Dropbox DropboxConfig `mapstructure:"dropbox"`
	Paper   PaperConfig   `mapstructure:"paper"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DropboxConfig holds credentials and connection details. AccessToken is
// only required by commands that call the API as a user.
type DropboxConfig struct {
	AccessToken string        `mapstructure:"access_token"`
	AppKey      string        `mapstructure:"app_key"`
	AppSecret   string        `mapstructure:"app_secret"`
	RedirectURI string        `mapstructure:"redirect_uri"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PaperConfig tunes the Paper commands
type PaperConfig struct {
	PageSize     int    `mapstructure:"page_size"`
	Concurrency  int    `mapstructure:"concurrency"`
	ExportFormat string `mapstructure:"export_format"`
}

// FilterConfig maps filter names to collaborator expressions
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
