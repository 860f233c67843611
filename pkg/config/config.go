package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// TokenEnv overrides tmdb.access_token when set.
const TokenEnv = "CINEGRID_TMDB_TOKEN"

type Config struct {
	StorageDir string       `toml:"storage_dir"`
	TMDB       TMDBConfig   `toml:"tmdb"`
	Enrich     EnrichConfig `toml:"enrich"`
	Web        WebConfig    `toml:"web"`
}

type TMDBConfig struct {
	AccessToken       string   `toml:"access_token"`
	BaseURL           string   `toml:"base_url"`
	ImageBaseURL      string   `toml:"image_base_url"`
	BackdropBaseURL   string   `toml:"backdrop_base_url"`
	Language          string   `toml:"language"`
	Region            string   `toml:"region"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

type EnrichConfig struct {
	// Enabled is a pointer so an absent key means "on".
	Enabled    *bool    `toml:"enabled,omitempty"`
	BatchSize  int      `toml:"batch_size"`
	BatchPause Duration `toml:"batch_pause"`
}

// IsEnabled reports whether provider labels are fetched.
func (e EnrichConfig) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

type WebConfig struct {
	Host          string   `toml:"host"`
	Port          int      `toml:"port"`
	SessionTTL    Duration `toml:"session_ttl"`
	SecureCookies bool     `toml:"secure_cookies"`
}

// Addr returns host:port.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Defaults.
const (
	DefaultBaseURL         = "https://api.themoviedb.org/3"
	DefaultImageBaseURL    = "https://image.tmdb.org/t/p/w500"
	DefaultBackdropBaseURL = "https://image.tmdb.org/t/p/original"
	DefaultLanguage        = "en-US"
	DefaultRegion          = "US"
	DefaultTimeout         = 15 * time.Second
	DefaultBatchSize       = 10
	DefaultBatchPause      = 100 * time.Millisecond
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8080
	DefaultSessionTTL      = 30 * 24 * time.Hour
)

var ErrMissingToken = errors.New("tmdb access token not configured (set tmdb.access_token or " + TokenEnv + ")")

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	cfg := &Config{StorageDir: storageDir}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg, err := GetDefaultConfig()
		if err != nil {
			return nil, err
		}
		cfg.applyEnv()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return nil, fmt.Errorf("getting default storage directory: %w", err)
		}
		config.StorageDir = storageDir
	}

	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		c.TMDB.AccessToken = token
	}
}

// Validate fills unset values with defaults and rejects malformed ones. A
// missing access token is not an error here; commands that talk to
// upstream call RequireToken.
func (c *Config) Validate() error {
	t := &c.TMDB
	if t.BaseURL == "" {
		t.BaseURL = DefaultBaseURL
	}
	if t.ImageBaseURL == "" {
		t.ImageBaseURL = DefaultImageBaseURL
	}
	if t.BackdropBaseURL == "" {
		t.BackdropBaseURL = DefaultBackdropBaseURL
	}
	for name, raw := range map[string]string{
		"tmdb.base_url":          t.BaseURL,
		"tmdb.image_base_url":    t.ImageBaseURL,
		"tmdb.backdrop_base_url": t.BackdropBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s: %q is not an http(s) URL", name, raw)
		}
	}
	if t.Language == "" {
		t.Language = DefaultLanguage
	}
	if t.Region == "" {
		t.Region = DefaultRegion
	}
	t.Region = strings.ToUpper(t.Region)
	if len(t.Region) != 2 {
		return fmt.Errorf("tmdb.region: %q is not a two-letter country code", t.Region)
	}
	if t.Timeout.Duration == 0 {
		t.Timeout = Duration{DefaultTimeout}
	}
	if t.Timeout.Duration < 0 {
		return fmt.Errorf("tmdb.timeout must be positive")
	}
	if t.RequestsPerSecond < 0 {
		return fmt.Errorf("tmdb.requests_per_second must not be negative")
	}

	e := &c.Enrich
	if e.BatchSize == 0 {
		e.BatchSize = DefaultBatchSize
	}
	if e.BatchSize < 0 {
		return fmt.Errorf("enrich.batch_size must be positive")
	}
	if e.BatchPause.Duration == 0 {
		e.BatchPause = Duration{DefaultBatchPause}
	}
	if e.BatchPause.Duration < 0 {
		return fmt.Errorf("enrich.batch_pause must not be negative")
	}

	w := &c.Web
	if w.Host == "" {
		w.Host = DefaultHost
	}
	if w.Port == 0 {
		w.Port = DefaultPort
	}
	if w.Port < 0 || w.Port > 65535 {
		return fmt.Errorf("web.port %d out of range", w.Port)
	}
	if w.SessionTTL.Duration == 0 {
		w.SessionTTL = Duration{DefaultSessionTTL}
	}
	if w.SessionTTL.Duration < 0 {
		return fmt.Errorf("web.session_ttl must be positive")
	}
	return nil
}

// RequireToken returns ErrMissingToken when no access token is set.
func (c *Config) RequireToken() error {
	if c.TMDB.AccessToken == "" {
		return ErrMissingToken
	}
	return nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	// The file holds an API credential.
	return os.WriteFile(configPath, []byte(template), 0600)
}

func (c *Config) generateConfigTemplate() (string, error) {
	storageDir := c.StorageDir
	if storageDir == "" {
		var err error
		storageDir, err = GetDefaultStorageDir()
		if err != nil {
			return "", fmt.Errorf("getting default storage directory: %w", err)
		}
	}

	// Replace the placeholder storage_dir with the actual path
	template := strings.Replace(configTemplate, "/home/user/.local/share/cinegrid", storageDir, 1)
	return template, nil
}

// GetDefaultStorageDir returns the default storage directory for databases
func GetDefaultStorageDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "cinegrid")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetConfigDir returns the configuration directory for cinegrid
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "cinegrid")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
