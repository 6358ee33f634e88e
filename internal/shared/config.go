package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file,
// with secrets overlaid from the environment (see ApplyEnv).
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Scraper     ScraperConfig     `toml:"scraper"`
	Digest      DigestConfig      `toml:"digest"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Mail    MailConfig    `toml:"mail"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// MailConfig contains transactional email provider settings.
type MailConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	From    string `toml:"from"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
//
// CronSecret authorizes the ingest/match/digest endpoints; SessionSecret
// signs session tokens. Both normally arrive via environment variables.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	AppURL        string `toml:"app_url"`
	CronSecret    string `toml:"cron_secret"`
	SessionSecret string `toml:"session_secret"`
}

// ScraperConfig contains listing scraper settings.
type ScraperConfig struct {
	ListingURL string `toml:"listing_url"`
	City       string `toml:"city"`
	UserAgent  string `toml:"user_agent"`
}

// DigestConfig contains digest email settings.
type DigestConfig struct {
	UnsubscribePath string `toml:"unsubscribe_path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.ApplyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.ApplyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidInput)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays secrets from the process environment onto the config.
// A .env file in the working directory is loaded first if present, so
// local development and hosted deployments share one mechanism.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	overlay := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	overlay(&c.Credentials.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	overlay(&c.Credentials.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	overlay(&c.Credentials.Spotify.RedirectURI, "SPOTIFY_REDIRECT_URI")
	overlay(&c.Credentials.Mail.APIKey, "MAIL_API_KEY")
	overlay(&c.Credentials.Mail.From, "DIGEST_FROM")
	overlay(&c.Server.CronSecret, "CRON_SECRET")
	overlay(&c.Server.SessionSecret, "SESSION_SECRET")
	overlay(&c.Server.AppURL, "APP_URL")
	overlay(&c.Database.Path, "DATABASE_PATH")
}
