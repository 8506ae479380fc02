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

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Migrate     MigrateConfig     `toml:"migrate"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	TokenPath    string `toml:"token_path"`
}

// YouTubeConfig contains YouTube Music proxy settings.
type YouTubeConfig struct {
	ProxyURL string `toml:"proxy_url"`
	AuthFile string `toml:"auth_file"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// MigrateConfig contains tuning knobs for the migration pipeline.
type MigrateConfig struct {
	Threshold   float64 `toml:"threshold"`    // Minimum match score, 0..1
	Workers     int     `toml:"workers"`      // Concurrent search workers
	SearchLimit int     `toml:"search_limit"` // Candidates requested per search
	RateLimit   float64 `toml:"rate_limit"`   // Destination searches per second
}

// LoadConfig reads and parses a TOML configuration file from the specified path,
// then applies credential overrides from the environment (and .env, if present).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded
// example config, with environment overrides applied.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv overrides credential fields from environment variables.
// A .env file in the working directory is loaded first when present;
// real environment variables win over .env values.
func (c *Config) applyEnv() {
	godotenv.Load()

	overrides := []struct {
		key    string
		target *string
	}{
		{"SPOTIFY_CLIENT_ID", &c.Credentials.Spotify.ClientID},
		{"SPOTIFY_CLIENT_SECRET", &c.Credentials.Spotify.ClientSecret},
		{"SPOTIFY_REDIRECT_URI", &c.Credentials.Spotify.RedirectURI},
		{"SPOTIFY_TOKEN_PATH", &c.Credentials.Spotify.TokenPath},
		{"YTMUSIC_PROXY_URL", &c.Credentials.YouTube.ProxyURL},
		{"YTMUSIC_AUTH_FILE", &c.Credentials.YouTube.AuthFile},
	}

	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}
}

// Normalize clamps pipeline settings to usable ranges, filling zero values with defaults.
func (m *MigrateConfig) Normalize() {
	if m.Threshold <= 0 || m.Threshold > 1 {
		m.Threshold = 0.6
	}
	if m.Workers <= 0 {
		m.Workers = 4
	}
	if m.Workers > 10 {
		m.Workers = 10
	}
	if m.SearchLimit <= 0 {
		m.SearchLimit = 5
	}
	if m.RateLimit <= 0 {
		m.RateLimit = 5.0
	}
}
