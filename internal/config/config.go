package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the backend origin used when nothing else is configured.
	DefaultAPIURL = "http://localhost:3000"

	configFileName = "config.yaml"
)

// Config holds user preferences
type Config struct {
	APIURL         string        `yaml:"api_url" env:"PROTODO_API_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"PROTODO_REQUEST_TIMEOUT"`
	DataDir        string        `yaml:"data_dir" env:"PROTODO_DATA_DIR"`
	ConfirmDelete  bool          `yaml:"confirm_delete" env:"PROTODO_CONFIRM_DELETE"`

	// Logging configuration
	LogLevel   string `yaml:"log_level" env:"PROTODO_LOG_LEVEL"`     // DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" env:"PROTODO_LOG_FILE"`       // Path to log file
	LogConsole bool   `yaml:"log_console" env:"PROTODO_LOG_CONSOLE"` // Mirror logs to stderr
}

// DefaultDir returns ~/.protodo
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".protodo"
	}
	return filepath.Join(home, ".protodo")
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: 30 * time.Second,
		DataDir:        dir,
		ConfirmDelete:  true,
		LogLevel:       "INFO",
		LogFile:        filepath.Join(dir, "logs", "protodo.log"),
		LogConsole:     false,
	}
}

// Path returns the location of the config file inside dir.
func Path(dir string) string {
	return filepath.Join(dir, configFileName)
}

// DBPath returns the sqlite file holding the session and cookies.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "protodo.db")
}

// Load reads ~/.protodo/config.yaml and applies PROTODO_* environment overrides.
func Load() (*Config, error) {
	return LoadFrom(DefaultDir())
}

// LoadFrom reads config.yaml in dir. A missing file yields the defaults;
// the environment always wins over the file.
func LoadFrom(dir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path(dir))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the client cannot work with.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// Save writes the config to ~/.protodo/config.yaml
func (c *Config) Save() error {
	return c.SaveTo(DefaultDir())
}

// SaveTo writes the config to dir/config.yaml
func (c *Config) SaveTo(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
