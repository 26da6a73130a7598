package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers understood by kv.Open
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds user preferences
type Config struct {
	Store string `yaml:"store" json:"store"` // sqlite, postgres or memory
	DSN   string `yaml:"dsn" json:"dsn"`     // File path for sqlite, connection URL for postgres
	User  string `yaml:"user" json:"user"`   // Session user id, activities are attributed to it

	SimulationInterval time.Duration `yaml:"simulation_interval" json:"simulation_interval"` // Simulated peer activity period, 0 disables
	SearchDebounce     time.Duration `yaml:"search_debounce" json:"search_debounce"`
	PollInterval       time.Duration `yaml:"poll_interval" json:"poll_interval"` // Cross-session change feed poll for SQL stores

	Addr string `yaml:"addr" json:"addr"` // HTTP listen address for 'serve'

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// Dir returns ~/.taskboard
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskboard"), nil
}

// DefaultConfig returns default settings with environment overrides applied
func DefaultConfig() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

func defaults() *Config {
	dir, _ := Dir()
	logPath, dbPath := "", "taskboard.db"
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "taskboard.log")
		dbPath = filepath.Join(dir, "board.db")
	}

	return &Config{
		Store:              StoreSQLite,
		DSN:                dbPath,
		User:               "user-1",
		SimulationInterval: 45 * time.Second,
		SearchDebounce:     300 * time.Millisecond,
		PollInterval:       time.Second,
		Addr:               ":8080",
		LogLevel:           "INFO",
		LogFile:            logPath,
	}
}

// applyEnv lets TASKBOARD_* variables override defaults and file values alike
func (c *Config) applyEnv() {
	c.Store = getEnv("TASKBOARD_STORE", c.Store)
	c.DSN = getEnv("TASKBOARD_DSN", c.DSN)
	c.User = getEnv("TASKBOARD_USER", c.User)
	c.Addr = getEnv("TASKBOARD_ADDR", c.Addr)
	c.LogLevel = getEnv("TASKBOARD_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("TASKBOARD_LOG_FILE", c.LogFile)
	if v := os.Getenv("TASKBOARD_LOG_CONSOLE"); v != "" {
		c.LogConsole = v == "true"
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Path returns the config file location
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from ~/.taskboard/config.yaml
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a config file on top of the defaults, then applies the
// environment. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readFile reads the file over the defaults without the environment
func readFile(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Update applies fn to the stored config and saves it. Environment overrides
// are never written to the file.
func Update(fn func(*Config)) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return UpdateFile(path, fn)
}

// UpdateFile is Update for the config file at path
func UpdateFile(path string, fn func(*Config)) error {
	cfg, err := readFile(path)
	if err != nil {
		return err
	}
	fn(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	return cfg.SaveFile(path)
}

// Validate rejects settings the rest of the program cannot work with
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q (want sqlite, postgres or memory)", c.Store)
	}
	if c.SimulationInterval < 0 || c.SearchDebounce < 0 || c.PollInterval < 0 {
		return fmt.Errorf("intervals must not be negative")
	}
	return nil
}

// Save saves config to ~/.taskboard/config.yaml
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as YAML, creating parent directories
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
