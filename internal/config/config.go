// Package config handles configuration for mcpchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	// DefaultEndpoint is the chat endpoint used when none is configured
	DefaultEndpoint = "http://localhost:8000/chat"
	// DefaultAPIURL is the task API base URL used when none is configured
	DefaultAPIURL = "http://localhost:8000"
	// DefaultLogLevel is the zap level name used when none is configured
	DefaultLogLevel = "info"
)

// Environment variables that override the config file
const (
	EnvEndpoint = "MCPCHAT_ENDPOINT"
	EnvAPIURL   = "MCPCHAT_API_URL"
	// EnvViteAPIURL is read for compatibility with the web front end
	EnvViteAPIURL = "VITE_API_URL"
	EnvLogLevel   = "MCPCHAT_LOG_LEVEL"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "notty" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the chat URL messages are posted to. http(s) and ws(s)
	// schemes are accepted.
	Endpoint string `json:"endpoint"`
	// APIURL is the base URL of the task API.
	APIURL string `json:"api_url"`
	// Verbose enables debug logging.
	Verbose  bool   `json:"verbose"`
	LogLevel string `json:"log_level,omitempty"`
	// LogFile is where the interactive chat writes its log. Empty means
	// mcpchat.log inside the config directory.
	LogFile         string `json:"log_file,omitempty"`
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	// RenderMarkdown renders assistant replies through glamour instead of
	// showing them verbatim.
	RenderMarkdown bool           `json:"render_markdown"`
	TUITheme       string         `json:"tui_theme,omitempty"`
	Markdown       MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        DefaultEndpoint,
		APIURL:          DefaultAPIURL,
		Verbose:         false,
		LogLevel:        DefaultLogLevel,
		CopyToClipboard: false,
		RenderMarkdown:  false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".mcpchat")
	return configDir, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path for the interactive chat, creating
// the config directory if needed
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "mcpchat.log"), nil
}

// LoadConfig loads the configuration from disk and applies environment
// overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil // Use defaults if config doesn't exist
		}
		return applyEnv(cfg), fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnv(cfg), nil
}

// LoadFileConfig loads the configuration from disk without environment
// overrides. It is used before saving so env values are not persisted.
func LoadFileConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv(EnvViteAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return cfg
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setters maps settable keys to their parsers
var setters = map[string]func(*Config, string) error{
	"endpoint": func(c *Config, v string) error {
		c.Endpoint = v
		return nil
	},
	"api_url": func(c *Config, v string) error {
		c.APIURL = strings.TrimRight(v, "/")
		return nil
	},
	"verbose":           boolSetter(func(c *Config) *bool { return &c.Verbose }),
	"copy_to_clipboard": boolSetter(func(c *Config) *bool { return &c.CopyToClipboard }),
	"render_markdown":   boolSetter(func(c *Config) *bool { return &c.RenderMarkdown }),
	"log_level": func(c *Config, v string) error {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(v)
			return nil
		}
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", v)
	},
	"log_file": func(c *Config, v string) error {
		c.LogFile = v
		return nil
	},
	"tui_theme": func(c *Config, v string) error {
		c.TUITheme = v
		return nil
	},
	"markdown.style": func(c *Config, v string) error {
		c.Markdown.Style = v
		return nil
	},
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", v)
		}
		*field(c) = b
		return nil
	}
}

// Set assigns a config value by key
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (available: %s)", key, strings.Join(SettableKeys(), ", "))
	}
	return set(c, value)
}

// SettableKeys returns the keys accepted by Set, sorted
func SettableKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
