package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ashval/inkweaver/internal/assistant"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	AI      AIConfig          `yaml:"ai"`
	Events  EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig holds the data directory the workspace envelope and
// avatars live in.
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// AvatarDir is where character portraits are stored.
func (c *StorageConfig) AvatarDir() string {
	return filepath.Join(c.DataDir, "avatars")
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// AIConfig configures the hosted text-generation API. An empty APIKey
// leaves the assistant unconfigured; AI endpoints then answer 503.
type AIConfig struct {
	// Endpoint overrides the SDK's base URL; empty uses the public API.
	Endpoint           string        `yaml:"endpoint"`
	APIVersion         string        `yaml:"api_version"`
	APIKey             string        `yaml:"api_key"`
	Model              string        `yaml:"model"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxHistory         int           `yaml:"max_history"`
	MaxContextNotes    int           `yaml:"max_context_notes"`
	MaxContextLore     int           `yaml:"max_context_lore"`
	MaxContextChars    int           `yaml:"max_context_chars"`
	DefaultInstruction string        `yaml:"default_instruction"`
}

// Enabled reports whether an API key is configured.
func (c *AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// Client returns the generator settings.
func (c *AIConfig) Client() assistant.ClientConfig {
	return assistant.ClientConfig{
		BaseURL:    c.Endpoint,
		APIVersion: c.APIVersion,
		APIKey:     c.APIKey,
		Model:      c.Model,
		Timeout:    c.Timeout,
	}
}

// Limits returns the context caps for the assembler.
func (c *AIConfig) Limits() assistant.Limits {
	return assistant.Limits{
		MaxNotes:   c.MaxContextNotes,
		MaxLore:    c.MaxContextLore,
		MaxChars:   c.MaxContextChars,
		MaxHistory: c.MaxHistory,
	}
}

// Validate validates the AI configuration.
func (c *AIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIVersion, validation.When(c.Enabled(), validation.Required)),
		validation.Field(&c.Model, validation.When(c.Enabled(), validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxHistory, validation.Min(0)),
		validation.Field(&c.MaxContextNotes, validation.Min(0)),
		validation.Field(&c.MaxContextLore, validation.Min(0)),
		validation.Field(&c.MaxContextChars, validation.Min(1)),
	)
}

// EventsConfig tunes the SSE stream.
type EventsConfig struct {
	GraphThrottle time.Duration `yaml:"graph_throttle"`
	KeepAlive     time.Duration `yaml:"keep_alive"`
	// IndexDebounce delays re-indexing and reloads after bursts of changes.
	IndexDebounce time.Duration `yaml:"index_debounce"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.GraphThrottle, validation.Min(time.Duration(0))),
		validation.Field(&c.KeepAlive, validation.Min(time.Duration(0))),
		validation.Field(&c.IndexDebounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	limits := assistant.DefaultLimits()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		SQLite: SQLiteConfig{
			Path: "./data/inkweaver.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		AI: AIConfig{
			APIVersion:      "v1beta",
			Model:           "gemini-2.5-flash",
			Timeout:         60 * time.Second,
			MaxHistory:      limits.MaxHistory,
			MaxContextNotes: limits.MaxNotes,
			MaxContextLore:  limits.MaxLore,
			MaxContextChars: limits.MaxChars,
		},
		Events: EventsConfig{
			GraphThrottle: 2 * time.Second,
			KeepAlive:     30 * time.Second,
			IndexDebounce: 200 * time.Millisecond,
		},
	}
}
