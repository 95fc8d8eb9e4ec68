package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Data     DataConfig        `yaml:"data"`
	Static   StaticConfig      `yaml:"static"`
	Activity ActivityConfig    `yaml:"activity"`
	Events   EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel     slog.Level    `yaml:"log_level"`
	HTTP         HTTPConfig    `yaml:"http"`
	OpenBrowser  bool          `yaml:"open_browser"`
	BrowserDelay time.Duration `yaml:"browser_delay"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BrowserDelay, validation.Min(time.Duration(0))),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// BrowserURL is the address opened in the browser on startup.
func (c *HTTPConfig) BrowserURL() string {
	return fmt.Sprintf("http://localhost:%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig holds the path to the JSON data file.
type DataConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// StaticConfig points at a front-end directory. Empty serves the embedded bundle.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// ActivityConfig holds the SQLite journal path. Empty disables the journal.
type ActivityConfig struct {
	Path string `yaml:"path"`
}

// Enabled reports whether the activity journal should be opened.
func (c *ActivityConfig) Enabled() bool {
	return c.Path != ""
}

// EventsConfig controls the SSE broker.
type EventsConfig struct {
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Required, validation.Min(10*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 5000,
			},
			BrowserDelay: time.Second,
		},
		Data: DataConfig{
			Path: "./data/projects.json",
		},
		Events: EventsConfig{
			Throttle: 2 * time.Second,
		},
	}
}
