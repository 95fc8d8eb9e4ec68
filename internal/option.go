package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	output  io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server and startup log.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithOutput redirects human-readable command output, e.g. the migrate report.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.output = w
	}
}
