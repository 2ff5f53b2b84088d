package telemetry

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	// Level is the minimum level to emit: trace, debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format selects the output encoding: "console" or "json".
	Format string `json:"format" yaml:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `json:"output" yaml:"output"`
}

// DefaultLoggingConfig returns the logging configuration used when none is
// supplied: human-readable console output on stderr at info level.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// TracingConfig controls tracer construction.
type TracingConfig struct {
	// Enabled turns span export on. Disabled tracers are no-ops.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// PrettyPrint indents the exported span JSON.
	PrettyPrint bool `json:"pretty_print" yaml:"pretty_print"`
}
