package types

import "fmt"

// Config holds runtime configuration combining flags and defaults
type Config struct {
	// Execution
	Parallelism int  // Max concurrent split jobs (1 = sequential)
	DryRun      bool // Plan and report without deleting or writing files
	Lenient     bool // Warn instead of failing on content before the final query

	// Output
	Verbose bool // Enable debug logging
}

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Parallelism < 1 {
		return &ConfigError{Field: "parallel", Message: "must be at least 1"}
	}
	return nil
}
