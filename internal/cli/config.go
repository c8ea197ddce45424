package cli

import (
	"github.com/cybertec-postgresql/ctesplit/pkg/types"
)

// Config is an alias for the shared Config type
type Config = types.Config

// ConfigError is an alias for the shared ConfigError type
type ConfigError = types.ConfigError

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	Parallelism: 1,
	DryRun:      false,
	Lenient:     false,
	Verbose:     false,
}

// ApplyFlagsToConfig applies command-line flag values to configuration
func ApplyFlagsToConfig(c *Config, parallel int, dryRun, lenient, verbose bool) {
	if parallel != 0 {
		c.Parallelism = parallel
	}
	c.DryRun = dryRun
	c.Lenient = lenient
	c.Verbose = verbose
}
