// Package config loads configuration for seqkit binaries.
//
// LoadConfig reads, in increasing precedence, a config.yml found in the
// standard locations, a .env file (via godotenv), the process environment,
// and any command-line flags already bound on the viper instance passed with
// WithViper. Environment variables are derived from the target struct's
// mapstructure keys:
//
//	var cfg Config
//	err := config.LoadConfig("seqq", &cfg, config.WithEnvPrefix("SEQQ"))
//	// SEQQ_TAKE=10 sets cfg.Take, SEQQ_LOGGING_LEVEL=debug sets cfg.Logging.Level
//
// ServiceConfig is the shared base: name, environment, logging and
// telemetry settings, validated with struct tags.
package config
