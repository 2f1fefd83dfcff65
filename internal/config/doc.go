// Package config loads, normalizes, and validates the TOML configuration
// that drives a render run.
package config
