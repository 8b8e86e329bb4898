// Package config loads and validates the toolkit's TOML configuration.
// Configuration is optional; every field has a default so the CLI works
// on a bare machine.
package config
