// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. Besides the HTTP server settings it carries
// session limits and the shipping mode and units new sessions start with.
package config
