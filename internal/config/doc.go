// Package config loads, normalizes, and validates moviely configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks for the media search API keys
// and the HTTP API token. Obtain settings through this package so downstream
// code receives expanded paths, canonical backend names and clear validation
// errors.
package config
