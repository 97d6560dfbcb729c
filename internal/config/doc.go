// Package config loads, normalizes, and validates Verseline configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PEXELS_API_KEY. The Config type centralizes every knob the daemon and CLI
// need, from output resolution and duration bounds to narration voices and
// upload credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
