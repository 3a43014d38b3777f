// Package config loads, normalizes, and validates tracker configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RESEND_API_KEY, EMAIL_TO and NTFY_TOPIC. Paths left empty are derived from
// the state directory so a minimal file only needs notification settings.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
