// Package config loads, normalizes, and validates photosort configuration.
//
// Configuration lives in a TOML file (default ~/.config/photosort/config.toml)
// and is merged over repository defaults. Path fields are tilde-expanded and
// made absolute during normalization so downstream packages never deal with
// relative or user-relative paths.
package config
