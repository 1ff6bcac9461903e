// Package config loads, normalizes, and validates the TOML configuration
// for the converter. Load resolves the config path (explicit flag, then
// ~/.config/kelvin/config.toml, then a project-local kelvin.toml), applies
// defaults for missing values, expands ~ in path fields, and validates the
// result before anything else runs.
package config
