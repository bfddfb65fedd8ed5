// Package config loads, normalizes, and validates quaver's TOML
// configuration.
//
// Load resolves the configuration path (explicit flag, QUAVER_CONFIG, then
// ~/.config/quaver/config.toml, then a project-local quaver.toml), applies
// defaults for anything the file omits, expands ~ in every path field, and
// validates the result with actionable error messages. CreateSample writes
// the embedded, commented sample file for 'quaver config init'.
package config
