// Package config loads, normalizes, and validates Warble's TOML
// configuration. Paths are expanded to absolute form during load, and
// startup-fatal conditions (unwritable workspace base, unknown target
// codec) are rejected before the daemon begins serving.
package config
