// Package config loads and validates the dotlinks configuration file.
// It supports YAML and TOML files, layered over built-in defaults and
// overridden by DOTLINKS_* environment variables.
package config
