// Package config provides configuration structures and utilities for esgscan.
// It defines run defaults, the .esgscan YAML file, .env overrides and the
// XDG directories used for downloads and run history.
package config
