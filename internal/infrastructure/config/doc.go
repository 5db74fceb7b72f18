// Package config loads and validates the Media Node's configuration.
//
// Configuration is read from a YAML file, merged over built-in
// defaults, and may be overridden by MEDIANODE_* environment
// variables. The core never parses configuration itself; it receives
// initial settings (seed id, events feature flag, endpoint hints)
// from this package at startup.
package config
