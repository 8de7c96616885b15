// Package config provides user configuration management for devreg.
//
// This package manages a YAML-based configuration file that tells regctl
// which parameter store to use and how to size it. The configuration
// follows OS-specific conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/devreg/config.yaml or $HOME/.config/devreg/config.yaml
//   - macOS: $HOME/.config/devreg/config.yaml
//   - Windows: %LOCALAPPDATA%\devreg\config.yaml
//
// Store files default to the same directory (registry.conf for the file
// backend, registry.nv for the nvram image).
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg.Store.Backend = config.BackendNVRAM
//	cfg.Store.NVSize = 8192
//
//	// Save changes atomically
//	if err := cfg.Save(""); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// File operations are protected by a mutex to ensure atomic writes.
package config
