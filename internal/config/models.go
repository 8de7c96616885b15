package config

import (
	"fmt"
	"path/filepath"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendNVRAM  = "nvram"
	BackendFile   = "file"
)

// Backends lists the accepted backend names
var Backends = []string{BackendMemory, BackendNVRAM, BackendFile}

// Defaults applied by NewConfig
const (
	DefaultCapacity = 64
	DefaultNVSize   = 4096
	defaultFileName = "registry.conf"
	defaultNVName   = "registry.nv"
)

// Config represents the entire configuration file.
type Config struct {
	Version  int          `yaml:"version"`
	Store    *StoreConfig `yaml:"store"`
	LogLevel string       `yaml:"log_level,omitempty"` // debug, info, warn or error; empty is silent
}

// StoreConfig selects and sizes the parameter store.
type StoreConfig struct {
	Backend  string `yaml:"backend"`             // memory, nvram or file
	Capacity int    `yaml:"capacity,omitempty"`  // Slots of the memory table
	FilePath string `yaml:"file_path,omitempty"` // Text file for the file backend
	NVPath   string `yaml:"nv_path,omitempty"`   // Image file for the nvram backend
	NVSize   int    `yaml:"nv_size,omitempty"`   // Image size in bytes when created
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Store: &StoreConfig{
			Backend:  BackendFile,
			Capacity: DefaultCapacity,
			NVSize:   DefaultNVSize,
		},
	}
}

// Validate checks that the configuration can be used as is.
func (c *Config) Validate() error {
	if c.Store == nil {
		return fmt.Errorf("config has no store section")
	}
	if !ValidBackend(c.Store.Backend) {
		return fmt.Errorf("unknown store backend %q (want memory, nvram or file)", c.Store.Backend)
	}
	if c.Store.Capacity < 0 {
		return fmt.Errorf("store capacity must not be negative, got %d", c.Store.Capacity)
	}
	if c.Store.NVSize < 0 {
		return fmt.Errorf("nv image size must not be negative, got %d", c.Store.NVSize)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// ValidBackend reports whether name is a known backend
func ValidBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// ResolvedFilePath returns the text store path, defaulting to a file in
// the configuration directory.
func (s *StoreConfig) ResolvedFilePath() (string, error) {
	return s.resolve(s.FilePath, defaultFileName)
}

// ResolvedNVPath returns the nv image path, defaulting to a file in the
// configuration directory.
func (s *StoreConfig) ResolvedNVPath() (string, error) {
	return s.resolve(s.NVPath, defaultNVName)
}

func (s *StoreConfig) resolve(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
