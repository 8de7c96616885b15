package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "devreg") {
		t.Errorf("GetConfigDir() = %v, should contain 'devreg'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("macOS config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigDirXDG(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("XDG_CONFIG_HOME only applies on Linux and other Unix systems")
	}

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(xdg, "devreg"); configDir != want {
		t.Errorf("GetConfigDir() = %v, want %v", configDir, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.Version != 1 {
		t.Errorf("NewConfig().Version = %v, want 1", cfg.Version)
	}

	if cfg.Store == nil {
		t.Fatal("NewConfig().Store should not be nil")
	}

	if cfg.Store.Backend != BackendFile {
		t.Errorf("NewConfig().Store.Backend = %v, want %v", cfg.Store.Backend, BackendFile)
	}

	if cfg.Store.Capacity != DefaultCapacity {
		t.Errorf("NewConfig().Store.Capacity = %v, want %v", cfg.Store.Capacity, DefaultCapacity)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("NewConfig().Validate() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory backend", func(c *Config) { c.Store.Backend = BackendMemory }, false},
		{"nvram backend", func(c *Config) { c.Store.Backend = BackendNVRAM }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "eeprom" }, true},
		{"negative capacity", func(c *Config) { c.Store.Capacity = -1 }, true},
		{"negative nv size", func(c *Config) { c.Store.NVSize = -1 }, true},
		{"missing store", func(c *Config) { c.Store = nil }, true},
		{"debug level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := NewConfig()
	cfg.Store.Backend = BackendNVRAM
	cfg.Store.NVPath = "/var/lib/devreg/image.nv"
	cfg.Store.NVSize = 8192
	cfg.LogLevel = "info"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after Save()")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Store.Backend != BackendNVRAM {
		t.Errorf("Loaded backend = %v, want %v", loaded.Store.Backend, BackendNVRAM)
	}
	if loaded.Store.NVPath != "/var/lib/devreg/image.nv" {
		t.Errorf("Loaded nv path = %v, want /var/lib/devreg/image.nv", loaded.Store.NVPath)
	}
	if loaded.Store.NVSize != 8192 {
		t.Errorf("Loaded nv size = %v, want 8192", loaded.Store.NVSize)
	}
	if loaded.LogLevel != "info" {
		t.Errorf("Loaded log level = %v, want info", loaded.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Load() of missing file backend = %v, want defaults", cfg.Store.Backend)
	}
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("version: 1\nstore:\n  backend: memory\n")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("backend = %v, want memory", cfg.Store.Backend)
	}
	if cfg.Store.NVSize != DefaultNVSize {
		t.Errorf("nv size = %v, want %v", cfg.Store.NVSize, DefaultNVSize)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad version", "version: 2\n"},
		{"bad backend", "version: 1\nstore:\n  backend: tape\n"},
		{"not yaml", "version: [1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0600); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestResolvedPaths(t *testing.T) {
	s := &StoreConfig{FilePath: "/tmp/reg.conf"}

	got, err := s.ResolvedFilePath()
	if err != nil {
		t.Fatalf("ResolvedFilePath() error = %v", err)
	}
	if got != "/tmp/reg.conf" {
		t.Errorf("ResolvedFilePath() = %v, want /tmp/reg.conf", got)
	}

	got, err = s.ResolvedNVPath()
	if err != nil {
		t.Fatalf("ResolvedNVPath() error = %v", err)
	}
	if filepath.Base(got) != "registry.nv" {
		t.Errorf("ResolvedNVPath() = %v, should end with registry.nv", got)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}
