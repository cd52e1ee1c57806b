package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translhost.toml")
	content := "log_file = \"/var/log/translhost.log\"\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.LogFile != "/var/log/translhost.log" || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("empty path should not error: %v", err)
	}
	if cfg != (fileConfig{}) {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestMergeConfig(t *testing.T) {
	fromFile := fileConfig{LogFile: "file.log", LogLevel: "warn"}

	// Explicit flags win over the config file.
	got := mergeConfig(fromFile, map[string]bool{"log-file": true, "log-level": true}, "flag.log", "debug")
	if got.LogFile != "flag.log" || got.LogLevel != "debug" {
		t.Errorf("flags should override config: %+v", got)
	}

	// Unset flags leave config file values alone.
	got = mergeConfig(fromFile, map[string]bool{}, "", "info")
	if got.LogFile != "file.log" || got.LogLevel != "warn" {
		t.Errorf("config values should survive default flags: %+v", got)
	}

	// Flag defaults fill the gaps when the config file has nothing.
	got = mergeConfig(fileConfig{}, map[string]bool{}, "", "info")
	if got.LogFile != "" || got.LogLevel != "info" {
		t.Errorf("defaults not applied: %+v", got)
	}
}
