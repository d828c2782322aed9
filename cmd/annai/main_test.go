package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuildQuestion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"bourse"}, "bourse"},
		{"multiple words", []string{"horaires", "bibliothèque"}, "horaires bibliothèque"},
		{"single quoted phrase", []string{"horaires bibliothèque"}, "horaires bibliothèque"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuestion(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuestion(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true from cwd config")
	}
	if resolved != configPath {
		t.Errorf("resolved = %q, want %q", resolved, configPath)
	}
}

func TestSemesterStart(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	start, err := semesterStart(cfg)
	if err != nil {
		t.Fatalf("semesterStart() error = %v", err)
	}
	if start.Weekday().String() != "Monday" {
		t.Errorf("default semester start falls on %v, want Monday", start.Weekday())
	}

	cfg.Ingest.SemesterStart = "pas une date"
	if _, err := semesterStart(cfg); err == nil {
		t.Error("semesterStart() with a bad value should fail")
	}
}
