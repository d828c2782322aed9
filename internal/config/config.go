// Package config provides configuration loading and structs for the Annai
// server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/annai/internal/ranking"
	"github.com/hyperjump/annai/internal/search"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool                 `yaml:"debug"`
	Server      ServerConfig         `yaml:"server"`
	Storage     StorageConfig        `yaml:"storage"`
	Classifiers ClassifiersConfig    `yaml:"classifiers"`
	Search      search.Limits        `yaml:"search"`
	Rerank      ranking.RerankConfig `yaml:"rerank"`
	Ingest      IngestConfig         `yaml:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database and the full-text index. An
// empty KBIndexPath disables the external index tier.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	KBIndexPath  string `yaml:"kb_index_path"`
}

// ClassifiersConfig holds artifact paths. A missing file is not an error:
// the matching classifier is simply unavailable.
type ClassifiersConfig struct {
	IntentPath      string `yaml:"intent_path"`
	FAQCategoryPath string `yaml:"faq_category_path"`
	SentimentPath   string `yaml:"sentiment_path"`
}

// IngestConfig holds the data directory layout for the ingestion pipeline.
type IngestConfig struct {
	DataDir       string `yaml:"data_dir"`
	SemesterStart string `yaml:"semester_start"`
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Storage.KBIndexPath != "" {
		cfg.Storage.KBIndexPath = expandPath(cfg.Storage.KBIndexPath, configDir)
	}
	if cfg.Classifiers.IntentPath != "" {
		cfg.Classifiers.IntentPath = expandPath(cfg.Classifiers.IntentPath, configDir)
	}
	if cfg.Classifiers.FAQCategoryPath != "" {
		cfg.Classifiers.FAQCategoryPath = expandPath(cfg.Classifiers.FAQCategoryPath, configDir)
	}
	if cfg.Classifiers.SentimentPath != "" {
		cfg.Classifiers.SentimentPath = expandPath(cfg.Classifiers.SentimentPath, configDir)
	}
	if cfg.Ingest.DataDir != "" {
		cfg.Ingest.DataDir = expandPath(cfg.Ingest.DataDir, configDir)
	}

	return &cfg, nil
}

// ApplyDefaults fills zero values with working defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/annai/data/db/annai.db"
	}
	if cfg.Ingest.SemesterStart == "" {
		cfg.Ingest.SemesterStart = "2026-09-07"
	}
	cfg.Search.ApplyDefaults()
	cfg.Rerank.ApplyDefaults()
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
