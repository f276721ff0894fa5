package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/silenceobjects/sentinel/internal/domain"
	"gopkg.in/yaml.v3"
)

const FileName = ".sentinel.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .sentinel.yaml and
// applying SENTINEL_* environment overrides.
type YAMLLoader struct {
	// Path overrides the default <repo>/.sentinel.yaml location.
	Path string
}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// NewWithPath creates a YAMLLoader reading an explicit config file.
func NewWithPath(path string) *YAMLLoader {
	return &YAMLLoader{Path: path}
}

// Load reads the config of repoPath. Keys missing from the file keep their
// defaults; a missing file yields DefaultConfig.
func (l *YAMLLoader) Load(repoPath string) (domain.SentinelConfig, error) {
	path := l.Path
	if path == "" {
		path = filepath.Join(repoPath, FileName)
	}

	cfg := domain.DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && l.Path == "":
	case err != nil:
		return domain.SentinelConfig{}, fmt.Errorf("reading %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.SentinelConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return domain.SentinelConfig{}, err
	}

	if err := cfg.Validate(); err != nil {
		return domain.SentinelConfig{}, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}
