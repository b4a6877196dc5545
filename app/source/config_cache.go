package source

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFormat          = "rss"
	DefaultRefreshInterval = 3600
	DefaultMaxItems        = 100
	DefaultTimeout         = 30
)

type ConfigCache struct {
	sourcesDir string
	formats    []string
	cache      map[string]*Config
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewConfigCache reads source files from sourcesDir. When formats is not
// empty, a source may only ask for one of them.
func NewConfigCache(sourcesDir string, formats []string, logger *slog.Logger) *ConfigCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigCache{
		sourcesDir: sourcesDir,
		formats:    formats,
		cache:      make(map[string]*Config),
		logger:     logger,
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.sourcesDir); os.IsNotExist(err) {
		cc.logger.Warn("Sources directory not found", "dir", cc.sourcesDir)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := cc.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		cc.logger.Debug("Configuration loaded", "source", name, "format", config.Format, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(name string) (*Config, error) {
	configFile := cc.getConfigFilePath(name)
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = name

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(name string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[name]
	if !ok {
		return nil, fmt.Errorf("source config with name '%s' not found", name)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	return maps.Clone(cc.cache)
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabled := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.Format = strings.ToLower(strings.TrimSpace(config.Format))
	if config.Format == "" {
		config.Format = DefaultFormat
	}
	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = DefaultRefreshInterval
	}
	if config.Settings.MaxItems == 0 {
		config.Settings.MaxItems = DefaultMaxItems
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = DefaultTimeout
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if config.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if config.URL == "" {
		return fmt.Errorf("source URL is required")
	}

	if len(cc.formats) > 0 && !slices.Contains(cc.formats, config.Format) {
		return fmt.Errorf("unknown format %q, expected one of %v", config.Format, cc.formats)
	}

	if config.Settings.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must be non-negative")
	}
	if config.Settings.MaxItems < 0 {
		return fmt.Errorf("max items must be non-negative")
	}
	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	for i, filter := range config.Filters {
		if strings.TrimSpace(filter.Field) == "" {
			return fmt.Errorf("filter at index %d has no field", i)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(name string) string {
	return filepath.Join(cc.sourcesDir, name+".yml")
}
