package feed

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxItems         = 5
	DefaultTimeout          = 30
	DefaultFetchConcurrency = 4
)

func LoadConfig(configFile string) (*Config, error) {
	feedConfig, err := parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(feedConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	slog.Debug("Configuration loaded",
		"file", configFile,
		"feeds", len(feedConfig.Feeds),
		"keywords", len(feedConfig.Keywords),
		"channels", len(feedConfig.Channels))

	return feedConfig, nil
}

func parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var feedConfig Config
	if err := yaml.Unmarshal(data, &feedConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&feedConfig)

	return &feedConfig, nil
}

func applyDefaults(feedConfig *Config) {
	if feedConfig.Settings.MaxItems == 0 {
		feedConfig.Settings.MaxItems = DefaultMaxItems
	}
	if feedConfig.Settings.Timeout == 0 {
		feedConfig.Settings.Timeout = DefaultTimeout
	}
	if feedConfig.Settings.FetchConcurrency == 0 {
		feedConfig.Settings.FetchConcurrency = DefaultFetchConcurrency
	}

	for i := range feedConfig.Feeds {
		src := &feedConfig.Feeds[i]
		src.Name = strings.TrimSpace(src.Name)
		src.URL = strings.TrimSpace(src.URL)
		src.Fallback = strings.TrimSpace(src.Fallback)
	}
}

func validateConfig(feedConfig *Config) error {
	if feedConfig == nil {
		return fmt.Errorf("feedConfig is nil")
	}

	if len(feedConfig.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}

	names := make(map[string]bool, len(feedConfig.Feeds))
	for i, src := range feedConfig.Feeds {
		requiredFeedFields := map[string]string{
			"feed name": src.Name,
			"feed URL":  src.URL,
		}

		for fieldName, fieldValue := range requiredFeedFields {
			if fieldValue == "" {
				return fmt.Errorf("%s is required at index %d", fieldName, i)
			}
		}

		if names[src.Name] {
			return fmt.Errorf("duplicate feed name: %s", src.Name)
		}
		names[src.Name] = true
	}

	hasKeyword := false
	for _, keyword := range feedConfig.Keywords {
		if strings.TrimSpace(keyword) != "" {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return fmt.Errorf("at least one keyword is required")
	}

	nonNegativeFields := map[string]int{
		"max items":         feedConfig.Settings.MaxItems,
		"timeout":           feedConfig.Settings.Timeout,
		"fetch concurrency": feedConfig.Settings.FetchConcurrency,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}
