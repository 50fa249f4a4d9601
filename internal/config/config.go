// Package config loads server configuration from the environment with an
// optional YAML overlay file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration.
type Config struct {
	Port string `yaml:"port"`

	// Photo source
	SourceBaseURL string `yaml:"sourceBaseUrl"`
	SourceToken   string `yaml:"sourceToken"`
	PageSize      int    `yaml:"pageSize"`

	// Cloud storage
	CloudBaseURL    string `yaml:"cloudBaseUrl"`
	CloudToken      string `yaml:"cloudToken"`
	UploadFolder    string `yaml:"uploadFolder"`
	UploadOverwrite bool   `yaml:"uploadOverwrite"`

	// Transport
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	MaxInFlight    int           `yaml:"maxInFlight"`
}

// Load reads configuration from the environment, falling back to defaults.
func Load() Config {
	return Config{
		Port:            getEnv("PORT", "8080"),
		SourceBaseURL:   getEnv("SOURCE_BASE_URL", ""),
		SourceToken:     getEnv("SOURCE_TOKEN", ""),
		PageSize:        getEnvInt("SOURCE_PAGE_SIZE", 100),
		CloudBaseURL:    getEnv("CLOUD_BASE_URL", ""),
		CloudToken:      getEnv("CLOUD_TOKEN", ""),
		UploadFolder:    getEnv("UPLOAD_FOLDER", "/photo-backup"),
		UploadOverwrite: getEnvBool("UPLOAD_OVERWRITE", false),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxInFlight:     getEnvInt("MAX_IN_FLIGHT", 8),
	}
}

// LoadWithFile loads environment configuration and applies a YAML overlay on
// top when path exists. A missing file is not an error; a malformed one is.
func LoadWithFile(path string) (Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
