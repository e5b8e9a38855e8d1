// Package config loads the YAML file that supplies the resolution engine's
// cross-request knobs: the module proxy URL, the strict-vendor policy, and
// the download retry budget.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for gomod-prefetch.
type Config struct {
	GoproxyURL            string `yaml:"goproxy_url"`
	GomodStrictVendor     bool   `yaml:"gomod_strict_vendor"`
	GomodDownloadMaxTries int    `yaml:"gomod_download_max_tries"`
}

const defaultDownloadMaxTries = 5

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment
// variables and resolving the proxy URL's file-path form.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	cfg.GoproxyURL = resolveSecret(cfg.GoproxyURL)

	if cfg.GomodDownloadMaxTries <= 0 {
		cfg.GomodDownloadMaxTries = defaultDownloadMaxTries
	}

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".gomod-prefetch.yaml",
		".gomod-prefetch.yml",
		"gomod-prefetch.yaml",
		"gomod-prefetch.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// resolveSecret expands environment variable references (${VAR}) and, if
// the resulting string is a path to an existing file, reads the value from
// the file. It generalizes the token-from-env-or-file pattern to a single
// proxy URL field instead of a list of provider tokens.
func resolveSecret(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("read value from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if cfg.GomodDownloadMaxTries < 1 {
		return errors.New("gomod_download_max_tries must be at least 1")
	}
	return nil
}
