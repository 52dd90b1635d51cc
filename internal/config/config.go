package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"studyclock/internal/core/model"
	"studyclock/internal/input"
)

const defaultsFileName = "config.yaml"

// Durations use the same free-form syntax the control boundary accepts:
// "M:S" or a bare number of minutes.
type yamlDefaults struct {
	Study    string `yaml:"study"`
	Break    string `yaml:"break"`
	Sessions int    `yaml:"sessions"`
}

// Path resolves the chain defaults file for appName.
func Path(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, defaultsFileName), nil
}

// Load reads chain defaults from the user config file. If the file does not
// exist, stock defaults are returned. The file is user-authored and only ever
// read; nothing is written back.
func Load(appName string) (model.ChainConfig, error) {
	defaults := model.DefaultChainConfig()
	configPath, err := Path(appName)
	if err != nil {
		return defaults, err
	}

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("read defaults file: %w", err)
	}

	var fileData yamlDefaults
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return defaults, fmt.Errorf("parse defaults yaml: %w", err)
	}

	if err := applyYamlDefaults(&defaults, fileData); err != nil {
		return model.DefaultChainConfig(), err
	}
	return defaults, nil
}

func applyYamlDefaults(defaults *model.ChainConfig, fileData yamlDefaults) error {
	if fileData.Study != "" {
		studyLimit, err := input.ParseSpan(fileData.Study)
		if err != nil {
			return fmt.Errorf("study: %w", err)
		}
		defaults.StudyLimit = studyLimit
	}
	if fileData.Break != "" {
		breakLimit, err := input.ParseSpan(fileData.Break)
		if err != nil {
			return fmt.Errorf("break: %w", err)
		}
		defaults.BreakLimit = breakLimit
	}
	if fileData.Sessions != 0 {
		if fileData.Sessions < 1 {
			return fmt.Errorf("%w: bad session count %d", model.ErrInvalidConfiguration, fileData.Sessions)
		}
		defaults.TotalSessions = fileData.Sessions
	}
	return nil
}
