package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - NIDO_CONFIG_PATH: config file location (default: ~/.config/nido.toml)
//   - NIDO_HOME: base directory for nido data (default: ~/.local/share/nido)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking NIDO_CONFIG_PATH first,
// then falling back to the default ~/.config/nido.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("NIDO_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "nido.toml"), nil
}

// getBaseDir returns the base directory for nido data, checking NIDO_HOME first,
// then falling back to the XDG default ~/.local/share/nido.
func getBaseDir() (string, error) {
	if path := os.Getenv("NIDO_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "nido"), nil
}
