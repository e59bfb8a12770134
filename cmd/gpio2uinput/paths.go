package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appName = "gpio2uinput"

// defaultConfigDir returns $XDG_CONFIG_HOME/gpio2uinput or
// ~/.config/gpio2uinput.
func defaultConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", appName), nil
	}
	return "", errors.New("HOME not set")
}

// ensureDir creates the parent directory of filePath.
func ensureDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0o755)
}

// checkUserConfig fails when an explicitly named config file cannot be
// read. The default candidate locations are optional and never checked.
func checkUserConfig(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config file: %s is a directory", path)
	}
	return nil
}

// configCandidatePaths builds candidate paths for config files per format.
// A user path comes first and is routed to a loader by its extension.
func configCandidatePaths(userPath string) (jsonPaths, yamlPaths, tomlPaths []string) {
	add := func(slice *[]string, p string) { *slice = append(*slice, p) }
	addAll := func(dir, base string) {
		add(&jsonPaths, filepath.Join(dir, base+".json"))
		add(&yamlPaths, filepath.Join(dir, base+".yaml"))
		add(&yamlPaths, filepath.Join(dir, base+".yml"))
		add(&tomlPaths, filepath.Join(dir, base+".toml"))
	}

	if userPath != "" {
		switch filepath.Ext(userPath) {
		case ".yaml", ".yml":
			add(&yamlPaths, userPath)
		case ".toml":
			add(&tomlPaths, userPath)
		default:
			add(&jsonPaths, userPath)
		}
	}

	if wd, err := os.Getwd(); err == nil {
		addAll(wd, appName)
	}
	if dir, err := defaultConfigDir(); err == nil {
		addAll(dir, "config")
	}
	addAll(filepath.Join("/etc", appName), "config")
	return
}
