// Package config reads per-user default settings for mkf439, stored as
// one-line files in the configuration directory.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Dir returns the configuration directory: $F439_CONFIG_DIR if set,
// typically ~/.config/f439 on Linux otherwise.
func Dir() string {
	if dir := os.Getenv("F439_CONFIG_DIR"); dir != "" {
		return dir
	}
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(userConfigDir, "f439")
}

// ReadFile returns the trimmed contents of configBaseName within Dir.
func ReadFile(configBaseName string) (string, error) {
	dir := Dir()
	if dir == "" {
		return "", os.ErrNotExist
	}
	b, err := os.ReadFile(filepath.Join(dir, configBaseName))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Bool returns the boolean stored in configBaseName, or def if the file
// does not exist or does not hold a boolean.
func Bool(configBaseName string, def bool) bool {
	s, err := ReadFile(configBaseName)
	if err != nil {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
