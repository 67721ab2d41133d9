// Package configpath resolves which intake config file a command reads.
package configpath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/papercomputeco/intake/pkg/config"
)

const (
	// EnvVar names a config file when no flag is given.
	EnvVar = "INTAKE_CONFIG"

	// DefaultFile is read from the working directory when present.
	DefaultFile = "intake.toml"
)

// ResolveConfigPath returns the config file to load: the flag value, then
// $INTAKE_CONFIG, then ./intake.toml if it exists. An empty result means
// built-in defaults.
func ResolveConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if env := os.Getenv(EnvVar); env != "" {
		return env, nil
	}

	_, err := os.Stat(DefaultFile)
	switch {
	case err == nil:
		return DefaultFile, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("could not stat %s: %w", DefaultFile, err)
	}
}

// LoadConfig resolves the config path and loads it over the defaults. The
// returned path is empty when defaults were used.
func LoadConfig(override string) (config.Config, string, error) {
	path, err := ResolveConfigPath(override)
	if err != nil {
		return config.Config{}, "", err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, path, err
	}
	return cfg, path, nil
}
