package app

import (
	"os"
	"path/filepath"
)

// App is what the CLI commands work against.
type App struct {
	*Wire
	ConfigPath string
}

// New loads the config at configPath (default: ConfigFile under home) and
// wires the app. home is created if missing.
func New(home, configPath string) (*App, error) {
	if err := os.MkdirAll(home, 0o700); err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = filepath.Join(home, ConfigFile)
	}
	cfg, err := LoadConfig(configPath, home)
	if err != nil {
		return nil, err
	}
	w, err := NewWire(cfg)
	if err != nil {
		return nil, err
	}
	return &App{Wire: w, ConfigPath: configPath}, nil
}
