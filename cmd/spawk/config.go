package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
)

// cliConfig holds user defaults loaded from the config file. Flags
// override anything set here.
type cliConfig struct {
	Follow followConfig `toml:"follow"`
	Output outputConfig `toml:"output"`
}

type followConfig struct {
	// Interval between polls of a followed file, e.g. "500ms".
	Interval duration `toml:"interval"`
}

type outputConfig struct {
	// Color is one of auto, on, off.
	Color string `toml:"color"`
}

// duration lets TOML carry Go duration strings.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func defaultConfig() cliConfig {
	return cliConfig{
		Follow: followConfig{Interval: duration{time.Second}},
		Output: outputConfig{Color: "auto"},
	}
}

// loadConfig reads ~/.config/spawk/config.toml (per os.UserConfigDir).
// A missing file is not an error; defaults apply.
func loadConfig() (cliConfig, error) {
	cfg := defaultConfig()
	dir, err := os.UserConfigDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(dir, "spawk", "config.toml")
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to load %q: %w", path, err)
	}
	if cfg.Follow.Interval.Duration <= 0 {
		cfg.Follow.Interval = duration{time.Second}
	}
	return cfg, nil
}

// applyColorMode resolves the --color flag against the config default
// and configures the color package. "auto" leaves terminal detection
// to the library.
func applyColorMode(flagValue string, cfg cliConfig) error {
	mode := flagValue
	if mode == "" {
		mode = cfg.Output.Color
	}
	switch mode {
	case "", "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid color mode %q (want auto, on or off)", mode)
	}
	return nil
}
