package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel            string        `yaml:"log_level"`
	StagingDir          string        `yaml:"staging_dir"`
	LogDir              string        `yaml:"log_dir"`
	HistoryDB           string        `yaml:"history_db"`
	PollIntervalSeconds int64         `yaml:"poll_interval_seconds"`
	ClientMemoryLimit   string        `yaml:"client_memory_limit"`
	ServerHostname      string        `yaml:"server_hostname"`
	ServerWorkdir       string        `yaml:"server_workdir"`
	ClientWorkdir       string        `yaml:"client_workdir"`
	RetainLogs          *bool         `yaml:"retain_logs"` // nil means default (true)
	Sidecar             SidecarConfig `yaml:"sidecar"`
	Replay              ReplayConfig  `yaml:"replay"`
}

type SidecarConfig struct {
	Server      string   `yaml:"server"`
	Client      string   `yaml:"client"`
	Config      string   `yaml:"config"`
	DebugBridge string   `yaml:"debug_bridge"`
	ServerArgs  []string `yaml:"server_args"`
	ClientArgs  []string `yaml:"client_args"`
}

type ReplayConfig struct {
	Volume  string `yaml:"volume"`
	LiveDir string `yaml:"live_dir"`
}

func Path() (string, error) {
	configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if configHome != "" {
		return filepath.Join(configHome, "arena", "config.yaml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "arena", "config.yaml"), nil
}

// Load reads the runtime config file. A missing file is not an error: every
// field has a working default downstream.
func Load() (Config, string, error) {
	path, err := Path()
	if err != nil {
		return Config{}, "", err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, path, nil
		}
		return Config{}, path, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := Config{}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, path, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.LogLevel = strings.TrimSpace(cfg.LogLevel)
	return cfg, path, nil
}
