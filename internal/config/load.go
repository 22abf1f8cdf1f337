package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "heatlink"
	configFile = "config.yaml"
)

// GetConfigDir returns the OS-appropriate configuration directory for
// the application:
//   - Linux: $XDG_CONFIG_HOME/heatlink or $HOME/.config/heatlink
//   - macOS: $HOME/.config/heatlink (following XDG convention on macOS)
//   - Windows: %LOCALAPPDATA%\heatlink
func GetConfigDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".config", appName)

	default:
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetConfigPath returns the full path to the default configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// Load reads and validates a configuration file. An empty path selects
// the platform default location.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = GetConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", cfg.Version)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = DefaultPort
	}
	if cfg.Gateway.ServerName == "" {
		cfg.Gateway.ServerName = DefaultServerName
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = DefaultClientID
	}
}

func validate(cfg *Config) error {
	if cfg.Gateway.Host == "" {
		return fmt.Errorf("gateway.host is required")
	}
	if cfg.Gateway.CertFile == "" || cfg.Gateway.KeyFile == "" {
		return fmt.Errorf("gateway.cert_file and gateway.key_file are required (the gateway demands a client certificate)")
	}
	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	if len(cfg.Devices) == 0 {
		return fmt.Errorf("at least one device must be configured under devices")
	}
	for addr, points := range cfg.Devices {
		if addr == "" {
			return fmt.Errorf("devices: empty bus address key")
		}
		if len(points) == 0 {
			return fmt.Errorf("device %q: no datapoints configured", addr)
		}
		for i, p := range points {
			if p.InfoNumber <= 0 {
				return fmt.Errorf("device %q datapoint %d: info_number must be positive", addr, i)
			}
			if p.Name == "" {
				return fmt.Errorf("device %q datapoint %d: name is required", addr, i)
			}
			if p.Divisor < 0 {
				return fmt.Errorf("device %q datapoint %q: divisor must not be negative", addr, p.Name)
			}
		}
	}
	return nil
}
