package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the client
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds backend endpoint configuration
type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Secure bool   `yaml:"secure"` // use wss/https when true
}

// AuthConfig holds session credential configuration
type AuthConfig struct {
	Token string `yaml:"token"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file. The session token may be
// overridden by the SOCIAL_TOKEN environment variable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if token := os.Getenv("SOCIAL_TOKEN"); token != "" {
		cfg.Auth.Token = token
	}

	return &cfg, nil
}

// SocketURL returns the websocket endpoint of the backend
func (c *ServerConfig) SocketURL() string {
	scheme := "ws"
	if c.Secure {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/ws", scheme, c.Host, c.Port)
}

// UploadURL returns the file upload endpoint of the backend
func (c *ServerConfig) UploadURL() string {
	scheme := "http"
	if c.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d/upload", scheme, c.Host, c.Port)
}
