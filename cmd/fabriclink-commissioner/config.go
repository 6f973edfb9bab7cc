package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the commissioner configuration.
// It implements interactive.CommissionerConfig.
type Config struct {
	ConfigFile          string
	PlatformValue       string
	BackendURLValue     string
	AuthToken           string
	StateDir            string
	RoutingFile         string
	LogFile             string
	LogLevel            string
	ConfirmationTimeout time.Duration
	StepDelay           time.Duration

	// One-shot and mode flags; command line only.
	Interactive bool
	Payload     string
	FabricID    string
	GroupID     string
}

// Platform implements interactive.CommissionerConfig.
func (c *Config) Platform() string {
	return c.PlatformValue
}

// BackendURL implements interactive.CommissionerConfig.
func (c *Config) BackendURL() string {
	return c.BackendURLValue
}

// fileConfig is the YAML form of Config. Durations are strings in Go
// duration syntax ("10m", "500ms").
type fileConfig struct {
	Platform            string `yaml:"platform"`
	BackendURL          string `yaml:"backend_url"`
	AuthToken           string `yaml:"auth_token"`
	StateDir            string `yaml:"state_dir"`
	RoutingFile         string `yaml:"routing_file"`
	LogFile             string `yaml:"log_file"`
	LogLevel            string `yaml:"log_level"`
	ConfirmationTimeout string `yaml:"confirmation_timeout"`
	StepDelay           string `yaml:"step_delay"`
}

// loadConfigFile overlays YAML config file values onto config. Fields absent
// from the file keep their current values.
func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	applyString(&config.PlatformValue, file.Platform)
	applyString(&config.BackendURLValue, file.BackendURL)
	applyString(&config.AuthToken, file.AuthToken)
	applyString(&config.StateDir, file.StateDir)
	applyString(&config.RoutingFile, file.RoutingFile)
	applyString(&config.LogFile, file.LogFile)
	applyString(&config.LogLevel, file.LogLevel)
	if err := applyDuration(&config.ConfirmationTimeout, file.ConfirmationTimeout); err != nil {
		return fmt.Errorf("config file %s: confirmation_timeout: %w", path, err)
	}
	if err := applyDuration(&config.StepDelay, file.StepDelay); err != nil {
		return fmt.Errorf("config file %s: step_delay: %w", path, err)
	}
	return nil
}

func applyString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func applyDuration(dst *time.Duration, value string) error {
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

// configFileFromArgs extracts the -config flag value before flag parsing, so
// the file can seed defaults that explicit flags then override.
func configFileFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-config" || arg == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "-config="):
			return strings.TrimPrefix(arg, "-config=")
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}
