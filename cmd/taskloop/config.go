package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tailored-agentic-units/taskloop/core/config"
	"github.com/tailored-agentic-units/taskloop/kernel"
)

// loadEnvFile exports the variables of path without overriding the
// environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func logLevel() string {
	if level := viper.GetString("log-level"); level != "" {
		return level
	}
	if debug, _ := strconv.ParseBool(os.Getenv("DEBUG")); debug {
		return "debug"
	}
	return "info"
}

// loadConfig layers the config file over the defaults, then the provider
// variables from the environment, then command-line flags.
func loadConfig() (*kernel.Config, error) {
	var cfg *kernel.Config
	if path := viper.GetString("config"); path != "" {
		loaded, err := kernel.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		defaults := kernel.DefaultConfig()
		cfg = &defaults
	}

	cfg.Agent.Merge(&config.AgentConfig{
		Provider: &config.ProviderConfig{
			BaseURL: os.Getenv("API_URL"),
			APIKey:  os.Getenv("API_KEY"),
		},
		Model: &config.ModelConfig{
			Name: os.Getenv("MODEL_NAME"),
		},
	})

	if backend := viper.GetString("session-backend"); backend != "" {
		cfg.Session.Backend = backend
	}
	if path := viper.GetString("session-path"); path != "" {
		cfg.Session.Path = path
	}
	if observer := loggingObserver(); observer != "" && cfg.Observer != "noop" {
		cfg.Observer = observer
	}
	return cfg, nil
}
