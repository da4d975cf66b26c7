// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultAPIURL is the Linear GraphQL endpoint used when no override is set.
const DefaultAPIURL = "https://api.linear.app/graphql"

// Config holds all configuration parameters for the application.
type Config struct {
	Linear LinearConfig
}

// LinearConfig holds Linear specific configuration.
type LinearConfig struct {
	// Token is the API key sent as the Authorization header
	Token string

	// APIURL overrides the GraphQL endpoint, mainly for tests and proxies
	APIURL string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("linear.token", "LINEAR_TOKEN")
	v.BindEnv("linear.api.url", "LINEAR_API_URL")

	config := &Config{
		Linear: LinearConfig{
			Token:  v.GetString("linear.token"),
			APIURL: v.GetString("linear.api.url"),
		},
	}

	if config.Linear.APIURL == "" {
		config.Linear.APIURL = DefaultAPIURL
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.Linear.Token == "" {
		missingVars = append(missingVars, "LINEAR_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
