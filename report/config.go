package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const configFilePath = "config.json"

// Config represents the application's configuration structure.
type Config struct {
	DatabaseDSN   string `json:"database-dsn" mapstructure:"database-dsn"`
	Family        string `json:"family" mapstructure:"family"`
	SnapshotStart string `json:"snapshot-start" mapstructure:"snapshot-start"`
	SnapshotEnd   string `json:"snapshot-end" mapstructure:"snapshot-end"`
	Strategy      string `json:"strategy" mapstructure:"strategy"`
	Clusters      int    `json:"clusters" mapstructure:"clusters"`
	Metric        string `json:"metric" mapstructure:"metric"`
	OutputPath    string `json:"output-path" mapstructure:"output-path"`
	LogLevel      string `json:"log-level" mapstructure:"log-level"`
}

var requiredFields = []string{
	"database-dsn",
	"family",
}

// field: default value
var optionalFields = map[string]interface{}{
	"output-path": "report.json",
	"log-level":   "INFO",
}

// InitConfig reads configuration from a JSON file and environment variables.
// Environment variables take precedence over the config file.
func InitConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configFilePath)
	v.SetConfigType("json")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	for _, field := range requiredFields {
		v.BindEnv(field)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	for _, field := range requiredFields {
		if !v.IsSet(field) {
			return nil, fmt.Errorf("missing required config field: %s", field)
		}
	}

	for optField, defaultValue := range optionalFields {
		if !v.IsSet(optField) {
			v.Set(optField, defaultValue)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	return &config, nil
}
