package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the runtime settings for flatvol.
type Config struct {
	ImagePath    string `mapstructure:"image_path"`
	VerifyOnRead bool   `mapstructure:"verify_on_read"`
}

// Load reads the flatvol configuration using Viper. Settings come from a
// flatvol-config.yaml file if one is found, FLATVOL_* environment variables,
// and built-in defaults, in that order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("flatvol-config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.flatvol")

	// Set defaults
	v.SetDefault("image_path", "flatvol.img")
	v.SetDefault("verify_on_read", false)

	// Allow environment variables
	v.SetEnvPrefix("FLATVOL")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
