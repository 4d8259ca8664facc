package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ReadConfig loads ./data/config.yaml (or the file at path, when given) into the
// global viper instance. Environment variables override file values, e.g.
// LOCATOR_AVERAGE_SPEED for average_speed.
func ReadConfig(path string) error {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./data/")
	}
	viper.SetEnvPrefix("locator")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			// defaults + env only
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
