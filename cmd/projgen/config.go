package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of environment variables overriding settings.
const envPrefix = "PROJGEN"

// settings holds the CLI configuration after flags, environment and the
// optional config file are merged.
type settings struct {
	Manifest string `mapstructure:"manifest"`
	Output   string `mapstructure:"output"`
	Jobs     int    `mapstructure:"jobs"`
	Verbose  bool   `mapstructure:"verbose"`
	Quiet    bool   `mapstructure:"quiet"`
	NoColor  bool   `mapstructure:"no-color"`
	Dump     bool   `mapstructure:"dump"`
}

// loadSettings merges, by increasing precedence: defaults, the config
// file, PROJGEN_* environment variables and explicitly set flags.
func loadSettings(cmd *cobra.Command, configFile string) (*settings, error) {
	v := viper.New()

	v.SetDefault("manifest", "projgen.yaml")
	v.SetDefault("jobs", 0)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &s, nil
}
