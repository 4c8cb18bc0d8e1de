// Resolves settings from command line flags and an optional config file
package config

import (
	"github.com/andresmejia3/imglabel/internal/utils"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config mirrors the command line flags. Keys in a config file use the same
// names as the long flags.
type Config struct {
	Color       string `mapstructure:"color"`
	BannerColor string `mapstructure:"banner-color"`
	OutputDir   string `mapstructure:"output-dir"`
	OutputName  string `mapstructure:"output-name"`
	SizeMode    string `mapstructure:"size-mode"`
	Font        string `mapstructure:"font"`
	LogLevel    string `mapstructure:"log-level"`
	Quiet       bool   `mapstructure:"quiet"`
}

// Load merges flags over the config file at path (if any) over flag defaults.
// The file type follows its extension (yaml, toml, json).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &utils.ConfigError{Path: path, Err: err}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, &utils.ConfigError{Path: path, Err: err}
	}
	return &c, nil
}
