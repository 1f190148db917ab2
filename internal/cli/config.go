package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = ".contractdoc"
	configFileType = "yaml"

	cfgKeyTitle  = "title"
	cfgKeyFormat = "format"
	cfgKeyAddr   = "addr"
	cfgKeyStyle  = "style"

	defaultFormat = "markdown"
	defaultAddr   = "127.0.0.1:8080"
	defaultStyle  = "auto"
)

// Config is the contents of .contractdoc.yaml, after flags have been
// applied on top. InspectionDepth is nil unless the file sets it, leaving
// CONTRACTS_INSPECTION_DEPTH in charge.
type Config struct {
	Title           string `mapstructure:"title"`
	Format          string `mapstructure:"format"`
	Addr            string `mapstructure:"addr"`
	InspectionDepth *int   `mapstructure:"inspection_depth"`
	Style           string `mapstructure:"style"`
}

// newViper returns a viper instance reading configFile, or .contractdoc.yaml
// from the working directory when configFile is empty.
func newViper(configFile string) *viper.Viper {
	v := viper.New()
	v.SetDefault(cfgKeyFormat, defaultFormat)
	v.SetDefault(cfgKeyAddr, defaultAddr)
	v.SetDefault(cfgKeyStyle, defaultStyle)
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	return v
}

// loadConfig reads the config file, if there is one. A missing
// .contractdoc.yaml is not an error; a missing explicit --config file is.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet, explicit bool) (Config, error) {
	for _, key := range []string{cfgKeyTitle, cfgKeyFormat, cfgKeyAddr, cfgKeyStyle} {
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", key, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
