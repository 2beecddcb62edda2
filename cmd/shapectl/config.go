package main

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wippyai/dynshape/bincode"
)

// Config is the shapectl configuration from shapectl.yaml, SHAPECTL_*
// environment variables and flags, in increasing precedence.
type Config struct {
	ByteOrder          string `mapstructure:"byte_order"`
	AllowTrailingBytes bool   `mapstructure:"allow_trailing_bytes"`
	Limit              uint64 `mapstructure:"limit"`
	Color              string `mapstructure:"color"`
	Verbose            bool   `mapstructure:"verbose"`
}

// loadConfig reads the config file at path, or shapectl.yaml from the
// working directory when path is empty. A missing default file is not an
// error.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("byte_order", "little")
	v.SetDefault("allow_trailing_bytes", true)
	v.SetDefault("limit", 0)
	v.SetDefault("color", "auto")
	v.SetDefault("verbose", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("shapectl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("shapectl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range map[string]string{
			"byte_order":           "byte-order",
			"allow_trailing_bytes": "allow-trailing-bytes",
			"limit":                "limit",
			"color":                "color",
			"verbose":              "verbose",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.ByteOrder) {
	case "little", "le", "big", "be":
	default:
		return fmt.Errorf("byte_order must be little or big, got %q", c.ByteOrder)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	return nil
}

// Options returns the framing options the config selects.
func (c *Config) Options() bincode.Options {
	opts := bincode.DefaultOptions()
	switch strings.ToLower(c.ByteOrder) {
	case "big", "be":
		opts.ByteOrder = binary.BigEndian
	default:
		opts.ByteOrder = binary.LittleEndian
	}
	opts.AllowTrailingBytes = c.AllowTrailingBytes
	opts.Limit = c.Limit
	return opts
}
