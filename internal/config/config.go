// Package config loads the dawgc configuration from an optional file,
// DAWGC_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"runtime"
	"strings"

	dawg "github.com/milden6/dawgdic"
	"github.com/milden6/dawgdic/dela"
	"github.com/milden6/dawgdic/internal/log"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "DAWGC"

// Config holds all configuration settings.
type Config struct {
	Log      log.Conf     `mapstructure:"log"`
	Compress CompressConf `mapstructure:"compress"`
}

// CompressConf configures dictionary compilation.
type CompressConf struct {
	Flip      bool   `mapstructure:"flip"`
	Encoding  string `mapstructure:"encoding"`
	MaxHeight int    `mapstructure:"maxHeight"`
	MaxNodes  int    `mapstructure:"maxNodes"`
	Workers   int    `mapstructure:"workers"`
	OutDir    string `mapstructure:"outDir"`
}

// flag name => configuration key
var flagKeys = map[string]string{
	"flip":       "compress.flip",
	"encoding":   "compress.encoding",
	"max-height": "compress.maxHeight",
	"max-nodes":  "compress.maxNodes",
	"workers":    "compress.workers",
	"out-dir":    "compress.outDir",
	"log-level":  "log.level",
}

// New returns a viper instance holding the defaults and reading the
// environment.
func New() *viper.Viper {
	v := viper.New()

	logConf := log.SetDefaults()
	v.SetDefault("log.output", logConf.Output)
	v.SetDefault("log.path", logConf.Path)
	v.SetDefault("log.filename", logConf.Filename)
	v.SetDefault("log.level", logConf.Level)
	v.SetDefault("log.rotateSize", logConf.RotateSize)
	v.SetDefault("log.rotateNum", logConf.RotateNum)
	v.SetDefault("log.keepDays", logConf.KeepDays)

	v.SetDefault("compress.flip", false)
	v.SetDefault("compress.encoding", "utf16le")
	v.SetDefault("compress.maxHeight", dawg.DefaultMaxHeight)
	v.SetDefault("compress.maxNodes", 0)
	v.SetDefault("compress.workers", runtime.NumCPU())
	v.SetDefault("compress.outDir", "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the known flags of flags to their configuration keys.
// Flags the set does not define are ignored.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "bind flag %s", name)
		}
	}
	return nil
}

// Load reads file, if not empty, and returns the validated configuration.
// The file type is taken from its extension (toml, yaml, json...).
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return errors.WithMessage(err, "log")
	}
	if _, err := dela.LookupEncoding(c.Compress.Encoding); err != nil {
		return errors.WithMessage(err, "compress")
	}
	if c.Compress.MaxHeight < 0 {
		return errors.Errorf("compress: negative maxHeight %d", c.Compress.MaxHeight)
	}
	if c.Compress.MaxNodes < 0 {
		return errors.Errorf("compress: negative maxNodes %d", c.Compress.MaxNodes)
	}
	if c.Compress.Workers < 0 {
		return errors.Errorf("compress: negative workers %d", c.Compress.Workers)
	}
	return nil
}
