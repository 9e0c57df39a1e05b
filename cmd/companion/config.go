package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/syssam/companion/compiler/gen"
	"github.com/syssam/companion/compiler/emit"
)

// ConfigName is the base name of the project configuration file.
const ConfigName = "companion"

// Config is the command configuration, read from companion.yaml, the
// COMPANION_* environment and flags, in increasing precedence.
type Config struct {
	Dir        string            `mapstructure:"dir"`
	Target     string            `mapstructure:"target"`
	Suffixes   map[string]string `mapstructure:"suffixes"`
	Workers    int               `mapstructure:"workers"`
	Header     string            `mapstructure:"header"`
	BuildTags  []string          `mapstructure:"tags"`
	Verbose    int               `mapstructure:"verbose"`
	JSONLog    bool              `mapstructure:"json-log"`
	Debounce   int               `mapstructure:"debounce-ms"`
	ConfigFile string            `mapstructure:"-"`
}

// setDefaults sets the default of every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("dir", ".")
	v.SetDefault("target", gen.DefaultTarget)
	v.SetDefault("workers", 0)
	v.SetDefault("header", emit.DefaultHeader)
	v.SetDefault("verbose", 0)
	v.SetDefault("json-log", false)
	v.SetDefault("debounce-ms", 300)
}

// newViper returns a viper instance reading COMPANION_* variables.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("COMPANION")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// loadConfig reads the configuration file, if any, and returns the merged
// configuration. An explicit file must exist; otherwise companion.yaml is
// looked up in the working directory.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir := v.GetString("dir")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "config: read")
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, errors.Wrapf(err, "config: resolve %s", cfg.Dir)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.WithHint(errors.Wrapf(err, "config: dir %s", cfg.Dir), "set --dir to the module to generate")
	}
	cfg.Dir = dir
	return &cfg, nil
}

// options returns the generator options of c.
func (c *Config) options() []gen.Option {
	opts := []gen.Option{gen.WithTarget(c.Target)}
	if len(c.Suffixes) > 0 {
		suffixes := make(map[gen.Role]string, len(c.Suffixes))
		for role, suffix := range c.Suffixes {
			suffixes[gen.Role(strings.ToLower(role))] = suffix
		}
		opts = append(opts, gen.WithSuffixes(suffixes))
	}
	if c.Workers != 0 {
		opts = append(opts, gen.WithWorkers(c.Workers))
	}
	return opts
}
