// Package config loads service configuration from file and environment.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

const (
	cfgKeyDBPath        = "db_path"
	cfgKeySchemaDir     = "schema_dir"
	cfgKeySkipUnchanged = "skip_unchanged_events"
	cfgKeyLogLevel      = "log_level"

	defaultDBPath   = "sightline.db"
	defaultLogLevel = "info"
)

// Config is the resolved service configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `mapstructure:"db_path"`

	// SchemaDir holds the entity-type definition files (*.cue). Empty
	// means no types are registered and every write fails type lookup.
	SchemaDir string `mapstructure:"schema_dir"`

	// SkipUnchangedEvents suppresses Updated change events whose before
	// and after images are identical.
	SkipUnchangedEvents bool `mapstructure:"skip_unchanged_events"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(cfgKeyDBPath, defaultDBPath)
	v.SetDefault(cfgKeySchemaDir, "")
	v.SetDefault(cfgKeySkipUnchanged, false)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
}

// Load resolves configuration with the usual precedence: environment
// (SIGHTLINE_*) over config file over defaults. path may be empty, in
// which case only environment and defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SIGHTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals configuration from a prepared Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}
