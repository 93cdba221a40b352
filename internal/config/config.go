// Package config loads memento settings from a TOML file, MEMENTO_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName = "memento"
	configType = "toml"
	envPrefix  = "MEMENTO"
	fileMode   = 0o644
	dirMode    = 0o755
)

// Keys understood by Load. Flags are bound to these names.
const (
	KeyDB           = "db"
	KeyModel        = "model"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
	KeyOutputFormat = "output.format"
)

// Config is the resolved configuration.
type Config struct {
	DB     string       `mapstructure:"db" toml:"db" validate:"required"`
	Model  string       `mapstructure:"model" toml:"model"`
	Log    LogConfig    `mapstructure:"log" toml:"log"`
	Output OutputConfig `mapstructure:"output" toml:"output"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" toml:"format" validate:"oneof=text json"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" toml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DB:     "memento.db",
		Model:  "model",
		Log:    LogConfig{Level: "info", Format: "text"},
		Output: OutputConfig{Format: "text"},
	}
}

var validate = validator.New()

// Validate checks field values.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s: failed %q (got %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value()))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps Log.Level to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads the configuration through v. With an explicit path the file
// must exist; otherwise memento.toml is searched in the working directory
// and the user config directory, and a missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	def := Default()
	v.SetDefault(KeyDB, def.DB)
	v.SetDefault(KeyModel, def.Model)
	v.SetDefault(KeyLogLevel, def.Log.Level)
	v.SetDefault(KeyLogFormat, def.Log.Format)
	v.SetDefault(KeyOutputFormat, def.Output.Format)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType(configType)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write stores cfg as TOML at path, replacing any existing file atomically.
func Write(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".memento-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	cleanup = false
	return nil
}
