// Package config loads edulearn settings from flags, environment variables,
// an optional .env file and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/edulearn/internal/api"
	"github.com/abhisek/edulearn/internal/kv"
)

// EnvPrefix is prepended to every environment variable, so api.base_url
// is read from EDULEARN_API_BASE_URL.
const EnvPrefix = "EDULEARN"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds application configuration.
type Config struct {
	API     API     `mapstructure:"api" json:"api"`
	Storage Storage `mapstructure:"storage" json:"storage"`
	Log     Log     `mapstructure:"log" json:"log"`
	Scoring string  `mapstructure:"scoring" json:"scoring" validate:"oneof=local remote"` // where quizzes are graded
}

// API configures the REST client.
type API struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url" validate:"required,url"` // server root including /api/v1
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`           // per-request deadline
	Retry   struct {
		Attempts int `mapstructure:"attempts" json:"attempts" validate:"min=1,max=10"` // tries for idempotent requests
	} `mapstructure:"retry" json:"retry"`
}

// Storage selects where progress records live.
type Storage struct {
	Backend string `mapstructure:"backend" json:"backend" validate:"oneof=sqlite redis memory"`
	DBPath  string `mapstructure:"db_path" json:"db_path"` // sqlite file; empty means the XDG default
	Redis   Redis  `mapstructure:"redis" json:"redis"`
}

// Redis holds connection settings for the redis backend.
type Redis struct {
	Addr     string `mapstructure:"addr" json:"addr"`
	Password string `mapstructure:"password" json:"-"`
	DB       int    `mapstructure:"db" json:"db" validate:"min=0"`
	Prefix   string `mapstructure:"prefix" json:"prefix"`
}

// Log configures the zap logger.
type Log struct {
	Level string `mapstructure:"level" json:"level" validate:"oneof=debug info warn error"`
	Env   string `mapstructure:"env" json:"env" validate:"oneof=development production"`
	File  string `mapstructure:"file" json:"file"` // empty disables file logging
}

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is an explicit config file. When set it must exist.
	ConfigFile string
	// EnvFile is loaded into the process environment before reading
	// variables. Defaults to ".env"; a missing file is ignored.
	EnvFile string
	// Flags are bound over every other source. Unknown names are skipped.
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"api":       "api.base_url",
	"db":        "storage.db_path",
	"storage":   "storage.backend",
	"scoring":   "scoring",
	"log-level": "log.level",
}

// Load reads configuration. Precedence from highest: flags, environment,
// config file, defaults.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			f := opts.Flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := api.DefaultConfig()
	v.SetDefault("api.base_url", def.BaseURL)
	v.SetDefault("api.timeout", def.Timeout)
	v.SetDefault("api.retry.attempts", def.Retry.MaxAttempts)

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.db_path", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "edulearn:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "production")
	v.SetDefault("log.file", "")

	v.SetDefault("scoring", "remote")
}

// configDir returns $XDG_CONFIG_HOME/edulearn or ~/.config/edulearn.
func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "edulearn"), nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		if c.Storage.Backend == BackendRedis && c.Storage.Redis.Addr == "" {
			return errors.New("invalid config:\nstorage.redis.addr is required for the redis backend")
		}
		return c.APIConfig().Validate()
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	var msg []string
	for _, field := range fieldErrs {
		namespace := field.Namespace()
		name := namespace[strings.IndexByte(namespace, '.')+1:]
		switch field.Tag() {
		case "required":
			msg = append(msg, fmt.Sprintf("%s is required", name))
		case "oneof":
			msg = append(msg, fmt.Sprintf("%s must be one of (%s), got %q", name, field.Param(), field.Value()))
		case "url":
			msg = append(msg, fmt.Sprintf("%s must be a URL, got %q", name, field.Value()))
		default:
			msg = append(msg, fmt.Sprintf("%s failed %s=%s", name, field.Tag(), field.Param()))
		}
	}
	return fmt.Errorf("invalid config:\n%s", strings.Join(msg, "\n"))
}

// APIConfig converts the API section to client settings.
func (c *Config) APIConfig() api.Config {
	out := api.DefaultConfig()
	out.BaseURL = c.API.BaseURL
	if c.API.Timeout > 0 {
		out.Timeout = c.API.Timeout
	}
	out.Retry.MaxAttempts = c.API.Retry.Attempts
	return out
}

// RedisOptions converts the redis section to backend options.
func (c *Config) RedisOptions() kv.RedisOptions {
	return kv.RedisOptions{
		Addr:     c.Storage.Redis.Addr,
		Password: c.Storage.Redis.Password,
		DB:       c.Storage.Redis.DB,
		Prefix:   c.Storage.Redis.Prefix,
	}
}

// RemoteScoring reports whether quizzes that came from the server are
// graded by it. Catalog quizzes are always graded locally.
func (c *Config) RemoteScoring() bool {
	return c.Scoring == "remote"
}
