// Package config loads flexgantt settings.
//
// Settings come from three layers, each overriding the previous one:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/flexgantt/config.toml
//  3. environment variables (PORT, DATABASE_URL, DB_*, MONGO_URI, REDIS_URL,
//     FLEXGANTT_STORE, FLEXGANTT_LOG_LEVEL)
//
// Command-line flags are applied by the CLI on top of the loaded Config.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/pipeline"
	"github.com/flexgantt/flexgantt/pkg/store"
)

// AppName names the configuration and cache directories.
const AppName = "flexgantt"

// Defaults.
const (
	DefaultPort          = 6001
	DefaultReadTimeout   = 15 * time.Second
	DefaultWriteTimeout  = 60 * time.Second
	DefaultDBHost        = "localhost"
	DefaultDBPort        = 5432
	DefaultDBName        = "flexiblegantt"
	DefaultDBUser        = "postgres"
	DefaultCacheBackend  = "file"
	DefaultLogLevel      = "info"
	DefaultMongoDatabase = store.DefaultMongoDatabase
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
	Gantt    GanttConfig    `toml:"gantt"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host         string        `toml:"host"`
	Port         int           `toml:"port" validate:"gte=1,lte=65535"`
	ReadTimeout  time.Duration `toml:"read_timeout" validate:"gte=0"`
	WriteTimeout time.Duration `toml:"write_timeout" validate:"gte=0"`
}

// DatabaseConfig selects the task store.
//
// For Postgres, URL wins over the discrete Host/Port/Name/User/Password
// fields.
type DatabaseConfig struct {
	Store    string `toml:"store" validate:"oneof=memory postgres mongo"`
	URL      string `toml:"url"`
	Host     string `toml:"host"`
	Port     int    `toml:"port" validate:"gte=0,lte=65535"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SSLMode  string `toml:"sslmode"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects where built rows are memoized.
type CacheConfig struct {
	Backend  string `toml:"backend" validate:"oneof=none file redis"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// GanttConfig holds row-building defaults.
type GanttConfig struct {
	LaneHeight      int `toml:"lane_height"`
	VerticalPadding int `toml:"vertical_padding"`
	MaxCombinations int `toml:"max_combinations"`
	Concurrency     int `toml:"concurrency"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         DefaultPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
		},
		Database: DatabaseConfig{
			Store:         store.BackendMemory,
			Host:          DefaultDBHost,
			Port:          DefaultDBPort,
			Name:          DefaultDBName,
			User:          DefaultDBUser,
			SSLMode:       "disable",
			MongoDatabase: DefaultMongoDatabase,
		},
		Cache: CacheConfig{
			Backend: DefaultCacheBackend,
			Prefix:  AppName + ":",
		},
		Gantt: GanttConfig{
			LaneHeight:      pipeline.DefaultLaneHeight,
			VerticalPadding: pipeline.DefaultVerticalPadding,
			MaxCombinations: pipeline.DefaultMaxCombinations,
			Concurrency:     pipeline.DefaultConcurrency,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads path (or the default config file when path is empty), then
// applies environment overrides. A missing default file is not an error; a
// missing explicit path is.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if os.IsNotExist(err) {
				if explicit {
					return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
				}
			} else {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse %s", path)
			}
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	envInt := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidConfiguration, "%s must be an integer, got %q", key, v)
		}
		*dst = n
		return nil
	}
	envStr := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if err := envInt("PORT", &c.Server.Port); err != nil {
		return err
	}
	envStr("FLEXGANTT_STORE", &c.Database.Store)
	envStr("DATABASE_URL", &c.Database.URL)
	envStr("DB_HOST", &c.Database.Host)
	if err := envInt("DB_PORT", &c.Database.Port); err != nil {
		return err
	}
	envStr("DB_NAME", &c.Database.Name)
	envStr("DB_USER", &c.Database.User)
	envStr("DB_PASSWORD", &c.Database.Password)
	envStr("MONGO_URI", &c.Database.MongoURI)
	envStr("REDIS_URL", &c.Cache.RedisURL)
	envStr("FLEXGANTT_LOG_LEVEL", &c.Log.Level)

	// A connection URL on its own is enough to pick the backend.
	if getenv("FLEXGANTT_STORE") == "" && c.Database.Store == store.BackendMemory {
		switch {
		case getenv("DATABASE_URL") != "":
			c.Database.Store = store.BackendPostgres
		case getenv("MONGO_URI") != "":
			c.Database.Store = store.BackendMongo
		}
	}
	if getenv("REDIS_URL") != "" && c.Cache.Backend == DefaultCacheBackend {
		c.Cache.Backend = "redis"
	}
	return nil
}

// Validate checks field ranges and backend requirements.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "invalid configuration")
	}
	if c.Database.Store == store.BackendMongo && c.Database.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "mongo store needs mongo_uri or MONGO_URI")
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfiguration, "redis cache needs redis_url or REDIS_URL")
	}
	return nil
}

// PostgresDSN returns the lib/pq connection URL.
func (d DatabaseConfig) PostgresDSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else if d.User != "" {
		u.User = url.User(d.User)
	}
	if d.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(d.SSLMode)
	}
	return u.String()
}

// StoreConfig converts d into the store package's settings.
func (d DatabaseConfig) StoreConfig() store.Config {
	return store.Config{
		Backend:       d.Store,
		PostgresDSN:   d.PostgresDSN(),
		MongoURI:      d.MongoURI,
		MongoDatabase: d.MongoDatabase,
	}
}

// PipelineOptions converts g into runner options.
func (g GanttConfig) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		LaneHeight:      g.LaneHeight,
		VerticalPadding: g.VerticalPadding,
		MaxCombinations: g.MaxCombinations,
		Concurrency:     g.Concurrency,
	}
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Dir returns the configuration directory using the XDG standard
// (~/.config/flexgantt/).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// CacheDir returns the cache directory using the XDG standard
// (~/.cache/flexgantt/).
func CacheDir() (string, error) {
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// String renders c as TOML with the password masked.
func (c Config) String() string {
	masked := c
	if masked.Database.Password != "" {
		masked.Database.Password = "***"
	}
	if masked.Database.URL != "" {
		if u, err := url.Parse(masked.Database.URL); err == nil {
			masked.Database.URL = u.Redacted()
		}
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("%+v", masked)
	}
	return b.String()
}
