// Package config loads pagectl settings from a YAML file, PAGECTL_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nrfta/keyset-paging"
)

// Config represents the pagectl configuration.
type Config struct {
	Mongo  *Mongo
	Paging *Paging
	Logger *Logger
	Viper  *viper.Viper
}

// Mongo holds the connection settings of the content database.
type Mongo struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Paging holds the page sizes applied to every collection.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// PageConfig converts the settings into a paging.PageConfig.
func (p *Paging) PageConfig() *paging.PageConfig {
	return paging.NewPageConfig().WithDefaultSize(p.DefaultSize).WithMaxSize(p.MaxSize)
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"mongo-uri":  "mongo.uri",
	"database":   "mongo.database",
	"timeout":    "mongo.timeout",
	"log-level":  "logger.level",
	"log-format": "logger.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "content")
	v.SetDefault("mongo.timeout", 10*time.Second)
	v.SetDefault("paging.default_size", 10)
	v.SetDefault("paging.max_size", 100)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
}

// Load reads the configuration.
//
// When configPath is empty, pagectl.yaml is looked up in the working
// directory and $HOME/.pagectl and may be absent. Flags present in flags and
// named in FlagKeys override file and environment values once set.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PAGECTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("pagectl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.pagectl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Mongo:  getMongoConfig(v),
		Paging: getPagingConfig(v),
		Logger: getLoggerConfig(v),
		Viper:  v,
	}

	if cfg.Paging.DefaultSize <= 0 || cfg.Paging.MaxSize <= 0 {
		return nil, fmt.Errorf("paging sizes must be positive, got default %d and max %d", cfg.Paging.DefaultSize, cfg.Paging.MaxSize)
	}

	return cfg, nil
}

func getMongoConfig(v *viper.Viper) *Mongo {
	return &Mongo{
		URI:      v.GetString("mongo.uri"),
		Database: v.GetString("mongo.database"),
		Timeout:  v.GetDuration("mongo.timeout"),
	}
}

func getPagingConfig(v *viper.Viper) *Paging {
	return &Paging{
		DefaultSize: v.GetInt("paging.default_size"),
		MaxSize:     v.GetInt("paging.max_size"),
	}
}
