package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = "sitemaptree"
	envPrefix  = "SITEMAPTREE"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Site           string        `mapstructure:"site" validate:"required,url"`
	Sitemaps       []string      `mapstructure:"sitemap" validate:"dive,url"`
	UserAgent      string        `mapstructure:"user-agent" validate:"required"`
	RobotsMissing  string        `mapstructure:"robots-missing" validate:"oneof=fail allow"`
	MaxAgeYears    int           `mapstructure:"max-age-years" validate:"gte=1"`
	MaxDepth       int           `mapstructure:"max-depth" validate:"gte=0"`
	Concurrency    int           `mapstructure:"concurrency" validate:"gte=1"`
	IndexDetection string        `mapstructure:"index-detection" validate:"oneof=auto substring"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit      float64       `mapstructure:"rate-limit" validate:"gte=0"`
	HeaderFile     string        `mapstructure:"header-file"`
	Format         string        `mapstructure:"format" validate:"oneof=text json"`
	Baseline       string        `mapstructure:"baseline"`
	LogLevel       string        `mapstructure:"log-level" validate:"oneof=trace debug info warn error disabled"`
	LogFormat      string        `mapstructure:"log-format" validate:"oneof=console json"`
	LogFile        string        `mapstructure:"log-file"`
}

// loadConfig merges, lowest precedence first: flag defaults, config file,
// SITEMAPTREE_* environment, explicit flags, the positional site URL.
func loadConfig(cmd *cobra.Command, args []string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, configName))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	configFile := v.GetString("config")
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if len(args) > 0 {
		v.Set("site", args[0])
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &cfg, nil
}
