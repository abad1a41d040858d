// Package config loads review engine settings from defaults, an optional
// config file, .env files and MEDIAREVIEW_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ibbymorris/collaborative-media-review-tool/pkg/annotation"
	"github.com/ibbymorris/collaborative-media-review-tool/pkg/composer"
)

// EnvPrefix prefixes every environment override, e.g. MEDIAREVIEW_LOGLEVEL
const EnvPrefix = "MEDIAREVIEW"

// ActorConfig identifies the acting reviewer
type ActorConfig struct {
	Role string `json:"role" mapstructure:"role"`
	Name string `json:"name" mapstructure:"name"`
}

// StrokeConfig holds the default drawing stroke
type StrokeConfig struct {
	Color string  `json:"color" mapstructure:"color"`
	Width float64 `json:"width" mapstructure:"width"`
}

// Config holds the review engine settings
type Config struct {
	LogLevel         string              `json:"logLevel" mapstructure:"logLevel"`
	LogPretty        bool                `json:"logPretty" mapstructure:"logPretty"`
	Actor            ActorConfig         `json:"actor" mapstructure:"actor"`
	VisibilityWindow float64             `json:"visibilityWindow" mapstructure:"visibilityWindow"`
	ThumbnailCount   int                 `json:"thumbnailCount" mapstructure:"thumbnailCount"`
	Stroke           StrokeConfig        `json:"stroke" mapstructure:"stroke"`
	Vocabulary       composer.Vocabulary `json:"vocabulary" mapstructure:"vocabulary"`
	SeedPath         string              `json:"seedPath" mapstructure:"seedPath"`
	MetricsPort      int                 `json:"metricsPort" mapstructure:"metricsPort"`
}

// Load reads configuration from an optional file plus environment variables
// and applies default values. An empty path skips the file.
func Load(path string) (*Config, error) {
	loadDotEnv()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	def := composer.DefaultVocabulary()
	if len(cfg.Vocabulary.Assignees) == 0 {
		cfg.Vocabulary.Assignees = def.Assignees
	}
	if len(cfg.Vocabulary.Labels) == 0 {
		cfg.Vocabulary.Labels = def.Labels
	}
	if len(cfg.Vocabulary.Rules) == 0 {
		cfg.Vocabulary.Rules = def.Rules
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if _, err := annotation.ParseRole(c.Actor.Role); err != nil {
		return fmt.Errorf("actor.role: %w", err)
	}
	if c.Actor.Name == "" {
		return fmt.Errorf("actor.name must not be empty")
	}
	if c.VisibilityWindow <= 0 {
		return fmt.Errorf("visibilityWindow must be positive, got %v", c.VisibilityWindow)
	}
	if c.ThumbnailCount <= 0 {
		return fmt.Errorf("thumbnailCount must be positive, got %d", c.ThumbnailCount)
	}
	if c.Stroke.Width <= 0 {
		return fmt.Errorf("stroke.width must be positive, got %v", c.Stroke.Width)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("metricsPort out of range: %d", c.MetricsPort)
	}
	if err := c.Vocabulary.Validate(); err != nil {
		return fmt.Errorf("vocabulary: %w", err)
	}
	return nil
}

// ActorValue returns the configured actor
func (c *Config) ActorValue() annotation.Actor {
	role, _ := annotation.ParseRole(c.Actor.Role)
	return annotation.Actor{Role: role, Name: c.Actor.Name}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", false)

	v.SetDefault("actor.role", "client")
	v.SetDefault("actor.name", "Alice (Client)")

	v.SetDefault("visibilityWindow", 1.5)
	v.SetDefault("thumbnailCount", 12)

	v.SetDefault("stroke.color", "#E57373")
	v.SetDefault("stroke.width", 4.0)

	v.SetDefault("seedPath", "")
	v.SetDefault("metricsPort", 0)
}

// loadDotEnv loads .env and .env.local if present. Variables already set in
// the environment win.
func loadDotEnv() {
	for _, f := range []string{".env", ".env.local"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s file: %v\n", f, err)
		}
	}
}
