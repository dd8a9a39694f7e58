// Package server provides configuration helpers that define runtime defaults,
// validation, and rate-limiting parameters for the arena service.
package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Tyrowin/goarena/internal/game"
)

// RateLimitConfig defines the parameters for per-connection message rate limiting.
type RateLimitConfig struct {
	Burst          int           `mapstructure:"burst" validate:"min=1"`
	RefillInterval time.Duration `mapstructure:"refill_interval" validate:"gt=0"`
}

// GameConfig holds the arena dimensions and collectible target.
type GameConfig struct {
	ArenaWidth         float64 `mapstructure:"arena_width" validate:"gt=0"`
	ArenaHeight        float64 `mapstructure:"arena_height" validate:"gt=0"`
	PlayerSize         float64 `mapstructure:"player_size" validate:"gt=0"`
	CollectibleSize    float64 `mapstructure:"collectible_size" validate:"gt=0"`
	TargetCollectibles int     `mapstructure:"target_collectibles" validate:"min=0"`
	// MaxMoveAmount caps the distance of a single move event.
	MaxMoveAmount float64 `mapstructure:"max_move_amount" validate:"gt=0"`
}

// Arena converts the game section into the core arena description.
func (g GameConfig) Arena() game.Arena {
	return game.Arena{
		Width:              g.ArenaWidth,
		Height:             g.ArenaHeight,
		PlayerSize:         g.PlayerSize,
		CollectibleSize:    g.CollectibleSize,
		TargetCollectibles: g.TargetCollectibles,
	}
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// Config holds the server configuration settings including security controls.
type Config struct {
	Port            string          `mapstructure:"port" validate:"required"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	MaxMessageSize  int64           `mapstructure:"max_message_size" validate:"min=1"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" validate:"gt=0"`
	TickInterval    time.Duration   `mapstructure:"tick_interval" validate:"min=0"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	Game            GameConfig      `mapstructure:"game"`
	Metrics         MetricsConfig   `mapstructure:"metrics"`
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize:  512,
		ShutdownTimeout: 10 * time.Second,
		TickInterval:    time.Second,
		RateLimit: RateLimitConfig{
			Burst:          10,
			RefillInterval: time.Second,
		},
		Game: GameConfig{
			ArenaWidth:         800,
			ArenaHeight:        600,
			PlayerSize:         50,
			CollectibleSize:    20,
			TargetCollectibles: 2,
			MaxMoveAmount:      50,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// SetDefaults fills zero values with defaults.
func SetDefaults(cfg *Config) {
	def := defaultConfig()

	if cfg.Port == "" {
		cfg.Port = def.Port
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = def.ShutdownTimeout
	}
	if cfg.TickInterval < 0 {
		cfg.TickInterval = 0
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = def.RateLimit.Burst
	}
	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = def.RateLimit.RefillInterval
	}
	if cfg.Game.ArenaWidth <= 0 {
		cfg.Game.ArenaWidth = def.Game.ArenaWidth
	}
	if cfg.Game.ArenaHeight <= 0 {
		cfg.Game.ArenaHeight = def.Game.ArenaHeight
	}
	if cfg.Game.PlayerSize <= 0 {
		cfg.Game.PlayerSize = def.Game.PlayerSize
	}
	if cfg.Game.CollectibleSize <= 0 {
		cfg.Game.CollectibleSize = def.Game.CollectibleSize
	}
	if cfg.Game.MaxMoveAmount <= 0 {
		cfg.Game.MaxMoveAmount = def.Game.MaxMoveAmount
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = def.Metrics.Path
	}
}

// LoadConfig loads configuration with priority:
// 1. Environment variables (ARENA_ prefix, e.g. ARENA_RATE_LIMIT_BURST)
// 2. Config file (arena.yaml, or path if given)
// 3. Defaults
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("arena")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.AllowedOrigins = parseOrigins(cfg.AllowedOrigins)

	SetDefaults(&cfg)
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// registerDefaults makes every key known to viper so AutomaticEnv can
// override it during Unmarshal.
func registerDefaults(v *viper.Viper) {
	def := defaultConfig()
	v.SetDefault("port", def.Port)
	v.SetDefault("allowed_origins", def.AllowedOrigins)
	v.SetDefault("max_message_size", def.MaxMessageSize)
	v.SetDefault("shutdown_timeout", def.ShutdownTimeout)
	v.SetDefault("tick_interval", def.TickInterval)
	v.SetDefault("rate_limit.burst", def.RateLimit.Burst)
	v.SetDefault("rate_limit.refill_interval", def.RateLimit.RefillInterval)
	v.SetDefault("game.arena_width", def.Game.ArenaWidth)
	v.SetDefault("game.arena_height", def.Game.ArenaHeight)
	v.SetDefault("game.player_size", def.Game.PlayerSize)
	v.SetDefault("game.collectible_size", def.Game.CollectibleSize)
	v.SetDefault("game.target_collectibles", def.Game.TargetCollectibles)
	v.SetDefault("game.max_move_amount", def.Game.MaxMoveAmount)
	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.path", def.Metrics.Path)
}

// parseOrigins splits comma separated entries and trims whitespace.
func parseOrigins(origins []string) []string {
	var out []string
	for _, entry := range origins {
		for _, part := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

// ValidateConfig checks struct tags and that the arena can hold its entities.
func ValidateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return cfg.Game.Arena().Validate()
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf(
			"field '%s' failed validation: %s (value: '%v')",
			e.Namespace(),
			e.Tag(),
			e.Value(),
		))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}
