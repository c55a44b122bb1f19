package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrInvalidSettings = errors.New("invalid game settings")

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`

	// Game rules, copied into every new room.
	RoundDurationMs int           `mapstructure:"round_duration"`
	CardsPerPlayer  int           `mapstructure:"cards_per_player"`
	GameCycles      int           `mapstructure:"game_cycles"`
	MinPlayers      int           `mapstructure:"min_players"`
	MaxPlayers      int           `mapstructure:"max_players"`
	NextRoundDelay  time.Duration `mapstructure:"next_round_delay"`
	JudgePolicy     string        `mapstructure:"judge_policy"`
	CodeAttempts    int           `mapstructure:"code_attempts"`

	RedisURL      string        `mapstructure:"redis_url"`
	RedisPassword string        `mapstructure:"redis_password"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	CacheTimeout  time.Duration `mapstructure:"cache_timeout"`

	PostgresURL     string `mapstructure:"postgres_url"`
	CheckpointQueue int    `mapstructure:"checkpoint_queue"`

	VideoBaseURL    string        `mapstructure:"video_base_url"`
	VideoSigningKey string        `mapstructure:"video_signing_key"`
	VideoURLTTL     time.Duration `mapstructure:"video_url_ttl"`

	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "")
	v.SetDefault("allowed_origins", []string{"*"})

	v.SetDefault("round_duration", 45000)
	v.SetDefault("cards_per_player", 7)
	v.SetDefault("game_cycles", 2)
	v.SetDefault("min_players", 3)
	v.SetDefault("max_players", 8)
	v.SetDefault("next_round_delay", "5s")
	v.SetDefault("judge_policy", "rotate")
	v.SetDefault("code_attempts", 10)

	v.SetDefault("redis_url", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("cache_timeout", "500ms")

	v.SetDefault("postgres_url", "")
	v.SetDefault("checkpoint_queue", 256)

	v.SetDefault("video_base_url", "https://example.com/videos")
	v.SetDefault("video_signing_key", "")
	v.SetDefault("video_url_ttl", "1h")

	v.SetDefault("rate_limit", 10.0)
	v.SetDefault("rate_burst", 20)
}

// Load reads defaults, then config/config.<CONFIG_ENV>.yaml if present, then
// environment variables named after the upper-cased keys.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Bool("redis", cfg.RedisURL != "").
		Bool("postgres", cfg.PostgresURL != "").
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.MinPlayers < 2:
		return fmt.Errorf("%w: min_players %d < 2", ErrInvalidSettings, c.MinPlayers)
	case c.MaxPlayers < c.MinPlayers:
		return fmt.Errorf("%w: max_players %d < min_players %d", ErrInvalidSettings, c.MaxPlayers, c.MinPlayers)
	case c.CardsPerPlayer < 1:
		return fmt.Errorf("%w: cards_per_player %d < 1", ErrInvalidSettings, c.CardsPerPlayer)
	case c.GameCycles < 1:
		return fmt.Errorf("%w: game_cycles %d < 1", ErrInvalidSettings, c.GameCycles)
	}
	return nil
}

// GameSettings is the per-room snapshot of the rules.
func (c *Config) GameSettings() domain.Settings {
	return domain.Settings{
		RoundDurationMs: c.RoundDurationMs,
		CardsPerPlayer:  c.CardsPerPlayer,
		Cycles:          c.GameCycles,
		MinPlayers:      c.MinPlayers,
		MaxPlayers:      c.MaxPlayers,
	}
}
