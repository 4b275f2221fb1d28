package config

import (
	"errors"
	"fmt"
	"strings"
	"tbot/internal/core/domain"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

// Credentials are only ever read from the environment, never from config.toml.
type Credentials struct {
	DiscordToken  string `env:"DISCORD_TOKEN"`
	TelegramToken string `env:"TELEGRAM_TOKEN"`
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterKey string `env:"OPENROUTER_API_KEY"`
	RiotToken     string `env:"RIOT_TOKEN"`
	GuildID       string `env:"GUILD_ID"`
}

type Bot struct {
	LogLevel       string        `mapstructure:"log_level"`
	PrettyLogs     bool          `mapstructure:"pretty_logs"`
	Prefix         string        `mapstructure:"prefix"`
	MaxConcurrent  int           `mapstructure:"max_concurrent"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	AllowedIDs     []string      `mapstructure:"allowed_ids"`
}

type Platform struct {
	Enabled bool `mapstructure:"enabled"`
}

type Dog struct {
	BaseURL      string `mapstructure:"base_url"`
	DefaultBreed string `mapstructure:"default_breed"`
}

type F1 struct {
	BaseURL   string `mapstructure:"base_url"`
	Thumbnail string `mapstructure:"thumbnail"`
}

type LLM struct {
	Provider         string  `mapstructure:"provider"`
	Model            string  `mapstructure:"model"`
	BaseURL          string  `mapstructure:"base_url"`
	SystemPrompt     string  `mapstructure:"system_prompt"`
	Temperature      float64 `mapstructure:"temperature"`
	MaxTokens        int     `mapstructure:"max_tokens"`
	TopP             float64 `mapstructure:"top_p"`
	FrequencyPenalty float64 `mapstructure:"frequency_penalty"`
	PresencePenalty  float64 `mapstructure:"presence_penalty"`
}

type Riot struct {
	Platform          string  `mapstructure:"platform"`
	Region            string  `mapstructure:"region"`
	DDragonURL        string  `mapstructure:"ddragon_url"`
	MasteryCount      int     `mapstructure:"mastery_count"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

type Config struct {
	Credentials Credentials `mapstructure:"-"`

	Bot      Bot      `mapstructure:"bot"`
	Discord  Platform `mapstructure:"discord"`
	Telegram Platform `mapstructure:"telegram"`
	Dog      Dog      `mapstructure:"dog"`
	F1       F1       `mapstructure:"f1"`
	LLM      LLM      `mapstructure:"llm"`
	Riot     Riot     `mapstructure:"riot"`
}

var defaults = map[string]any{
	"bot.log_level":       "info",
	"bot.pretty_logs":     false,
	"bot.prefix":          "tb!",
	"bot.max_concurrent":  16,
	"bot.handler_timeout": "0s",
	"bot.allowed_ids":     []string{},

	"discord.enabled":  true,
	"telegram.enabled": false,

	"dog.base_url":      "https://dog.ceo/api",
	"dog.default_breed": "corgi",

	"f1.base_url":  "https://api.jolpi.ca/ergast/f1",
	"f1.thumbnail": "https://1000logos.net/wp-content/uploads/2020/02/F1-Logo-500x281.png",

	"llm.provider":          ProviderOpenAI,
	"llm.model":             "gpt-4o-mini",
	"llm.base_url":          "https://api.openai.com/v1",
	"llm.system_prompt":     "",
	"llm.temperature":       0.3,
	"llm.max_tokens":        2000,
	"llm.top_p":             1.0,
	"llm.frequency_penalty": 0.2,
	"llm.presence_penalty":  0.35,

	"riot.platform":            "na1",
	"riot.region":              "",
	"riot.ddragon_url":         "https://ddragon.leagueoflegends.com",
	"riot.mastery_count":       10,
	"riot.requests_per_second": 0.8,
}

// Load reads .env, the credential variables and an optional config.toml from dir. Every key can
// be overridden with a TBOT_ prefixed variable, e.g. TBOT_BOT_LOG_LEVEL.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("tbot")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		log.Info().Str("dir", dir).Msg("no config file found, using defaults")
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("read config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}

	if err := env.Parse(&cfg.Credentials); err != nil {
		return nil, fmt.Errorf("could not parse credentials: %w", err)
	}

	return &cfg, nil
}

// Validate checks that every enabled platform and the configured LLM provider have credentials.
func (c *Config) Validate() error {
	if !c.Discord.Enabled && !c.Telegram.Enabled {
		return errors.New("no platform enabled")
	}

	if c.Discord.Enabled && c.Credentials.DiscordToken == "" {
		return fmt.Errorf("%w: DISCORD_TOKEN is not set", domain.ErrUnauthorized)
	}

	if c.Telegram.Enabled && c.Credentials.TelegramToken == "" {
		return fmt.Errorf("%w: TELEGRAM_TOKEN is not set", domain.ErrUnauthorized)
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.Credentials.OpenAIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is not set", domain.ErrUnauthorized)
		}
	case ProviderOpenRouter:
		if c.Credentials.OpenRouterKey == "" {
			return fmt.Errorf("%w: OPENROUTER_API_KEY is not set", domain.ErrUnauthorized)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	return nil
}
