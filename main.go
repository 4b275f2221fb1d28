package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"tbot/internal/adapters/fetch"
	"tbot/internal/adapters/generator"
	"tbot/internal/adapters/handler"
	"tbot/internal/adapters/sender"
	"tbot/internal/config"
	"tbot/internal/core/domain"
	"tbot/internal/core/domain/command"
	"tbot/internal/core/port"
	"tbot/internal/core/service"

	"github.com/bwmarrin/discordgo"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func main() {
	log.Info().Msg("starting tbot...")

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	setupLogging(cfg.Bot)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	router := sender.NewRouter()

	var session *discordgo.Session
	if cfg.Discord.Enabled {
		session, err = discordgo.New("Bot " + cfg.Credentials.DiscordToken)
		if err != nil {
			log.Fatal().Err(err).Msg("failed initializing discord session")
		}
		router.Add(domain.Discord, sender.NewDiscord(session))
	}

	var tg *bot.Bot
	if cfg.Telegram.Enabled {
		tg, err = bot.New(cfg.Credentials.TelegramToken, bot.WithDefaultHandler(noOpHandler))
		if err != nil {
			log.Fatal().Err(err).Msg("failed initializing telegram bot")
		}
		router.Add(domain.Telegram, sender.NewTelegram(tg))
	}

	counter := service.NewCounter()
	registry := buildRegistry(cfg, router, counter)

	dispatcher := service.NewDispatcher(service.DispatcherParams{
		Registry: registry,
		Sender:   router,
		Auth:     service.NewAuthorizer(router, cfg.Bot.AllowedIDs),
		Counter:  counter,
		Timeout:  cfg.Bot.HandlerTimeout,
	})

	commands := handler.NewCommand(dispatcher, cfg.Bot.MaxConcurrent)

	var wg sync.WaitGroup

	if session != nil {
		discord := handler.NewDiscord(ctx, commands, registry, cfg.Bot.Prefix, cfg.Credentials.GuildID)
		session.AddHandler(discord.OnReady)
		session.AddHandler(discord.OnInteractionCreate)
		session.AddHandler(discord.OnMessageCreate)
		session.Identify.Intents = discordgo.IntentsGuilds |
			discordgo.IntentsGuildMessages |
			discordgo.IntentsDirectMessages |
			discordgo.IntentMessageContent

		if err := session.Open(); err != nil {
			log.Fatal().Err(err).Msg("could not open discord session")
		}
		log.Info().Msg("discord listening")
	}

	if tg != nil {
		telegram := handler.NewTelegram(commands, registry)
		tg.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, telegram.Handle)
		tg.RegisterHandler(bot.HandlerTypePhotoCaption, "/", bot.MatchTypePrefix, telegram.Handle)

		if err := handler.RegisterTelegramCommands(ctx, tg, registry); err != nil {
			log.Err(err).Msg("failed to set telegram command menu")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			tg.Start(ctx)
		}()
		log.Info().Msg("telegram listening")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down, waiting for running commands")

	// Both frontends must stop feeding the pool before it is drained.
	if session != nil {
		if err := session.Close(); err != nil {
			log.Err(err).Msg("failed to close discord session")
		}
	}
	wg.Wait()
	commands.Stop()
}

func setupLogging(cfg config.Bot) {
	if cfg.PrettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
}

func newGenerator(cfg *config.Config) port.TextGenerator {
	params := generator.Params{
		Model:            cfg.LLM.Model,
		SystemPrompt:     cfg.LLM.SystemPrompt,
		Temperature:      cfg.LLM.Temperature,
		MaxTokens:        cfg.LLM.MaxTokens,
		TopP:             cfg.LLM.TopP,
		FrequencyPenalty: cfg.LLM.FrequencyPenalty,
		PresencePenalty:  cfg.LLM.PresencePenalty,
	}

	if cfg.LLM.Provider == config.ProviderOpenRouter {
		return generator.NewOpenRouter(cfg.Credentials.OpenRouterKey, params)
	}

	return generator.NewOpenAI(cfg.Credentials.OpenAIKey, cfg.LLM.BaseURL, params)
}

func buildRegistry(cfg *config.Config, router *sender.Router, counter *service.Counter) *command.Registry {
	fetcher := fetch.NewClient()
	registry := &command.Registry{}

	registry.Register(command.NewPing(router))
	registry.Register(command.NewDog(fetcher, router, cfg.Dog.BaseURL, cfg.Dog.DefaultBreed))
	registry.Register(command.NewConstructorStandings(fetcher, router, cfg.F1.BaseURL, cfg.F1.Thumbnail))
	registry.Register(command.NewDriverStandings(fetcher, router, cfg.F1.BaseURL, cfg.F1.Thumbnail))
	registry.Register(command.NewSchedule(fetcher, router, cfg.F1.BaseURL, cfg.F1.Thumbnail))
	registry.Register(command.NewAsk(newGenerator(cfg), router, sender.DiscordMessageLimit))
	registry.Register(command.NewUserInfo(router))
	registry.Register(command.NewServerInfo(router, router))
	registry.Register(command.NewChoose(router))
	registry.Register(command.NewCoinFlip(router))
	registry.Register(command.NewStats(counter, router))
	registry.Register(command.NewHelp(registry, router, cfg.Bot.Prefix))

	if cfg.Credentials.RiotToken == "" {
		log.Warn().Msg("RIOT_TOKEN is not set, league command disabled")
		return registry
	}

	platformURL, regionalURL, err := command.RiotHosts(cfg.Riot.Platform, cfg.Riot.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid riot config")
	}

	riotFetcher := fetcher
	if cfg.Riot.RequestsPerSecond > 0 {
		riotFetcher = fetch.NewClient(fetch.WithRateLimit(rate.Limit(cfg.Riot.RequestsPerSecond), 1))
	}
	registry.Register(command.NewLeague(riotFetcher, router, command.LeagueParams{
		APIKey:      cfg.Credentials.RiotToken,
		PlatformURL: platformURL,
		RegionalURL: regionalURL,
		DDragonURL:  cfg.Riot.DDragonURL,
		Masteries:   cfg.Riot.MasteryCount,
	}))

	return registry
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
