package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/memohai/pixeltools/internal/boot"
	"github.com/memohai/pixeltools/internal/channel"
	"github.com/memohai/pixeltools/internal/channel/adapters/discord"
	"github.com/memohai/pixeltools/internal/config"
	"github.com/memohai/pixeltools/internal/handlers"
	"github.com/memohai/pixeltools/internal/logger"
	"github.com/memohai/pixeltools/internal/resolver"
	"github.com/memohai/pixeltools/internal/server"
	"github.com/memohai/pixeltools/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDiscordConfig(cfg config.Config) (discord.Config, error) {
	return discord.ParseConfig(cfg.Discord)
}

func provideDiscordSession(cfg discord.Config) (*discordgo.Session, error) {
	return discord.NewSession(cfg)
}

func provideDirectory(log *slog.Logger, session *discordgo.Session) channel.Directory {
	return discord.NewDirectory(log, session)
}

func provideBot(log *slog.Logger, session *discordgo.Session, res *resolver.Resolver, cfg discord.Config, rc *boot.RuntimeConfig) *discord.Bot {
	return discord.NewBot(log, session, res, cfg, rc.Policy)
}

func provideMediaHandler(log *slog.Logger, sanitizer *resolver.Sanitizer, rc *boot.RuntimeConfig) *handlers.MediaHandler {
	return handlers.NewMediaHandler(log, sanitizer, rc.Policy)
}

func main() {
	fx.New(
		fx.Provide(
			provideConfig,
			boot.ProvideRuntimeConfig,
			provideLogger,

			boot.ProvideHTTPClient,
			boot.ProvideUnfurler,
			boot.ProvideSanitizer,
			boot.ProvideResolver,

			provideDiscordConfig,
			provideDiscordSession,
			provideDirectory,
			provideBot,
			discord.NewAdapter,

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideMediaHandler),
			provideServer,
		),
		fx.Invoke(
			startDiscord,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	RuntimeConfig  *boot.RuntimeConfig
	ServerHandlers []server.Handler `group:"server_handlers"`
}

// provideServer returns nil when the server is disabled, so no JWT
// middleware is built without a secret.
func provideServer(params serverParams) *server.Server {
	if !params.RuntimeConfig.ServerEnabled {
		return nil
	}
	return server.NewServer(params.Logger, params.RuntimeConfig.ServerAddr, params.RuntimeConfig.JwtSecret, params.ServerHandlers...)
}

func startDiscord(lc fx.Lifecycle, adapter *discord.Adapter) {
	lc.Append(fx.Hook{
		OnStart: adapter.Start,
		OnStop:  adapter.Stop,
	})
}

func startServer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	srv *server.Server,
	shutdowner fx.Shutdowner,
	rc *boot.RuntimeConfig,
) {
	fmt.Printf("Starting %s %s\n", version.Name, version.GetInfo())
	if !rc.ServerEnabled {
		logger.Info("http server disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
