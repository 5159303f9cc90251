// Package app assembles the payout bot: configuration, infrastructure,
// domain services and the Telegram runtime options.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"payoutbot/auth"
	"payoutbot/bot"
	"payoutbot/core/bootstrap"
	coreconfig "payoutbot/core/config"
	"payoutbot/core/logger"
	coretelegram "payoutbot/core/telegram"
	"payoutbot/core/telegram/router"
	"payoutbot/notify"
	"payoutbot/payout"
	"payoutbot/ratelimit"
	"payoutbot/session"
	"payoutbot/transfer"
	"payoutbot/wallet"

	"log/slog"
)

// Config wraps the core configuration for the cmd runner.
type Config struct {
	Core *coreconfig.Config
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return c.Core
}

// LoadConfig reads and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	core, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return &Config{Core: core}, nil
}

// App holds the assembled services behind the Telegram runtime.
type App struct {
	cfg       *coreconfig.Config
	redis     *redis.Client
	store     session.Store
	limiter   *ratelimit.Limiter
	bot       *bot.Bot
	messenger *bot.TelebotMessenger
	notify    *notify.Service
}

// Bootstrap initializes infrastructure and wires the services.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil || cfg.Core == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}
	core := cfg.Core

	boot, err := bootstrap.Run(ctx, bootstrap.Options{Config: core})
	if err != nil {
		return nil, err
	}

	store := session.NewRedisStore(boot.Redis)
	limiter := ratelimit.New(boot.Redis,
		core.RateLimit.MaxRequests,
		time.Duration(core.RateLimit.WindowSeconds)*time.Second,
	)
	client := payout.NewClient(core.Payout.BaseURL)
	messenger := bot.NewTelebotMessenger()

	authSvc := auth.NewService(store, client)
	walletSvc := wallet.NewService(client, authSvc)
	transferSvc := transfer.NewService(client, authSvc)
	notifySvc := notify.NewService(store,
		notify.NewRedisTransport(boot.Redis),
		bot.NotifySender{M: messenger},
		notify.WithAuthorizer(client),
	)

	b := bot.New(store, authSvc, walletSvc, transferSvc, notifySvc, messenger, bot.Options{
		KYCGuideURL:  core.Payout.KYCGuideURL,
		KYCPortalURL: core.Payout.KYCPortalURL,
	})

	return &App{
		cfg:       core,
		redis:     boot.Redis,
		store:     store,
		limiter:   limiter,
		bot:       b,
		messenger: messenger,
		notify:    notifySvc,
	}, nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.bot.BuildRegistry()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{Guard: a.bot.Guard()})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(bot.FSMAdapter{B: a.bot}, reg, router.TextOptions{})...)

	middlewares := coretelegram.DefaultMiddlewares(a.cfg, a.limiter, a.bot.OnRateLimited())

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.messenger.Attach(rt.Bot)
			if err := a.notify.Resubscribe(ctx); err != nil {
				logger.Warn(ctx, "app", "notify.resubscribe_failed",
					slog.String("err", err.Error()),
				)
			}
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.redis.Close()
		},
	}, nil
}
