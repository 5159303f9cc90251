package telegram

import (
	"strings"
	"time"

	coreconfig "payoutbot/core/config"
	"payoutbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the shared middleware chain for bots.
// The limiter is optional; without it the chain carries no rate limiting.
func DefaultMiddlewares(cfg *coreconfig.Config, limiter middleware.Limiter, onLimited func(tele.Context, time.Duration) error) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
	}

	if limiter != nil {
		ex := map[string]struct{}{}
		if cfg != nil {
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Limiter:   limiter,
				Exclude:   ex,
				OnLimited: onLimited,
			}),
		})
	}

	mws = append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})

	return mws
}
