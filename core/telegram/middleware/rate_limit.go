package middleware

import (
	"context"
	"time"

	"payoutbot/core/logger"
	tghelpers "payoutbot/core/telegram/helpers"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Limiter counts a request against a per-chat window and reports whether
// the chat is over its budget. Implementations must fail open: an error
// from the backing store never blocks the update.
type Limiter interface {
	CheckAndIncrement(ctx context.Context, chatID int64) (limited bool, retryAfter time.Duration, err error)
}

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Limiter Limiter
	// Exclude lists update kinds that bypass the limiter ("callback", "message", ...).
	Exclude   map[string]struct{}
	OnLimited func(c tele.Context, retryAfter time.Duration) error
}

// RateLimitMiddleware returns a middleware that enforces a per-chat request
// budget over a fixed window. Over-budget updates are dropped after an
// optional OnLimited notice.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat == nil || opts.Limiter == nil {
				return next(c)
			}

			upd := c.Update()
			kind := "other"
			switch {
			case upd.Callback != nil:
				kind = "callback"
			case upd.Message != nil:
				kind = "message"
			case upd.Query != nil:
				kind = "inline_query"
			}
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			ctx := tghelpers.BuildContext(c)
			limited, retryAfter, err := opts.Limiter.CheckAndIncrement(ctx, chat.ID)
			if err != nil {
				// Fail open, the limiter backend being down must not mute the bot.
				logger.Warn(ctx, "tg", "rate_limit.check_failed",
					slog.Int64("chat_id", chat.ID),
					slog.String("err", err.Error()),
				)
				return next(c)
			}
			if limited {
				logger.Warn(ctx, "tg", "rate_limit.exceeded",
					slog.Int64("chat_id", chat.ID),
					slog.Bool("rate_limited", true),
					slog.Duration("retry_after", retryAfter),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c, retryAfter)
				}
				return nil
			}

			return next(c)
		}
	}
}
