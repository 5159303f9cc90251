package router

import (
	"time"

	"payoutbot/core/logger"
	tg "payoutbot/core/telegram"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
// Guard wraps every non-exempt command, typically with an authentication
// and KYC check supplied by the bot layer.
type CommandRouteOptions struct {
	Guard func(next tele.HandlerFunc) tele.HandlerFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		h := def.Handler
		if !def.Exempt && opts.Guard != nil {
			h = opts.Guard(h)
		}
		name := normalizeHandlerName(cmd)
		inner := h
		h = func(c tele.Context) error {
			start := time.Now()
			return handleWithSummary(c, name, start, "", "", func() error {
				return inner(c)
			})
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}
