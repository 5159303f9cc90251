// Package bootstrap initializes shared infrastructure: the structured
// logger and the Redis connection backing sessions, rate limiting and
// the notification bridge.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	coreconfig "payoutbot/core/config"
	"payoutbot/core/logger"
	"payoutbot/core/redisdb"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	OpenRedis  func(ctx context.Context, dsn string) (*redis.Client, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Redis *redis.Client
}

// Run initializes the logger and connects to Redis.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	open := opts.OpenRedis
	if open == nil {
		open = redisdb.Open
	}
	client, err := open(ctx, opts.Config.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
	}

	return &Result{Redis: client}, nil
}
