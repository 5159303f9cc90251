package notify

import (
	"context"
	"encoding/json"
	"sync"

	"payoutbot/core/logger"

	"log/slog"

	"github.com/redis/go-redis/v9"
)

// envelope is the wire shape of a bridged platform event: the upstream
// event name plus its raw payload.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RedisTransport receives platform events over Redis pub/sub. A bridge
// process forwards the platform's realtime events into channels named
// after the organization, so the bot does not hold a socket to the
// platform itself.
type RedisTransport struct {
	client *redis.Client

	mu   sync.Mutex
	subs map[string]*redis.PubSub
}

// NewRedisTransport wires the transport on an open client.
func NewRedisTransport(client *redis.Client) *RedisTransport {
	return &RedisTransport{
		client: client,
		subs:   make(map[string]*redis.PubSub),
	}
}

// Subscribe implements Transport. The access token is not needed here;
// the service authorizes the channel with the platform before calling this.
func (t *RedisTransport) Subscribe(ctx context.Context, channel, accessToken string, onEvent func(event string, payload []byte)) error {
	t.mu.Lock()
	if _, ok := t.subs[channel]; ok {
		t.mu.Unlock()
		return nil
	}
	ps := t.client.Subscribe(ctx, channel)
	t.subs[channel] = ps
	t.mu.Unlock()

	// Confirm the subscription before reporting success.
	if _, err := ps.Receive(ctx); err != nil {
		t.Unsubscribe(channel)
		return err
	}

	go func() {
		for msg := range ps.Channel() {
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Store.LogAttrs(context.Background(), slog.LevelWarn, "notify.event.malformed",
					slog.String("channel", channel),
					slog.String("err", err.Error()),
				)
				continue
			}
			onEvent(env.Event, env.Data)
		}
	}()
	return nil
}

// Unsubscribe implements Transport.
func (t *RedisTransport) Unsubscribe(channel string) {
	t.mu.Lock()
	ps, ok := t.subs[channel]
	if ok {
		delete(t.subs, channel)
	}
	t.mu.Unlock()
	if ok {
		_ = ps.Close()
	}
}
