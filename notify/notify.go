// Package notify delivers deposit notifications to the owning chat. Realtime
// events arrive over a per-organization private channel; the concrete event
// transport is a collaborator so tests can drive events directly.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"payoutbot/core/logger"
	"payoutbot/payout"
	"payoutbot/session"

	"log/slog"

	"github.com/google/uuid"
)

// DepositEvent is the payload of a "deposit" channel event.
type DepositEvent struct {
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Network         string `json:"network"`
	WalletAddress   string `json:"walletAddress"`
	TransactionHash string `json:"transactionHash"`
	Timestamp       string `json:"timestamp"`
}

// Transport subscribes to realtime channels. It assumes the channel has
// already been authorized; see Authorizer.
type Transport interface {
	Subscribe(ctx context.Context, channel, accessToken string, onEvent func(event string, payload []byte)) error
	Unsubscribe(channel string)
}

// Authorizer signs a private channel subscription with the platform. The
// payout client's notifications-auth endpoint satisfies it.
type Authorizer interface {
	NotificationsAuth(ctx context.Context, token string, req payout.NotificationsAuthRequest) (payout.NotificationsAuthResult, error)
}

// Messenger sends an HTML message to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Service manages per-organization deposit subscriptions.
type Service struct {
	store      session.Store
	transport  Transport
	messenger  Messenger
	authorizer Authorizer

	mu   sync.Mutex
	subs map[string]int64
}

// Option customises the notification service.
type Option func(*Service)

// WithAuthorizer makes the service authorize private channels with the
// platform before subscribing. Without it channels are joined unauthorized,
// which is only acceptable in tests.
func WithAuthorizer(a Authorizer) Option {
	return func(s *Service) { s.authorizer = a }
}

// NewService wires the notification service.
func NewService(store session.Store, transport Transport, messenger Messenger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		transport: transport,
		messenger: messenger,
		subs:      make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func channelName(orgID string) string {
	return "private-org-" + orgID
}

// SubscribeChat arms the deposit subscription for a chat's organization.
// Repeat calls for the same organization are no-ops.
func (s *Service) SubscribeChat(ctx context.Context, chatID int64, orgID, accessToken string) error {
	if orgID == "" || accessToken == "" {
		return fmt.Errorf("notify: missing organization or token for chat %d", chatID)
	}

	s.mu.Lock()
	if _, ok := s.subs[orgID]; ok {
		s.mu.Unlock()
		return nil
	}
	s.subs[orgID] = chatID
	s.mu.Unlock()

	if s.authorizer != nil {
		_, err := s.authorizer.NotificationsAuth(ctx, accessToken, payout.NotificationsAuthRequest{
			SocketID:    uuid.NewString(),
			ChannelName: channelName(orgID),
		})
		if err != nil {
			s.mu.Lock()
			delete(s.subs, orgID)
			s.mu.Unlock()
			return fmt.Errorf("notify: authorize channel for org %s: %w", orgID, err)
		}
	}

	err := s.transport.Subscribe(ctx, channelName(orgID), accessToken, func(event string, payload []byte) {
		if event != "deposit" {
			return
		}
		var dep DepositEvent
		if err := json.Unmarshal(payload, &dep); err != nil {
			logger.Warn(ctx, "app", "notify.deposit.decode_failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
			return
		}
		s.HandleDeposit(ctx, chatID, dep)
	})
	if err != nil {
		s.mu.Lock()
		delete(s.subs, orgID)
		s.mu.Unlock()
		return fmt.Errorf("notify: subscribe org %s: %w", orgID, err)
	}

	logger.Info(ctx, "app", "notify.subscribed",
		slog.Int64("chat_id", chatID),
		slog.String("payload", channelName(orgID)),
	)
	return nil
}

// Unsubscribe tears down the organization's subscription.
func (s *Service) Unsubscribe(orgID string) {
	s.mu.Lock()
	_, ok := s.subs[orgID]
	delete(s.subs, orgID)
	s.mu.Unlock()
	if ok {
		s.transport.Unsubscribe(channelName(orgID))
	}
}

// Subscribed reports whether the organization currently has a subscription.
func (s *Service) Subscribed(orgID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[orgID]
	return ok
}

// Resubscribe walks every stored session and re-arms subscriptions for the
// ones still holding valid credentials. Used at startup so restarts do not
// silently drop notifications.
func (s *Service) Resubscribe(ctx context.Context) error {
	sessions, err := s.store.ListAll(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	count := 0
	for _, sess := range sessions {
		if !sess.Authenticated(now) || sess.OrganizationID == "" {
			continue
		}
		if err := s.SubscribeChat(ctx, sess.ChatID, sess.OrganizationID, sess.AuthData.AccessToken); err != nil {
			logger.Warn(ctx, "app", "notify.resubscribe_failed",
				slog.Int64("chat_id", sess.ChatID),
				slog.String("err", err.Error()),
			)
			continue
		}
		count++
	}

	logger.Info(ctx, "app", "notify.resubscribed",
		slog.Int("count", count),
	)
	return nil
}

// HandleDeposit formats the event and sends it to the chat.
func (s *Service) HandleDeposit(ctx context.Context, chatID int64, dep DepositEvent) {
	when := dep.Timestamp
	if ts, err := time.Parse(time.RFC3339, dep.Timestamp); err == nil {
		when = ts.Format("2006-01-02 15:04:05 MST")
	}

	msg := fmt.Sprintf(
		"💰 <b>New Deposit Received</b>\n\n"+
			"Amount: %s %s\n"+
			"Network: %s\n"+
			"Address: %s\n"+
			"Transaction: %s\n"+
			"Time: %s",
		dep.Amount, dep.Currency,
		dep.Network,
		ShortenAddress(dep.WalletAddress),
		ShortenAddress(dep.TransactionHash),
		when,
	)

	if err := s.messenger.Send(ctx, chatID, msg); err != nil {
		logger.Error(ctx, "app", "notify.deposit.send_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Info(ctx, "app", "notify.deposit.sent",
		slog.Int64("chat_id", chatID),
		slog.String("payload", dep.Amount+" "+dep.Currency),
	)
}

// ShortenAddress abbreviates long addresses and hashes for display.
func ShortenAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if len(addr) <= 15 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
