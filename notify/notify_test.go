package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"payoutbot/payout"
	"payoutbot/session"
)

type fakeTransport struct {
	mu       sync.Mutex
	channels map[string]func(event string, payload []byte)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{channels: make(map[string]func(string, []byte))}
}

func (f *fakeTransport) Subscribe(ctx context.Context, channel, accessToken string, onEvent func(string, []byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels[channel] = onEvent
	return nil
}

func (f *fakeTransport) Unsubscribe(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.channels, channel)
}

func (f *fakeTransport) emit(channel, event string, payload []byte) {
	f.mu.Lock()
	handler := f.channels[channel]
	f.mu.Unlock()
	if handler != nil {
		handler(event, payload)
	}
}

type fakeMessenger struct {
	mu    sync.Mutex
	sent  []string
	chats []int64
}

func (f *fakeMessenger) Send(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	f.chats = append(f.chats, chatID)
	return nil
}

type fakeAuthorizer struct {
	mu       sync.Mutex
	err      error
	tokens   []string
	channels []string
	sockets  []string
}

func (f *fakeAuthorizer) NotificationsAuth(ctx context.Context, token string, req payout.NotificationsAuthRequest) (payout.NotificationsAuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.channels = append(f.channels, req.ChannelName)
	f.sockets = append(f.sockets, req.SocketID)
	if f.err != nil {
		return payout.NotificationsAuthResult{}, f.err
	}
	return payout.NotificationsAuthResult{Auth: "sig"}, nil
}

func TestSubscribeChatDeliversDeposits(t *testing.T) {
	store := session.NewMemoryStore()
	transport := newFakeTransport()
	messenger := &fakeMessenger{}
	svc := NewService(store, transport, messenger)
	ctx := context.Background()

	if err := svc.SubscribeChat(ctx, 42, "org-1", "tok"); err != nil {
		t.Fatalf("SubscribeChat: %v", err)
	}

	transport.emit("private-org-org-1", "deposit", []byte(`{
		"amount": "100", "currency": "USDC", "network": "polygon",
		"walletAddress": "0x1234567890abcdef1234567890abcdef12345678",
		"transactionHash": "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd",
		"timestamp": "2026-01-02T15:04:05Z"
	}`))

	if len(messenger.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(messenger.sent))
	}
	if messenger.chats[0] != 42 {
		t.Fatalf("sent to chat %d, want 42", messenger.chats[0])
	}
	msg := messenger.sent[0]
	if !strings.Contains(msg, "100 USDC") || !strings.Contains(msg, "polygon") {
		t.Fatalf("unexpected message: %q", msg)
	}
	if !strings.Contains(msg, "0x1234...5678") {
		t.Fatalf("address not shortened: %q", msg)
	}
}

func TestSubscribeChatIdempotentPerOrg(t *testing.T) {
	svc := NewService(session.NewMemoryStore(), newFakeTransport(), &fakeMessenger{})
	ctx := context.Background()

	if err := svc.SubscribeChat(ctx, 1, "org-1", "tok"); err != nil {
		t.Fatalf("first subscribe: %v", err)
	}
	if err := svc.SubscribeChat(ctx, 1, "org-1", "tok"); err != nil {
		t.Fatalf("repeat subscribe: %v", err)
	}
	if !svc.Subscribed("org-1") {
		t.Fatal("org-1 not subscribed")
	}

	svc.Unsubscribe("org-1")
	if svc.Subscribed("org-1") {
		t.Fatal("org-1 still subscribed after Unsubscribe")
	}
}

func TestSubscribeChatAuthorizesChannel(t *testing.T) {
	transport := newFakeTransport()
	authorizer := &fakeAuthorizer{}
	svc := NewService(session.NewMemoryStore(), transport, &fakeMessenger{},
		WithAuthorizer(authorizer))
	ctx := context.Background()

	if err := svc.SubscribeChat(ctx, 5, "org-1", "tok"); err != nil {
		t.Fatalf("SubscribeChat: %v", err)
	}

	if len(authorizer.channels) != 1 {
		t.Fatalf("authorized %d times, want 1", len(authorizer.channels))
	}
	if authorizer.channels[0] != "private-org-org-1" {
		t.Fatalf("channel = %q", authorizer.channels[0])
	}
	if authorizer.tokens[0] != "tok" {
		t.Fatalf("token = %q", authorizer.tokens[0])
	}
	if authorizer.sockets[0] == "" {
		t.Fatal("socket id not set")
	}
}

func TestSubscribeChatAuthorizationDenied(t *testing.T) {
	transport := newFakeTransport()
	authorizer := &fakeAuthorizer{err: &payout.APIError{Status: 403, Message: "forbidden"}}
	svc := NewService(session.NewMemoryStore(), transport, &fakeMessenger{},
		WithAuthorizer(authorizer))
	ctx := context.Background()

	if err := svc.SubscribeChat(ctx, 5, "org-1", "tok"); err == nil {
		t.Fatal("SubscribeChat returned nil error on denial")
	}
	if svc.Subscribed("org-1") {
		t.Fatal("denied org still marked subscribed")
	}
	transport.mu.Lock()
	_, joined := transport.channels["private-org-org-1"]
	transport.mu.Unlock()
	if joined {
		t.Fatal("transport joined an unauthorized channel")
	}
}

func TestResubscribeSkipsExpiredSessions(t *testing.T) {
	store := session.NewMemoryStore()
	transport := newFakeTransport()
	svc := NewService(store, transport, &fakeMessenger{})
	ctx := context.Background()

	valid := time.Now().Add(time.Hour).Format(time.RFC3339)
	expired := time.Now().Add(-time.Hour).Format(time.RFC3339)

	store.Update(ctx, 1, func(s *session.Session) {
		s.State = session.StateAuthenticated
		s.OrganizationID = "org-live"
		s.AuthData = &session.AuthData{AccessToken: "tok", ExpireAt: valid}
	})
	store.Update(ctx, 2, func(s *session.Session) {
		s.State = session.StateAuthenticated
		s.OrganizationID = "org-stale"
		s.AuthData = &session.AuthData{AccessToken: "tok", ExpireAt: expired}
	})
	store.Update(ctx, 3, func(s *session.Session) {
		s.State = session.StateIdle
	})

	if err := svc.Resubscribe(ctx); err != nil {
		t.Fatalf("Resubscribe: %v", err)
	}

	if !svc.Subscribed("org-live") {
		t.Fatal("valid session not resubscribed")
	}
	if svc.Subscribed("org-stale") {
		t.Fatal("expired session resubscribed")
	}
}

func TestShortenAddress(t *testing.T) {
	if got := ShortenAddress("short"); got != "short" {
		t.Fatalf("short address altered: %q", got)
	}
	if got := ShortenAddress("0x1234567890abcdef1234567890abcdef12345678"); got != "0x1234...5678" {
		t.Fatalf("ShortenAddress = %q", got)
	}
}
