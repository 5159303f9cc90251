package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGetReturnsFreshSession(t *testing.T) {
	store := NewMemoryStore()
	sess := store.Get(context.Background(), 42)

	if sess.ChatID != 42 {
		t.Fatalf("ChatID = %d, want 42", sess.ChatID)
	}
	if sess.State != StateIdle {
		t.Fatalf("State = %q, want %q", sess.State, StateIdle)
	}
	if sess.AuthData != nil {
		t.Fatalf("AuthData = %+v, want nil", sess.AuthData)
	}
	if sess.LastCommandAt == 0 {
		t.Fatal("LastCommandAt not stamped")
	}
}

func TestUpdateMergesAndStamps(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Update(ctx, 7, func(s *Session) {
		s.State = StateAwaitingOTP
		s.Email = "user@example.com"
		s.AuthData = &AuthData{SID: "sid-1"}
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A later partial update must keep earlier fields.
	updated, err := store.Update(ctx, 7, func(s *Session) {
		s.State = StateAuthenticated
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Email != "user@example.com" {
		t.Fatalf("Email lost on partial update: %q", updated.Email)
	}
	if updated.AuthData == nil || updated.AuthData.SID != "sid-1" {
		t.Fatalf("AuthData lost on partial update: %+v", updated.AuthData)
	}
	if updated.State != StateAuthenticated {
		t.Fatalf("State = %q, want %q", updated.State, StateAuthenticated)
	}
}

func TestUpdateNoopOnlyStampsTimestamp(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, err := store.Update(ctx, 9, func(s *Session) {
		s.State = StateAuthenticated
		s.Email = "a@b.c"
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	time.Sleep(2 * time.Millisecond)
	second, err := store.Update(ctx, 9, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if second.State != first.State || second.Email != first.Email {
		t.Fatalf("no-op update changed fields: %+v vs %+v", second, first)
	}
	if second.LastCommandAt <= first.LastCommandAt {
		t.Fatalf("LastCommandAt not advanced: %d <= %d", second.LastCommandAt, first.LastCommandAt)
	}
}

func TestClearResetsToFresh(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Update(ctx, 5, func(s *Session) {
		s.State = StateAuthenticated
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := store.Clear(ctx, 5); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	sess := store.Get(ctx, 5)
	if sess.State != StateIdle {
		t.Fatalf("State after Clear = %q, want %q", sess.State, StateIdle)
	}
}

func TestListAll(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, chatID := range []int64{1, 2, 3} {
		if _, err := store.Update(ctx, chatID, func(s *Session) {
			s.State = StateAuthenticated
		}); err != nil {
			t.Fatalf("Update chat %d: %v", chatID, err)
		}
	}

	sessions, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("len(sessions) = %d, want 3", len(sessions))
	}
}

func TestAuthenticatedExpiry(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		sess *Session
		want bool
	}{
		{
			name: "valid token in future",
			sess: &Session{
				State: StateAuthenticated,
				AuthData: &AuthData{
					AccessToken: "tok",
					ExpireAt:    now.Add(time.Hour).Format(time.RFC3339),
				},
			},
			want: true,
		},
		{
			name: "expired token",
			sess: &Session{
				State: StateAuthenticated,
				AuthData: &AuthData{
					AccessToken: "tok",
					ExpireAt:    now.Add(-time.Minute).Format(time.RFC3339),
				},
			},
			want: false,
		},
		{
			name: "authenticated state without token",
			sess: &Session{State: StateAuthenticated},
			want: false,
		},
		{
			name: "token but wrong state",
			sess: &Session{
				State: StateIdle,
				AuthData: &AuthData{
					AccessToken: "tok",
					ExpireAt:    now.Add(time.Hour).Format(time.RFC3339),
				},
			},
			want: false,
		},
		{
			name: "unparseable expiry",
			sess: &Session{
				State:    StateAuthenticated,
				AuthData: &AuthData{AccessToken: "tok", ExpireAt: "not-a-time"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sess.Authenticated(now); got != tt.want {
				t.Fatalf("Authenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransferDraftComplete(t *testing.T) {
	var nilDraft *TransferDraft
	if nilDraft.Complete() {
		t.Fatal("nil draft reported complete")
	}

	draft := &TransferDraft{
		Method:    MethodEmail,
		Recipient: "user@example.com",
		Amount:    "12.5",
		Currency:  "USDC",
	}
	if draft.Complete() {
		t.Fatal("draft without purpose reported complete")
	}
	draft.Purpose = "PAYMENT"
	if !draft.Complete() {
		t.Fatal("complete draft reported incomplete")
	}
}

func TestConcurrentGetOfExpiredSession(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Update(ctx, 7, func(s *Session) {
		s.State = StateAuthenticated
		s.Email = "user@example.com"
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := store.SetExpiry(ctx, 7, time.Millisecond); err != nil {
		t.Fatalf("SetExpiry: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sess := store.Get(ctx, 7)
				if sess.State != StateIdle {
					t.Errorf("State = %q, want %q", sess.State, StateIdle)
					return
				}
			}
		}()
	}
	wg.Wait()
}
