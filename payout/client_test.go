package payout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMeSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/auth/me" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user-1","firstName":"Ada","email":"ada@example.com"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	profile, err := client.Me(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if profile.ID != "user-1" || profile.FirstName != "Ada" {
		t.Fatalf("profile = %+v", profile)
	}
}

func TestUnauthorizedBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	_, err := client.Me(context.Background(), "stale")
	if err == nil {
		t.Fatal("Me returned nil error")
	}
	if !IsUnauthorized(err) {
		t.Fatalf("IsUnauthorized = false for %v", err)
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err type = %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "token expired" {
		t.Fatalf("APIError = %+v", apiErr)
	}
	if apiErr.Op != "GET /api/auth/me" {
		t.Fatalf("Op = %q", apiErr.Op)
	}
}

func TestValidationMessagesAreJoined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":["amount is required","currency is invalid"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	_, err := client.RequestEmailOTP(context.Background(), "user@example.com")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "amount is required; currency is invalid" {
		t.Fatalf("Message = %q", apiErr.Message)
	}
}

func TestErrorFieldFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"upstream down"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	_, err := client.KYCStatus(context.Background(), "tok")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "upstream down" {
		t.Fatalf("Message = %q", apiErr.Message)
	}
}

func TestNotificationsAuthRequestShape(t *testing.T) {
	var got NotificationsAuthRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/notifications/auth" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		var raw map[string]string
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode body: %v", err)
		}
		got.SocketID = raw["socket_id"]
		got.ChannelName = raw["channel_name"]
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"auth":"key:signature"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(srv.Client()))
	res, err := client.NotificationsAuth(context.Background(), "tok", NotificationsAuthRequest{
		SocketID:    "12345.67890",
		ChannelName: "private-org-org-1",
	})
	if err != nil {
		t.Fatalf("NotificationsAuth: %v", err)
	}
	if res.Auth != "key:signature" {
		t.Fatalf("Auth = %q", res.Auth)
	}
	if got.SocketID != "12345.67890" || got.ChannelName != "private-org-org-1" {
		t.Fatalf("body = %+v", got)
	}
}
