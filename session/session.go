package session

import (
	"strings"
	"time"
)

// State is the position of a chat inside the conversation machine.
type State string

const (
	StateIdle                 State = "IDLE"
	StateAwaitingLoginEmail   State = "AWAITING_LOGIN_EMAIL"
	StateAwaitingOTP          State = "AWAITING_OTP"
	StateAuthenticated        State = "AUTHENTICATED"
	StateAwaitingRecipient    State = "AWAITING_RECIPIENT_EMAIL"
	StateAwaitingWalletAddr   State = "AWAITING_WALLET_ADDRESS"
	StateAwaitingAmount       State = "AWAITING_AMOUNT"
	StateAwaitingCurrency     State = "AWAITING_CURRENCY"
	StateAwaitingPurpose      State = "AWAITING_PURPOSE"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
)

// TransferMethod selects how a transfer recipient is addressed.
type TransferMethod string

const (
	MethodEmail  TransferMethod = "email"
	MethodWallet TransferMethod = "wallet"
)

// AuthData carries the credentials obtained through the OTP login.
type AuthData struct {
	SID           string `json:"sid,omitempty"`
	AccessToken   string `json:"accessToken,omitempty"`
	AccessTokenID string `json:"accessTokenId,omitempty"`
	ExpireAt      string `json:"expireAt,omitempty"`
}

// TransferDraft accumulates the answers of the multi-step transfer flow.
type TransferDraft struct {
	Method    TransferMethod `json:"method,omitempty"`
	Recipient string         `json:"recipient,omitempty"`
	Amount    string         `json:"amount,omitempty"`
	Currency  string         `json:"currency,omitempty"`
	Purpose   string         `json:"purpose,omitempty"`
	// Withdraw marks the draft as a wallet withdrawal rather than a send.
	Withdraw bool `json:"withdraw,omitempty"`
}

// Complete reports whether every field needed to submit the transfer is set.
func (d *TransferDraft) Complete() bool {
	if d == nil {
		return false
	}
	return d.Method != "" &&
		strings.TrimSpace(d.Recipient) != "" &&
		strings.TrimSpace(d.Amount) != "" &&
		strings.TrimSpace(d.Currency) != "" &&
		strings.TrimSpace(d.Purpose) != ""
}

// Session is the per-chat conversation record.
type Session struct {
	ChatID         int64          `json:"chatId"`
	State          State          `json:"state"`
	Email          string         `json:"email,omitempty"`
	UserID         string         `json:"userId,omitempty"`
	OrganizationID string         `json:"organizationId,omitempty"`
	KYCVerified    bool           `json:"kycVerified,omitempty"`
	AuthData       *AuthData      `json:"authData,omitempty"`
	Transfer       *TransferDraft `json:"transfer,omitempty"`
	// LastCommandAt is a unix millisecond timestamp stamped on every update.
	LastCommandAt int64 `json:"lastCommandAt"`
}

// New returns a fresh IDLE session for the chat.
func New(chatID int64) *Session {
	return &Session{
		ChatID:        chatID,
		State:         StateIdle,
		LastCommandAt: time.Now().UnixMilli(),
	}
}

// Authenticated reports whether the session holds a token that has not
// expired. State alone is never trusted.
func (s *Session) Authenticated(now time.Time) bool {
	if s == nil || s.State != StateAuthenticated {
		return false
	}
	if s.AuthData == nil || s.AuthData.AccessToken == "" {
		return false
	}
	expireAt, err := time.Parse(time.RFC3339, s.AuthData.ExpireAt)
	if err != nil {
		return false
	}
	return expireAt.After(now)
}
