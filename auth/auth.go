// Package auth owns the login lifecycle: OTP initiation and verification,
// token validity and KYC status checks.
package auth

import (
	"context"
	"errors"
	"time"

	"payoutbot/core/logger"
	"payoutbot/payout"
	"payoutbot/session"

	"log/slog"
)

// ErrLoginExpired means the OTP step arrived without a pending login
// (no stored email or sid), so the flow must be restarted.
var ErrLoginExpired = errors.New("auth: login flow expired")

// API is the slice of the payout client the auth service needs.
type API interface {
	RequestEmailOTP(ctx context.Context, email string) (payout.OTPRequestResult, error)
	AuthenticateEmailOTP(ctx context.Context, email, otp, sid string) (payout.AuthResult, error)
	Me(ctx context.Context, token string) (payout.UserProfile, error)
	KYCStatus(ctx context.Context, token string) (payout.KYCList, error)
}

// Service implements the auth lifecycle over the session store.
type Service struct {
	store session.Store
	api   API
	now   func() time.Time
}

// NewService wires the auth service.
func NewService(store session.Store, api API) *Service {
	return &Service{store: store, api: api, now: time.Now}
}

// InitiateLogin requests an email OTP and moves the chat to AWAITING_OTP.
// On failure the chat is reset to IDLE and the error returned for the
// caller to translate into a user notice.
func (s *Service) InitiateLogin(ctx context.Context, chatID int64, email string) error {
	result, err := s.api.RequestEmailOTP(ctx, email)
	if err != nil {
		logger.Error(ctx, "app", "login.otp_request_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		if _, resetErr := s.store.Update(ctx, chatID, func(sess *session.Session) {
			sess.State = session.StateIdle
		}); resetErr != nil {
			logger.Error(ctx, "app", "login.reset_failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", resetErr.Error()),
			)
		}
		return err
	}

	_, err = s.store.Update(ctx, chatID, func(sess *session.Session) {
		sess.Email = email
		sess.State = session.StateAwaitingOTP
		sess.AuthData = &session.AuthData{SID: result.SID}
	})
	return err
}

// VerifyOTP completes the login. A missing pending login returns
// ErrLoginExpired after resetting the chat to IDLE. A rejected OTP leaves
// the state unchanged so the user may retry.
func (s *Service) VerifyOTP(ctx context.Context, chatID int64, otp string) (*payout.UserProfile, error) {
	sess := s.store.Get(ctx, chatID)
	if sess.Email == "" || sess.AuthData == nil || sess.AuthData.SID == "" {
		if _, err := s.store.Update(ctx, chatID, func(sess *session.Session) {
			sess.State = session.StateIdle
		}); err != nil {
			return nil, err
		}
		return nil, ErrLoginExpired
	}

	result, err := s.api.AuthenticateEmailOTP(ctx, sess.Email, otp, sess.AuthData.SID)
	if err != nil {
		logger.Error(ctx, "app", "login.otp_verify_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return nil, err
	}

	if _, err := s.store.Update(ctx, chatID, func(sess *session.Session) {
		sess.State = session.StateAuthenticated
		sess.UserID = result.User.ID
		sess.OrganizationID = result.User.OrganizationID
		sess.AuthData = &session.AuthData{
			AccessToken:   result.AccessToken,
			AccessTokenID: result.AccessTokenID,
			ExpireAt:      result.ExpireAt,
		}
	}); err != nil {
		return nil, err
	}
	return &result.User, nil
}

// IsAuthenticated reports whether the chat holds an unexpired token.
func (s *Service) IsAuthenticated(ctx context.Context, chatID int64) bool {
	return s.store.Get(ctx, chatID).Authenticated(s.now())
}

// AccessToken returns the chat's token if it is still valid.
func (s *Service) AccessToken(ctx context.Context, chatID int64) (string, bool) {
	sess := s.store.Get(ctx, chatID)
	if !sess.Authenticated(s.now()) {
		return "", false
	}
	return sess.AuthData.AccessToken, true
}

// Profile fetches the authenticated user's profile from the platform.
func (s *Service) Profile(ctx context.Context, chatID int64) (*payout.UserProfile, error) {
	token, ok := s.AccessToken(ctx, chatID)
	if !ok {
		return nil, ErrLoginExpired
	}
	profile, err := s.api.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// IsKYCVerified reports the verification flag cached on the session.
func (s *Service) IsKYCVerified(ctx context.Context, chatID int64) bool {
	sess := s.store.Get(ctx, chatID)
	return sess.Authenticated(s.now()) && sess.KYCVerified
}

// CheckKYCStatus queries the platform and returns the most recently created
// KYC record, or nil when none exist. The session is not mutated.
func (s *Service) CheckKYCStatus(ctx context.Context, chatID int64) (*payout.KYCRecord, error) {
	token, ok := s.AccessToken(ctx, chatID)
	if !ok {
		return nil, ErrLoginExpired
	}
	sess := s.store.Get(ctx, chatID)
	if sess.UserID == "" {
		return nil, ErrLoginExpired
	}

	list, err := s.api.KYCStatus(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return nil, nil
	}

	latest := list.Data[0]
	for _, rec := range list.Data[1:] {
		if rec.CreatedAt > latest.CreatedAt {
			latest = rec
		}
	}
	return &latest, nil
}

// Logout drops credentials and returns the chat to IDLE.
func (s *Service) Logout(ctx context.Context, chatID int64) error {
	_, err := s.store.Update(ctx, chatID, func(sess *session.Session) {
		sess.State = session.StateIdle
		sess.KYCVerified = false
		sess.AuthData = nil
		sess.Transfer = nil
		sess.UserID = ""
		sess.OrganizationID = ""
	})
	return err
}
