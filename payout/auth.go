package payout

import (
	"context"
	"net/http"
)

// RequestEmailOTP asks the platform to email a one-time password and returns
// the sid required to complete authentication.
func (c *Client) RequestEmailOTP(ctx context.Context, email string) (OTPRequestResult, error) {
	var out OTPRequestResult
	err := c.do(ctx, http.MethodPost, "/api/auth/email-otp/request", "", map[string]string{
		"email": email,
	}, &out)
	return out, err
}

// AuthenticateEmailOTP exchanges email, OTP and sid for an access token.
func (c *Client) AuthenticateEmailOTP(ctx context.Context, email, otp, sid string) (AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/email-otp/authenticate", "", map[string]string{
		"email": email,
		"otp":   otp,
		"sid":   sid,
	}, &out)
	return out, err
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (UserProfile, error) {
	var out UserProfile
	err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &out)
	return out, err
}

// KYCStatus lists the KYC records of the token's owner.
func (c *Client) KYCStatus(ctx context.Context, token string) (KYCList, error) {
	var out KYCList
	err := c.do(ctx, http.MethodGet, "/api/kycs", token, nil, &out)
	return out, err
}

// NotificationsAuth signs a realtime channel subscription for the token's org.
func (c *Client) NotificationsAuth(ctx context.Context, token string, req NotificationsAuthRequest) (NotificationsAuthResult, error) {
	var out NotificationsAuthResult
	err := c.do(ctx, http.MethodPost, "/api/notifications/auth", token, req, &out)
	return out, err
}
