package bot

import (
	"context"
	"fmt"
	"html"
	"strings"

	"payoutbot/core/logger"
	"payoutbot/session"

	"log/slog"
)

// Start greets the chat. Authenticated users get the feature menu,
// everyone else the login prompt.
func (b *Bot) Start(ctx context.Context, chatID int64) error {
	if b.auth.IsAuthenticated(ctx, chatID) {
		sess := b.store.Get(ctx, chatID)
		text := fmt.Sprintf("👋 Welcome back, %s!\n\nWhat would you like to do today?",
			html.EscapeString(sess.Email))
		kb := Keyboard{
			Row(Button{Text: "💰 Wallet", Callback: "wallet_back"}, Button{Text: "💸 Transfers", Callback: "transfer_back"}),
			Row(Button{Text: "🔍 KYC Status", Callback: "check_verification"}, Button{Text: "📚 Help", Callback: "help"}),
		}
		return b.m.Send(ctx, chatID, text, kb)
	}
	kb := Keyboard{Row(Button{Text: "🔐 Login", Callback: "login"}, Button{Text: "📚 Help", Callback: "help"})}
	return b.m.Send(ctx, chatID, welcomeMessage, kb)
}

// Login starts the email OTP flow by asking for the account email.
func (b *Bot) Login(ctx context.Context, chatID int64) error {
	if b.auth.IsAuthenticated(ctx, chatID) {
		sess := b.store.Get(ctx, chatID)
		return b.m.Send(ctx, chatID,
			fmt.Sprintf("You're already logged in as %s. Use /logout first to switch accounts.",
				html.EscapeString(sess.Email)), nil)
	}
	if _, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		s.State = session.StateAwaitingLoginEmail
	}); err != nil {
		return err
	}
	return b.m.Send(ctx, chatID, loginMessage, nil)
}

// Logout drops the chat's credentials and clears any in-flight flow.
func (b *Bot) Logout(ctx context.Context, chatID int64) error {
	if !b.auth.IsAuthenticated(ctx, chatID) {
		return b.m.Send(ctx, chatID, notLoggedInMessage, nil)
	}
	sess := b.store.Get(ctx, chatID)
	if b.notify != nil && sess.OrganizationID != "" {
		b.notify.Unsubscribe(sess.OrganizationID)
	}
	if err := b.auth.Logout(ctx, chatID); err != nil {
		return err
	}
	logger.Info(ctx, "app", "auth.logout", slog.Int64("chat_id", chatID))
	return b.m.Send(ctx, chatID, loggedOutMessage, nil)
}

// Help prints the command guide.
func (b *Bot) Help(ctx context.Context, chatID int64) error {
	return b.m.Send(ctx, chatID, helpMessage, nil)
}

// CheckVerification queries the platform for the latest KYC record and
// refreshes the cached verification flag.
func (b *Bot) CheckVerification(ctx context.Context, chatID int64) error {
	record, err := b.auth.CheckKYCStatus(ctx, chatID)
	if err != nil {
		logger.Error(ctx, "app", "kyc.check_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}

	verified := record != nil && strings.EqualFold(record.Status, "approved")
	if _, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		s.KYCVerified = verified
	}); err != nil {
		return err
	}

	if verified {
		return b.m.Send(ctx, chatID, verifiedMessage, nil)
	}
	kb := Keyboard{
		Row(Button{Text: "Learn how to complete KYC", URL: b.opts.KYCGuideURL}),
		Row(Button{Text: "Complete KYC now", URL: b.opts.KYCPortalURL}),
		Row(Button{Text: "🔄 Check again", Callback: "check_verification"}),
	}
	return b.m.Send(ctx, chatID, notVerifiedMessage, kb)
}

// completeLogin runs after a successful OTP verification: it refreshes the
// KYC flag, subscribes the chat to deposit events and greets the user.
func (b *Bot) completeLogin(ctx context.Context, chatID int64) error {
	record, err := b.auth.CheckKYCStatus(ctx, chatID)
	if err != nil {
		logger.Warn(ctx, "app", "kyc.post_login_check_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
	verified := record != nil && strings.EqualFold(record.Status, "approved")
	if _, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		s.KYCVerified = verified
	}); err != nil {
		return err
	}

	sess := b.store.Get(ctx, chatID)
	if b.notify != nil && sess.OrganizationID != "" {
		token, _ := b.auth.AccessToken(ctx, chatID)
		if err := b.notify.SubscribeChat(ctx, chatID, sess.OrganizationID, token); err != nil {
			logger.Warn(ctx, "app", "notify.subscribe_failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
		}
	}

	// Greet by the profile name when the platform knows it. The session
	// email is the fallback.
	name := sess.Email
	if profile, err := b.auth.Profile(ctx, chatID); err == nil {
		if full := strings.TrimSpace(profile.FirstName + " " + profile.LastName); full != "" {
			name = full
		}
	} else {
		logger.Warn(ctx, "app", "auth.profile_fetch_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}
	greeting := fmt.Sprintf("✅ Login successful! Welcome, %s.", html.EscapeString(name))
	if verified {
		kb := Keyboard{
			Row(Button{Text: "💰 Wallet", Callback: "wallet_back"}, Button{Text: "💸 Transfers", Callback: "transfer_back"}),
		}
		return b.m.Send(ctx, chatID, greeting+"\n\nYou're fully verified and ready to go.", kb)
	}
	kb := Keyboard{
		Row(Button{Text: "Complete KYC now", URL: b.opts.KYCPortalURL}),
		Row(Button{Text: "I've completed KYC", Callback: "check_verification"}),
	}
	return b.m.Send(ctx, chatID,
		greeting+"\n\n"+notVerifiedMessage, kb)
}
