package bot

import (
	"context"
	"errors"
	"strings"

	"payoutbot/auth"
	"payoutbot/core/logger"
	"payoutbot/session"

	"log/slog"
)

// flowStates are the states in which plain text is consumed by a flow.
var flowStates = map[session.State]bool{
	session.StateAwaitingLoginEmail:   true,
	session.StateAwaitingOTP:          true,
	session.StateAwaitingRecipient:    true,
	session.StateAwaitingWalletAddr:   true,
	session.StateAwaitingAmount:       true,
	session.StateAwaitingCurrency:     true,
	session.StateAwaitingPurpose:      true,
	session.StateAwaitingConfirmation: true,
}

// InProgress reports whether the chat is inside a multi-step flow, meaning
// free text belongs to the flow rather than the fallback.
func (b *Bot) InProgress(ctx context.Context, chatID int64) bool {
	return flowStates[b.store.Get(ctx, chatID).State]
}

// HandleText routes a plain text message by the chat's current state.
// Exactly one handler consumes the input.
func (b *Bot) HandleText(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	sess := b.store.Get(ctx, chatID)

	switch sess.State {
	case session.StateAwaitingLoginEmail:
		return b.handleLoginEmail(ctx, chatID, text)
	case session.StateAwaitingOTP:
		return b.handleOTP(ctx, chatID, text)
	case session.StateAwaitingRecipient:
		return b.handleRecipientEmail(ctx, chatID, text)
	case session.StateAwaitingWalletAddr:
		return b.handleRecipientWallet(ctx, chatID, text)
	case session.StateAwaitingAmount:
		return b.handleAmount(ctx, chatID, text)
	case session.StateAwaitingCurrency, session.StateAwaitingPurpose, session.StateAwaitingConfirmation:
		return b.m.Send(ctx, chatID, useButtonsMessage, SingleCancelKeyboard())
	default:
		// Unregistered slash commands fall through the router's text
		// fallback. Treat them as commands, not as stray flow input.
		if strings.HasPrefix(text, "/") {
			return b.HandleCommand(ctx, chatID, strings.Fields(text)[0])
		}
		return b.m.Send(ctx, chatID, unknownStateMessage, nil)
	}
}

func (b *Bot) handleLoginEmail(ctx context.Context, chatID int64, text string) error {
	if !ValidEmail(text) {
		return b.m.Send(ctx, chatID, invalidEmailMessage, nil)
	}
	if err := b.auth.InitiateLogin(ctx, chatID, text); err != nil {
		return b.m.Send(ctx, chatID, otpRequestFailedMessage, nil)
	}
	return b.m.Send(ctx, chatID, otpSentMessage, nil)
}

func (b *Bot) handleOTP(ctx context.Context, chatID int64, text string) error {
	if !ValidOTP(text) {
		return b.m.Send(ctx, chatID, invalidOTPMessage, nil)
	}
	_, err := b.auth.VerifyOTP(ctx, chatID, text)
	if errors.Is(err, auth.ErrLoginExpired) {
		return b.m.Send(ctx, chatID, loginExpiredMessage, nil)
	}
	if err != nil {
		return b.m.Send(ctx, chatID, invalidOTPMessage, nil)
	}
	logger.Info(ctx, "app", "auth.login", slog.Int64("chat_id", chatID))
	return b.completeLogin(ctx, chatID)
}

func (b *Bot) handleRecipientEmail(ctx context.Context, chatID int64, text string) error {
	if !ValidEmail(text) {
		return b.m.Send(ctx, chatID, invalidEmailMessage, SingleCancelKeyboard())
	}
	return b.acceptRecipient(ctx, chatID, text)
}

func (b *Bot) handleRecipientWallet(ctx context.Context, chatID int64, text string) error {
	if !ValidWalletAddress(text) {
		return b.m.Send(ctx, chatID, invalidWalletAddressMessage, SingleCancelKeyboard())
	}
	return b.acceptRecipient(ctx, chatID, text)
}

func (b *Bot) acceptRecipient(ctx context.Context, chatID int64, recipient string) error {
	sess, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		if s.Transfer == nil {
			s.Transfer = &session.TransferDraft{}
		}
		s.Transfer.Recipient = recipient
		s.State = session.StateAwaitingAmount
	})
	if err != nil {
		return err
	}
	display := recipient
	if sess.Transfer != nil && sess.Transfer.Method == session.MethodWallet {
		display = ShortenWalletAddress(recipient)
	}
	return b.m.Send(ctx, chatID, sendAmountMessage(display), SingleCancelKeyboard())
}

func (b *Bot) handleAmount(ctx context.Context, chatID int64, text string) error {
	if !ValidAmount(text) {
		return b.m.Send(ctx, chatID, invalidAmountMessage, SingleCancelKeyboard())
	}
	if _, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		if s.Transfer == nil {
			s.Transfer = &session.TransferDraft{}
		}
		s.Transfer.Amount = text
		s.State = session.StateAwaitingCurrency
	}); err != nil {
		return err
	}
	return b.m.Send(ctx, chatID, sendCurrencyMessage, currencyKeyboard())
}
