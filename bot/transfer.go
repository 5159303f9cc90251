package bot

import (
	"context"
	"strconv"
	"strings"

	"payoutbot/core/logger"
	"payoutbot/session"
	"payoutbot/transfer"

	"log/slog"
)

var transferCurrencies = []string{"USDT", "USDC", "ETH", "BTC"}

var transferPurposes = []string{"PAYMENT", "GIFT", "INVESTMENT", "SELF"}

// SingleCancelKeyboard is the lone cancel row attached to flow prompts.
func SingleCancelKeyboard() Keyboard {
	return Keyboard{Row(Button{Text: "❌ Cancel", Callback: "cancel_transfer"})}
}

func currencyKeyboard() Keyboard {
	row := make([]Button, 0, len(transferCurrencies))
	for _, cur := range transferCurrencies {
		row = append(row, Button{Text: cur, Callback: "transfer_currency:" + cur})
	}
	return Keyboard{row, Row(Button{Text: "❌ Cancel", Callback: "cancel_transfer"})}
}

func purposeKeyboard() Keyboard {
	kb := make(Keyboard, 0, len(transferPurposes)/2+1)
	for i := 0; i < len(transferPurposes); i += 2 {
		row := Row(Button{Text: transferPurposes[i], Callback: "transfer_purpose:" + transferPurposes[i]})
		if i+1 < len(transferPurposes) {
			row = append(row, Button{Text: transferPurposes[i+1], Callback: "transfer_purpose:" + transferPurposes[i+1]})
		}
		kb = append(kb, row)
	}
	return append(kb, Row(Button{Text: "❌ Cancel", Callback: "cancel_transfer"}))
}

// TransferMenu shows the transfer operations.
func (b *Bot) TransferMenu(ctx context.Context, chatID int64) error {
	kb := Keyboard{
		Row(Button{Text: "📋 History", Callback: "transfer_list"}, Button{Text: "💸 Send", Callback: "transfer_send"}),
		Row(Button{Text: "🏧 Withdraw", Callback: "transfer_withdraw"}, Button{Text: "📦 Batch", Callback: "transfer_batch"}),
		Row(Button{Text: "🏦 Offramp", Callback: "transfer_offramp"}),
	}
	return b.m.Send(ctx, chatID, transferOptionsMessage, kb)
}

// SendFunds asks how the recipient should be addressed.
func (b *Bot) SendFunds(ctx context.Context, chatID int64) error {
	kb := Keyboard{
		Row(Button{Text: "📧 By email", Callback: "send_by_email"}, Button{Text: "🔑 By wallet", Callback: "send_by_wallet"}),
		Row(Button{Text: "❌ Cancel", Callback: "cancel_transfer"}),
	}
	return b.m.Send(ctx, chatID, sendTransferHeaderMessage, kb)
}

func (b *Bot) showTransferPage(ctx context.Context, chatID int64, page int) error {
	list, err := b.transfers.List(ctx, chatID, page)
	if err != nil {
		logger.Error(ctx, "app", "transfer.list_failed",
			slog.Int64("chat_id", chatID),
			slog.Int("page", page),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, errorFetchingTransfersMessage, nil)
	}
	if list.Count == 0 || len(list.Data) == 0 {
		kb := Keyboard{Row(Button{Text: "💸 Send funds", Callback: "transfer_send"})}
		return b.m.Send(ctx, chatID, transferEmptyListMessage, kb)
	}

	if page < 1 {
		page = 1
	}
	totalPages := (list.Count + transfer.PageSize - 1) / transfer.PageSize

	kb := make(Keyboard, 0, len(list.Data)+2)
	for _, t := range list.Data {
		kb = append(kb, Row(Button{Text: transferListEntry(t), Callback: "transfer_details:" + t.ID}))
	}
	var nav []Button
	if page > 1 {
		nav = append(nav, Button{Text: "« Prev", Callback: "transfer_prev_page:" + strconv.Itoa(page-1)})
	}
	if list.HasMore {
		nav = append(nav, Button{Text: "Next »", Callback: "transfer_next_page:" + strconv.Itoa(page+1)})
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}
	kb = append(kb, Row(Button{Text: "« Back", Callback: "transfer_back"}))
	return b.m.Send(ctx, chatID, transferListHeaderMessage(page, totalPages), kb)
}

func (b *Bot) transferListCallback(ctx context.Context, chatID int64, args []string) error {
	return b.showTransferPage(ctx, chatID, 1)
}

// transferPageCallback serves both page directions; the argument carries
// the target page. Anything non-numeric is dropped.
func (b *Bot) transferPageCallback(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		return nil
	}
	page, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || page < 1 {
		logger.Debug(ctx, "app", "transfer.page_token_ignored",
			slog.Int64("chat_id", chatID),
			slog.String("token", logger.SanitizeLimit(args[0], 32)),
		)
		return nil
	}
	return b.showTransferPage(ctx, chatID, page)
}

func (b *Bot) transferDetailsCallback(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}
	t, err := b.transfers.Get(ctx, chatID, args[0])
	if err != nil {
		logger.Error(ctx, "app", "transfer.details_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, errorFetchingTransfersMessage, nil)
	}
	kb := Keyboard{Row(Button{Text: "« Back to list", Callback: "transfer_list"})}
	return b.m.Send(ctx, chatID, transferDetailsMessage(t), kb)
}

// startDraft seeds a transfer draft and moves the chat to the recipient step.
func (b *Bot) startDraft(ctx context.Context, chatID int64, method session.TransferMethod, withdraw bool) error {
	next := session.StateAwaitingRecipient
	prompt := sendByEmailMessage
	if method == session.MethodWallet {
		next = session.StateAwaitingWalletAddr
		prompt = sendByWalletMessage
		if withdraw {
			prompt = withdrawHeaderMessage
		}
	}
	if _, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		s.Transfer = &session.TransferDraft{Method: method, Withdraw: withdraw}
		s.State = next
	}); err != nil {
		return err
	}
	return b.m.Send(ctx, chatID, prompt, SingleCancelKeyboard())
}

func (b *Bot) sendByEmailCallback(ctx context.Context, chatID int64, _ []string) error {
	return b.startDraft(ctx, chatID, session.MethodEmail, false)
}

func (b *Bot) sendByWalletCallback(ctx context.Context, chatID int64, _ []string) error {
	return b.startDraft(ctx, chatID, session.MethodWallet, false)
}

func (b *Bot) withdrawCallback(ctx context.Context, chatID int64, _ []string) error {
	return b.startDraft(ctx, chatID, session.MethodWallet, true)
}

func (b *Bot) batchCallback(ctx context.Context, chatID int64, _ []string) error {
	kb := Keyboard{Row(Button{Text: "« Back", Callback: "transfer_back"})}
	return b.m.Send(ctx, chatID, batchTransferHeaderMessage, kb)
}

func (b *Bot) offrampCallback(ctx context.Context, chatID int64, _ []string) error {
	kb := Keyboard{Row(Button{Text: "« Back", Callback: "transfer_back"})}
	return b.m.Send(ctx, chatID, offrampTransferHeaderMessage, kb)
}

func (b *Bot) currencyCallback(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		return b.m.Send(ctx, chatID, sendCurrencyMessage, currencyKeyboard())
	}
	currency := strings.ToUpper(strings.TrimSpace(args[0]))
	valid := false
	for _, cur := range transferCurrencies {
		if cur == currency {
			valid = true
			break
		}
	}
	sess := b.store.Get(ctx, chatID)
	if !valid || sess.State != session.StateAwaitingCurrency || sess.Transfer == nil {
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}
	if _, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		s.Transfer.Currency = currency
		s.State = session.StateAwaitingPurpose
	}); err != nil {
		return err
	}
	return b.m.Send(ctx, chatID, sendPurposeMessage, purposeKeyboard())
}

func (b *Bot) purposeCallback(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 {
		return b.m.Send(ctx, chatID, sendPurposeMessage, purposeKeyboard())
	}
	purpose := strings.ToUpper(strings.TrimSpace(args[0]))
	valid := false
	for _, p := range transferPurposes {
		if p == purpose {
			valid = true
			break
		}
	}
	sess := b.store.Get(ctx, chatID)
	if !valid || sess.State != session.StateAwaitingPurpose || sess.Transfer == nil {
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}
	sess, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		s.Transfer.Purpose = purpose
		s.State = session.StateAwaitingConfirmation
	})
	if err != nil {
		return err
	}

	draft := sess.Transfer
	recipient := draft.Recipient
	if draft.Method == session.MethodWallet {
		recipient = ShortenWalletAddress(recipient)
	}
	kb := Keyboard{
		Row(
			Button{Text: "✅ Confirm", Callback: "send_confirm"},
			Button{Text: "❌ Cancel", Callback: "send_cancel"},
		),
	}
	return b.m.Send(ctx, chatID,
		sendConfirmationMessage(recipient, draft.Amount, draft.Currency, draft.Purpose), kb)
}

func (b *Bot) confirmCallback(ctx context.Context, chatID int64, _ []string) error {
	sess := b.store.Get(ctx, chatID)
	if sess.State != session.StateAwaitingConfirmation || !sess.Transfer.Complete() {
		return b.m.Send(ctx, chatID, noPendingTransferMessage, nil)
	}
	draft := sess.Transfer

	t, err := b.transfers.SendDraft(ctx, chatID, draft)
	if err != nil {
		// State stays at confirmation so the user may retry or cancel.
		logger.Error(ctx, "app", "transfer.send_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		kb := Keyboard{
			Row(
				Button{Text: "🔄 Try again", Callback: "send_confirm"},
				Button{Text: "❌ Cancel", Callback: "send_cancel"},
			),
		}
		return b.m.Send(ctx, chatID, sendErrorMessage, kb)
	}
	if _, resetErr := b.store.Update(ctx, chatID, func(s *session.Session) {
		s.Transfer = nil
		s.State = session.StateAuthenticated
	}); resetErr != nil {
		return resetErr
	}

	logger.Info(ctx, "app", "transfer.sent",
		slog.Int64("chat_id", chatID),
		slog.String("transfer_id", t.ID),
		slog.String("currency", draft.Currency),
	)
	recipient := draft.Recipient
	if draft.Method == session.MethodWallet {
		recipient = ShortenWalletAddress(recipient)
	}
	kb := Keyboard{
		Row(Button{Text: "📋 History", Callback: "transfer_list"}, Button{Text: "💸 Send again", Callback: "transfer_send"}),
	}
	return b.m.Send(ctx, chatID, sendSuccessMessage(draft.Amount, draft.Currency, recipient), kb)
}

func (b *Bot) cancelCallback(ctx context.Context, chatID int64, _ []string) error {
	if _, err := b.store.Update(ctx, chatID, func(s *session.Session) {
		s.Transfer = nil
		if flowStates[s.State] {
			s.State = session.StateAuthenticated
		}
	}); err != nil {
		return err
	}
	kb := Keyboard{
		Row(Button{Text: "💰 Wallet", Callback: "wallet_back"}, Button{Text: "💸 Transfers", Callback: "transfer_back"}),
	}
	return b.m.Send(ctx, chatID, transferCancelledMessage, kb)
}
