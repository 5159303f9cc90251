// Package bot implements the conversational core: command and callback
// dispatch, the per-chat input state machine, and the login, wallet and
// transfer flows.
package bot

import (
	"context"
	"sort"
	"strings"

	"payoutbot/auth"
	"payoutbot/core/logger"
	"payoutbot/notify"
	"payoutbot/session"
	"payoutbot/transfer"
	"payoutbot/wallet"

	"log/slog"
)

// gate is the access level a command or callback requires.
type gate int

const (
	gateNone gate = iota // open to everyone
	gateAuth             // valid token required
	gateKYC              // valid token and approved KYC required
)

// CommandFunc handles a slash command for a chat.
type CommandFunc func(ctx context.Context, chatID int64) error

// CallbackFunc handles an inline button press with its parsed arguments.
type CallbackFunc func(ctx context.Context, chatID int64, args []string) error

type commandDef struct {
	Handler     CommandFunc
	Description string
	Gate        gate
	Hidden      bool
}

type callbackDef struct {
	Handler CallbackFunc
	Gate    gate
}

// Options carries the static configuration the flows need.
type Options struct {
	KYCGuideURL  string
	KYCPortalURL string
}

// Bot wires the services behind the Telegram conversation.
type Bot struct {
	store     session.Store
	auth      *auth.Service
	wallets   *wallet.Service
	transfers *transfer.Service
	notify    *notify.Service
	m         Messenger
	opts      Options

	commands  map[string]commandDef
	callbacks map[string]callbackDef
}

// New builds the bot and registers its command and callback tables.
// The notify service is optional.
func New(store session.Store, authSvc *auth.Service, walletSvc *wallet.Service, transferSvc *transfer.Service, notifySvc *notify.Service, m Messenger, opts Options) *Bot {
	b := &Bot{
		store:     store,
		auth:      authSvc,
		wallets:   walletSvc,
		transfers: transferSvc,
		notify:    notifySvc,
		m:         m,
		opts:      opts,
		commands:  make(map[string]commandDef),
		callbacks: make(map[string]callbackDef),
	}
	b.registerCommands()
	b.registerCallbacks()
	return b
}

func (b *Bot) registerCommands() {
	b.commands["start"] = commandDef{Handler: b.Start, Description: "Start bot, display all options available", Gate: gateNone}
	b.commands["login"] = commandDef{Handler: b.Login, Description: "Login to your account", Gate: gateNone}
	b.commands["help"] = commandDef{Handler: b.Help, Description: "Get help with the bot commands", Gate: gateNone}
	b.commands["logout"] = commandDef{Handler: b.Logout, Description: "Logout from your account", Gate: gateNone}
	b.commands["verify"] = commandDef{Handler: b.CheckVerification, Description: "Check your KYC verification status", Gate: gateAuth}
	b.commands["wallet"] = commandDef{Handler: b.WalletMenu, Description: "Manage your wallet (view balance)", Gate: gateKYC}
	b.commands["transfer"] = commandDef{Handler: b.TransferMenu, Description: "View and manage transfers", Gate: gateKYC}
	b.commands["send"] = commandDef{Handler: b.SendFunds, Description: "Send funds to email or wallet", Gate: gateKYC}
	b.commands["balance"] = commandDef{Handler: b.AllBalances, Description: "Show balances across wallets", Gate: gateKYC}
}

func (b *Bot) registerCallbacks() {
	b.callbacks["login"] = callbackDef{Handler: func(ctx context.Context, chatID int64, _ []string) error {
		return b.Login(ctx, chatID)
	}, Gate: gateNone}
	b.callbacks["help"] = callbackDef{Handler: func(ctx context.Context, chatID int64, _ []string) error {
		return b.Help(ctx, chatID)
	}, Gate: gateNone}
	b.callbacks["check_verification"] = callbackDef{Handler: func(ctx context.Context, chatID int64, _ []string) error {
		return b.CheckVerification(ctx, chatID)
	}, Gate: gateAuth}

	b.callbacks["wallet_details"] = callbackDef{Handler: b.walletDetailsCallback, Gate: gateKYC}
	b.callbacks["wallet_set_default"] = callbackDef{Handler: b.walletSetDefaultCallback, Gate: gateKYC}
	b.callbacks["wallet_deposit"] = callbackDef{Handler: b.walletDepositCallback, Gate: gateKYC}
	b.callbacks["wallet_all_balances"] = callbackDef{Handler: func(ctx context.Context, chatID int64, _ []string) error {
		return b.AllBalances(ctx, chatID)
	}, Gate: gateKYC}
	b.callbacks["wallet_create"] = callbackDef{Handler: b.walletCreateCallback, Gate: gateKYC}
	b.callbacks["wallet_back"] = callbackDef{Handler: func(ctx context.Context, chatID int64, _ []string) error {
		return b.WalletMenu(ctx, chatID)
	}, Gate: gateKYC}

	b.callbacks["transfer_list"] = callbackDef{Handler: b.transferListCallback, Gate: gateKYC}
	b.callbacks["transfer_next_page"] = callbackDef{Handler: b.transferPageCallback, Gate: gateKYC}
	b.callbacks["transfer_prev_page"] = callbackDef{Handler: b.transferPageCallback, Gate: gateKYC}
	b.callbacks["transfer_details"] = callbackDef{Handler: b.transferDetailsCallback, Gate: gateKYC}
	b.callbacks["transfer_back"] = callbackDef{Handler: func(ctx context.Context, chatID int64, _ []string) error {
		return b.TransferMenu(ctx, chatID)
	}, Gate: gateKYC}
	b.callbacks["transfer_send"] = callbackDef{Handler: func(ctx context.Context, chatID int64, _ []string) error {
		return b.SendFunds(ctx, chatID)
	}, Gate: gateKYC}
	b.callbacks["transfer_withdraw"] = callbackDef{Handler: b.withdrawCallback, Gate: gateKYC}
	b.callbacks["transfer_batch"] = callbackDef{Handler: b.batchCallback, Gate: gateKYC}
	b.callbacks["transfer_offramp"] = callbackDef{Handler: b.offrampCallback, Gate: gateKYC}

	b.callbacks["send_by_email"] = callbackDef{Handler: b.sendByEmailCallback, Gate: gateKYC}
	b.callbacks["send_by_wallet"] = callbackDef{Handler: b.sendByWalletCallback, Gate: gateKYC}
	b.callbacks["transfer_currency"] = callbackDef{Handler: b.currencyCallback, Gate: gateKYC}
	b.callbacks["transfer_purpose"] = callbackDef{Handler: b.purposeCallback, Gate: gateKYC}
	b.callbacks["send_confirm"] = callbackDef{Handler: b.confirmCallback, Gate: gateKYC}
	b.callbacks["send_cancel"] = callbackDef{Handler: b.cancelCallback, Gate: gateAuth}
	b.callbacks["cancel_transfer"] = callbackDef{Handler: b.cancelCallback, Gate: gateAuth}
}

// CommandList returns the visible commands sorted by name, for menu setup
// and the unknown-command reply.
func (b *Bot) CommandList() []string {
	names := make([]string, 0, len(b.commands))
	for name, def := range b.commands {
		if def.Hidden {
			continue
		}
		names = append(names, "/"+name)
	}
	sort.Strings(names)
	return names
}

// CommandDescriptions returns name/description pairs for menu registration.
func (b *Bot) CommandDescriptions() map[string]string {
	out := make(map[string]string, len(b.commands))
	for name, def := range b.commands {
		if !def.Hidden {
			out[name] = def.Description
		}
	}
	return out
}

// allow enforces the gate, sending the explanatory reply on failure.
func (b *Bot) allow(ctx context.Context, chatID int64, g gate, feature string) (bool, error) {
	if g == gateNone {
		return true, nil
	}
	if !b.auth.IsAuthenticated(ctx, chatID) {
		return false, b.m.Send(ctx, chatID, authRequiredMessage, nil)
	}
	if g == gateAuth {
		return true, nil
	}
	if b.auth.IsKYCVerified(ctx, chatID) {
		return true, nil
	}
	kb := Keyboard{
		Row(Button{Text: "Learn how to complete KYC", URL: b.opts.KYCGuideURL}),
		Row(Button{Text: "Complete KYC now", URL: b.opts.KYCPortalURL}),
		Row(Button{Text: "I've completed KYC", Callback: "check_verification"}),
	}
	return false, b.m.Send(ctx, chatID, kycRequiredMessage(feature), kb)
}

// HandleCommand dispatches a slash command by its lowercase name.
func (b *Bot) HandleCommand(ctx context.Context, chatID int64, name string) error {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	def, ok := b.commands[name]
	if !ok {
		return b.m.Send(ctx, chatID, unknownCommandMessage(b.CommandList()), nil)
	}
	ok, err := b.allow(ctx, chatID, def.Gate, "/"+name)
	if err != nil || !ok {
		return err
	}
	return def.Handler(ctx, chatID)
}

// HandleCallback dispatches an inline button press by its action key.
func (b *Bot) HandleCallback(ctx context.Context, chatID int64, key string, args []string) error {
	def, ok := b.callbacks[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		logger.Warn(ctx, "tg", "callback.unknown",
			slog.Int64("chat_id", chatID),
			slog.String("cb_key", logger.SanitizeLimit(key, 64)),
		)
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}
	ok, err := b.allow(ctx, chatID, def.Gate, "this action")
	if err != nil || !ok {
		return err
	}
	return def.Handler(ctx, chatID, args)
}

// HasCommand reports whether name is a registered command.
func (b *Bot) HasCommand(name string) bool {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	_, ok := b.commands[name]
	return ok
}
