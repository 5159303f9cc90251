package bot

import (
	"context"
	"fmt"
	"strings"

	"payoutbot/core/logger"
	"payoutbot/payout"

	"log/slog"
)

// WalletMenu lists the organization's wallets as buttons.
func (b *Bot) WalletMenu(ctx context.Context, chatID int64) error {
	wallets, err := b.wallets.List(ctx, chatID)
	if err != nil {
		logger.Error(ctx, "app", "wallet.list_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, errorFetchingWalletsMessage, nil)
	}
	if len(wallets) == 0 {
		kb := Keyboard{Row(Button{Text: "🆕 Create wallet", Callback: "wallet_create"})}
		return b.m.Send(ctx, chatID, noWalletsMessage, kb)
	}

	kb := make(Keyboard, 0, len(wallets)+2)
	for _, w := range wallets {
		label := fmt.Sprintf("%s (%s)", w.Network, ShortenWalletAddress(w.WalletAddress))
		if w.IsDefault {
			label = "⭐ " + label
		}
		kb = append(kb, Row(Button{Text: label, Callback: "wallet_details:" + w.ID}))
	}
	kb = append(kb,
		Row(Button{Text: "💰 All balances", Callback: "wallet_all_balances"}),
		Row(Button{Text: "🆕 Create wallet", Callback: "wallet_create"}),
	)
	return b.m.Send(ctx, chatID, walletListHeaderMessage, kb)
}

// AllBalances shows token balances across every wallet.
func (b *Bot) AllBalances(ctx context.Context, chatID int64) error {
	balances, err := b.wallets.AllBalances(ctx, chatID)
	if err != nil {
		logger.Error(ctx, "app", "wallet.balances_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, errorFetchingWalletsMessage, nil)
	}
	if len(balances) == 0 {
		return b.m.Send(ctx, chatID, noWalletsMessage, nil)
	}
	kb := Keyboard{Row(Button{Text: "« Back to wallets", Callback: "wallet_back"})}
	return b.m.Send(ctx, chatID, walletBalancesMessage(balances), kb)
}

func (b *Bot) walletByArg(ctx context.Context, chatID int64, args []string) (*payout.Wallet, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, nil
	}
	return b.wallets.Find(ctx, chatID, args[0])
}

func (b *Bot) walletDetailsCallback(ctx context.Context, chatID int64, args []string) error {
	w, err := b.walletByArg(ctx, chatID, args)
	if err != nil {
		logger.Error(ctx, "app", "wallet.details_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, errorFetchingWalletsMessage, nil)
	}
	if w == nil {
		return b.m.Send(ctx, chatID, noWalletsMessage, nil)
	}

	balance := "-"
	if balances, err := b.wallets.AllBalances(ctx, chatID); err == nil {
		for _, wb := range balances {
			if wb.WalletID != w.ID {
				continue
			}
			parts := make([]string, 0, len(wb.Balances))
			for _, bal := range wb.Balances {
				parts = append(parts, bal.Balance+" "+bal.Symbol)
			}
			if len(parts) > 0 {
				balance = strings.Join(parts, ", ")
			}
		}
	}

	kb := Keyboard{
		Row(Button{Text: "⭐ Set as default", Callback: "wallet_set_default:" + w.ID}),
		Row(Button{Text: "📥 Deposit", Callback: "wallet_deposit:" + w.ID}),
		Row(Button{Text: "« Back to wallets", Callback: "wallet_back"}),
	}
	return b.m.Send(ctx, chatID, walletDetailMessage(*w, balance), kb)
}

func (b *Bot) walletSetDefaultCallback(ctx context.Context, chatID int64, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}
	w, err := b.wallets.SetDefault(ctx, chatID, args[0])
	if err != nil {
		logger.Error(ctx, "app", "wallet.set_default_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}
	kb := Keyboard{Row(Button{Text: "« Back to wallets", Callback: "wallet_back"})}
	return b.m.Send(ctx, chatID, walletSetAsDefaultMessage(w.Network), kb)
}

func (b *Bot) walletDepositCallback(ctx context.Context, chatID int64, args []string) error {
	w, err := b.walletByArg(ctx, chatID, args)
	if err != nil {
		logger.Error(ctx, "app", "wallet.deposit_failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, errorFetchingWalletsMessage, nil)
	}
	if w == nil {
		return b.m.Send(ctx, chatID, noWalletsMessage, nil)
	}
	kb := Keyboard{Row(Button{Text: "« Back to wallets", Callback: "wallet_back"})}
	return b.m.Send(ctx, chatID, depositInstructionsMessage(w.Network, w.WalletAddress), kb)
}

func (b *Bot) walletCreateCallback(ctx context.Context, chatID int64, args []string) error {
	networks := b.wallets.SupportedNetworks()
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		kb := make(Keyboard, 0, len(networks))
		for _, network := range networks {
			kb = append(kb, Row(Button{Text: network, Callback: "wallet_create:" + network}))
		}
		kb = append(kb, Row(Button{Text: "« Back to wallets", Callback: "wallet_back"}))
		return b.m.Send(ctx, chatID, walletCreateMessage(networks), kb)
	}

	network := strings.ToLower(strings.TrimSpace(args[0]))
	supported := false
	for _, n := range networks {
		if n == network {
			supported = true
			break
		}
	}
	if !supported {
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}

	w, err := b.wallets.Generate(ctx, chatID, network)
	if err != nil {
		logger.Error(ctx, "app", "wallet.create_failed",
			slog.Int64("chat_id", chatID),
			slog.String("network", network),
			slog.String("err", err.Error()),
		)
		return b.m.Send(ctx, chatID, genericErrorMessage, nil)
	}
	logger.Info(ctx, "app", "wallet.created",
		slog.Int64("chat_id", chatID),
		slog.String("network", w.Network),
	)
	kb := Keyboard{
		Row(Button{Text: "📥 Deposit", Callback: "wallet_deposit:" + w.ID}),
		Row(Button{Text: "« Back to wallets", Callback: "wallet_back"}),
	}
	return b.m.Send(ctx, chatID, depositInstructionsMessage(w.Network, w.WalletAddress), kb)
}
