// Package wallet exposes wallet operations gated by a valid access token.
package wallet

import (
	"context"
	"errors"

	"payoutbot/payout"
)

// ErrNotAuthenticated means the chat holds no valid token.
var ErrNotAuthenticated = errors.New("wallet: not authenticated")

// TokenSource resolves the current access token of a chat.
type TokenSource interface {
	AccessToken(ctx context.Context, chatID int64) (string, bool)
}

// API is the slice of the payout client the wallet service needs.
type API interface {
	Wallets(ctx context.Context, token string) ([]payout.Wallet, error)
	GenerateWallet(ctx context.Context, token, network string) (payout.Wallet, error)
	DefaultWallet(ctx context.Context, token string) (payout.Wallet, error)
	SetDefaultWallet(ctx context.Context, token, walletID string) (payout.Wallet, error)
	Balance(ctx context.Context, token string) (payout.Balance, error)
	Balances(ctx context.Context, token string) ([]payout.WalletBalances, error)
}

// Service wraps the wallet endpoints with per-chat token resolution.
type Service struct {
	api    API
	tokens TokenSource
}

// NewService wires the wallet service.
func NewService(api API, tokens TokenSource) *Service {
	return &Service{api: api, tokens: tokens}
}

func (s *Service) token(ctx context.Context, chatID int64) (string, error) {
	token, ok := s.tokens.AccessToken(ctx, chatID)
	if !ok {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// List returns the organization's wallets.
func (s *Service) List(ctx context.Context, chatID int64) ([]payout.Wallet, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.api.Wallets(ctx, token)
}

// Find returns the wallet with the given id, or nil when absent.
func (s *Service) Find(ctx context.Context, chatID int64, walletID string) (*payout.Wallet, error) {
	wallets, err := s.List(ctx, chatID)
	if err != nil {
		return nil, err
	}
	for i := range wallets {
		if wallets[i].ID == walletID {
			return &wallets[i], nil
		}
	}
	return nil, nil
}

// Generate creates (or returns) the wallet on the given network.
func (s *Service) Generate(ctx context.Context, chatID int64, network string) (payout.Wallet, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.Wallet{}, err
	}
	return s.api.GenerateWallet(ctx, token, network)
}

// Default returns the wallet marked as default.
func (s *Service) Default(ctx context.Context, chatID int64) (payout.Wallet, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.Wallet{}, err
	}
	return s.api.DefaultWallet(ctx, token)
}

// SetDefault marks the wallet as default.
func (s *Service) SetDefault(ctx context.Context, chatID int64, walletID string) (payout.Wallet, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.Wallet{}, err
	}
	return s.api.SetDefaultWallet(ctx, token, walletID)
}

// DefaultBalance returns the default wallet's balance.
func (s *Service) DefaultBalance(ctx context.Context, chatID int64) (payout.Balance, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.Balance{}, err
	}
	return s.api.Balance(ctx, token)
}

// AllBalances returns balances across every wallet.
func (s *Service) AllBalances(ctx context.Context, chatID int64) ([]payout.WalletBalances, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return s.api.Balances(ctx, token)
}

// SupportedNetworks lists the networks wallets can be created on.
func (s *Service) SupportedNetworks() []string {
	return []string{"ethereum", "polygon", "bitcoin", "solana"}
}
