package payout

import (
	"context"
	"net/http"
)

// Wallets lists the organization's wallets.
func (c *Client) Wallets(ctx context.Context, token string) ([]Wallet, error) {
	var out []Wallet
	err := c.do(ctx, http.MethodGet, "/api/wallets", token, nil, &out)
	return out, err
}

// GenerateWallet creates (or returns the existing) wallet on the given network.
func (c *Client) GenerateWallet(ctx context.Context, token, network string) (Wallet, error) {
	var out Wallet
	err := c.do(ctx, http.MethodPost, "/api/wallets", token, map[string]string{
		"network": network,
	}, &out)
	return out, err
}

// DefaultWallet returns the wallet currently marked as default.
func (c *Client) DefaultWallet(ctx context.Context, token string) (Wallet, error) {
	var out Wallet
	err := c.do(ctx, http.MethodGet, "/api/wallets/default", token, nil, &out)
	return out, err
}

// SetDefaultWallet marks the given wallet as default.
func (c *Client) SetDefaultWallet(ctx context.Context, token, walletID string) (Wallet, error) {
	var out Wallet
	err := c.do(ctx, http.MethodPost, "/api/wallets/default", token, map[string]string{
		"walletId": walletID,
	}, &out)
	return out, err
}

// Balance returns token balances of the default wallet.
func (c *Client) Balance(ctx context.Context, token string) (Balance, error) {
	var out Balance
	err := c.do(ctx, http.MethodGet, "/api/wallets/balance", token, nil, &out)
	return out, err
}

// Balances returns token balances across all wallets.
func (c *Client) Balances(ctx context.Context, token string) ([]WalletBalances, error) {
	var out []WalletBalances
	err := c.do(ctx, http.MethodGet, "/api/wallets/balances", token, nil, &out)
	return out, err
}
