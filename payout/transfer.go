package payout

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListTransfersParams filters the transfer listing.
type ListTransfersParams struct {
	Page   int
	Limit  int
	Status string
}

// ListTransfers fetches a page of the organization's transfers.
func (c *Client) ListTransfers(ctx context.Context, token string, params ListTransfersParams) (TransferList, error) {
	q := url.Values{}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	path := "/api/transfers"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var out TransferList
	err := c.do(ctx, http.MethodGet, path, token, nil, &out)
	return out, err
}

// GetTransfer fetches a single transfer by id.
func (c *Client) GetTransfer(ctx context.Context, token, id string) (Transfer, error) {
	var out Transfer
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/transfers/%s", url.PathEscape(id)), token, nil, &out)
	return out, err
}

// SendTransfer sends a payment to an email or wallet address recipient.
func (c *Client) SendTransfer(ctx context.Context, token string, req TransferRequest) (Transfer, error) {
	var out Transfer
	err := c.do(ctx, http.MethodPost, "/api/transfers/send", token, req, &out)
	return out, err
}

// WithdrawToWallet withdraws balance to an external wallet address.
func (c *Client) WithdrawToWallet(ctx context.Context, token string, req TransferRequest) (Transfer, error) {
	var out Transfer
	err := c.do(ctx, http.MethodPost, "/api/transfers/wallet-withdraw", token, req, &out)
	return out, err
}

// SendBatch sends several transfers in one call.
func (c *Client) SendBatch(ctx context.Context, token string, req BatchTransferRequest) (BatchTransferResponse, error) {
	var out BatchTransferResponse
	err := c.do(ctx, http.MethodPost, "/api/transfers/send-batch", token, req, &out)
	return out, err
}

// CreateOfframpTransfer moves funds off-platform to a fiat destination.
func (c *Client) CreateOfframpTransfer(ctx context.Context, token string, req OfframpTransferRequest) (Transfer, error) {
	var out Transfer
	err := c.do(ctx, http.MethodPost, "/api/transfers/offramp", token, req, &out)
	return out, err
}
