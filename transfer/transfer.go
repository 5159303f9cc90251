// Package transfer exposes transfer operations gated by a valid access token.
package transfer

import (
	"context"
	"errors"

	"payoutbot/payout"
	"payoutbot/session"

	"github.com/google/uuid"
)

// PageSize is the number of transfers shown per listing page.
const PageSize = 5

// ErrNotAuthenticated means the chat holds no valid token.
var ErrNotAuthenticated = errors.New("transfer: not authenticated")

// ErrIncompleteDraft means the draft is missing required fields.
var ErrIncompleteDraft = errors.New("transfer: incomplete draft")

// TokenSource resolves the current access token of a chat.
type TokenSource interface {
	AccessToken(ctx context.Context, chatID int64) (string, bool)
}

// API is the slice of the payout client the transfer service needs.
type API interface {
	ListTransfers(ctx context.Context, token string, params payout.ListTransfersParams) (payout.TransferList, error)
	GetTransfer(ctx context.Context, token, id string) (payout.Transfer, error)
	SendTransfer(ctx context.Context, token string, req payout.TransferRequest) (payout.Transfer, error)
	WithdrawToWallet(ctx context.Context, token string, req payout.TransferRequest) (payout.Transfer, error)
	SendBatch(ctx context.Context, token string, req payout.BatchTransferRequest) (payout.BatchTransferResponse, error)
	CreateOfframpTransfer(ctx context.Context, token string, req payout.OfframpTransferRequest) (payout.Transfer, error)
}

// Service wraps the transfer endpoints with per-chat token resolution.
type Service struct {
	api    API
	tokens TokenSource
}

// NewService wires the transfer service.
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

// List fetches one page of the chat's transfer history.
func (s *Service) List(ctx context.Context, chatID int64, page int) (payout.TransferList, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.TransferList{}, err
	}
	if page < 1 {
		page = 1
	}
	return s.api.ListTransfers(ctx, token, payout.ListTransfersParams{
		Page:  page,
		Limit: PageSize,
	})
}

// Get fetches a single transfer by id.
func (s *Service) Get(ctx context.Context, chatID int64, id string) (payout.Transfer, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.Transfer{}, err
	}
	return s.api.GetTransfer(ctx, token, id)
}

// RequestFromDraft converts a completed conversation draft into an API request.
func RequestFromDraft(draft *session.TransferDraft) (payout.TransferRequest, error) {
	if !draft.Complete() {
		return payout.TransferRequest{}, ErrIncompleteDraft
	}
	req := payout.TransferRequest{
		Amount:      draft.Amount,
		Currency:    draft.Currency,
		PurposeCode: draft.Purpose,
	}
	switch draft.Method {
	case session.MethodEmail:
		req.Email = draft.Recipient
	case session.MethodWallet:
		req.WalletAddress = draft.Recipient
	default:
		return payout.TransferRequest{}, ErrIncompleteDraft
	}
	return req, nil
}

// SendDraft submits the draft as a send or a wallet withdrawal.
func (s *Service) SendDraft(ctx context.Context, chatID int64, draft *session.TransferDraft) (payout.Transfer, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.Transfer{}, err
	}
	req, err := RequestFromDraft(draft)
	if err != nil {
		return payout.Transfer{}, err
	}
	if draft.Withdraw {
		return s.api.WithdrawToWallet(ctx, token, req)
	}
	return s.api.SendTransfer(ctx, token, req)
}

// SendBatch submits several requests at once, assigning each a request id.
func (s *Service) SendBatch(ctx context.Context, chatID int64, requests []payout.TransferRequest) (payout.BatchTransferResponse, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.BatchTransferResponse{}, err
	}

	batch := payout.BatchTransferRequest{
		Requests: make([]payout.BatchTransferItem, 0, len(requests)),
	}
	for _, req := range requests {
		batch.Requests = append(batch.Requests, payout.BatchTransferItem{
			RequestID: uuid.NewString(),
			Request:   req,
		})
	}
	return s.api.SendBatch(ctx, token, batch)
}

// Offramp creates an offramp transfer.
func (s *Service) Offramp(ctx context.Context, chatID int64, req payout.OfframpTransferRequest) (payout.Transfer, error) {
	token, err := s.token(ctx, chatID)
	if err != nil {
		return payout.Transfer{}, err
	}
	return s.api.CreateOfframpTransfer(ctx, token, req)
}
