package transfer

import (
	"context"
	"errors"
	"testing"

	"payoutbot/payout"
	"payoutbot/session"
)

type fakeTokens struct {
	token string
	ok    bool
}

func (f fakeTokens) AccessToken(ctx context.Context, chatID int64) (string, bool) {
	return f.token, f.ok
}

type fakeAPI struct {
	lastBatch    payout.BatchTransferRequest
	lastRequest  payout.TransferRequest
	sendCalls    int
	withdrawCall int
}

func (f *fakeAPI) ListTransfers(ctx context.Context, token string, params payout.ListTransfersParams) (payout.TransferList, error) {
	return payout.TransferList{Page: params.Page, Limit: params.Limit}, nil
}

func (f *fakeAPI) GetTransfer(ctx context.Context, token, id string) (payout.Transfer, error) {
	return payout.Transfer{ID: id}, nil
}

func (f *fakeAPI) SendTransfer(ctx context.Context, token string, req payout.TransferRequest) (payout.Transfer, error) {
	f.sendCalls++
	f.lastRequest = req
	return payout.Transfer{ID: "t-1", Status: "pending"}, nil
}

func (f *fakeAPI) WithdrawToWallet(ctx context.Context, token string, req payout.TransferRequest) (payout.Transfer, error) {
	f.withdrawCall++
	f.lastRequest = req
	return payout.Transfer{ID: "t-2", Status: "pending"}, nil
}

func (f *fakeAPI) SendBatch(ctx context.Context, token string, req payout.BatchTransferRequest) (payout.BatchTransferResponse, error) {
	f.lastBatch = req
	return payout.BatchTransferResponse{}, nil
}

func (f *fakeAPI) CreateOfframpTransfer(ctx context.Context, token string, req payout.OfframpTransferRequest) (payout.Transfer, error) {
	return payout.Transfer{ID: "t-3"}, nil
}

func TestRequestFromDraft(t *testing.T) {
	tests := []struct {
		name    string
		draft   session.TransferDraft
		want    payout.TransferRequest
		wantErr bool
	}{
		{
			name: "email recipient",
			draft: session.TransferDraft{
				Method:    session.MethodEmail,
				Recipient: "user@example.com",
				Amount:    "10",
				Currency:  "USDC",
				Purpose:   "PAYMENT",
			},
			want: payout.TransferRequest{
				Email:       "user@example.com",
				Amount:      "10",
				Currency:    "USDC",
				PurposeCode: "PAYMENT",
			},
		},
		{
			name: "wallet recipient",
			draft: session.TransferDraft{
				Method:    session.MethodWallet,
				Recipient: "0x1234567890abcdef1234567890abcdef12345678",
				Amount:    "0.5",
				Currency:  "ETH",
				Purpose:   "SELF",
			},
			want: payout.TransferRequest{
				WalletAddress: "0x1234567890abcdef1234567890abcdef12345678",
				Amount:        "0.5",
				Currency:      "ETH",
				PurposeCode:   "SELF",
			},
		},
		{
			name: "missing currency",
			draft: session.TransferDraft{
				Method:    session.MethodEmail,
				Recipient: "user@example.com",
				Amount:    "10",
				Purpose:   "PAYMENT",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequestFromDraft(&tt.draft)
			if tt.wantErr {
				if !errors.Is(err, ErrIncompleteDraft) {
					t.Fatalf("err = %v, want ErrIncompleteDraft", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RequestFromDraft: %v", err)
			}
			if got != tt.want {
				t.Fatalf("request = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSendDraftRoutesByKind(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, fakeTokens{token: "tok", ok: true})
	ctx := context.Background()

	draft := &session.TransferDraft{
		Method:    session.MethodWallet,
		Recipient: "0x1234567890abcdef1234567890abcdef12345678",
		Amount:    "1",
		Currency:  "USDT",
		Purpose:   "SELF",
	}

	if _, err := svc.SendDraft(ctx, 1, draft); err != nil {
		t.Fatalf("SendDraft: %v", err)
	}
	if api.sendCalls != 1 || api.withdrawCall != 0 {
		t.Fatalf("send=%d withdraw=%d, want 1/0", api.sendCalls, api.withdrawCall)
	}

	draft.Withdraw = true
	if _, err := svc.SendDraft(ctx, 1, draft); err != nil {
		t.Fatalf("SendDraft withdraw: %v", err)
	}
	if api.withdrawCall != 1 {
		t.Fatalf("withdraw calls = %d, want 1", api.withdrawCall)
	}
}

func TestSendDraftRequiresToken(t *testing.T) {
	svc := NewService(&fakeAPI{}, fakeTokens{ok: false})

	_, err := svc.SendDraft(context.Background(), 1, &session.TransferDraft{
		Method:    session.MethodEmail,
		Recipient: "user@example.com",
		Amount:    "1",
		Currency:  "USDC",
		Purpose:   "GIFT",
	})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestSendBatchAssignsRequestIDs(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, fakeTokens{token: "tok", ok: true})

	requests := []payout.TransferRequest{
		{Email: "a@example.com", Amount: "1", Currency: "USDC", PurposeCode: "PAYMENT"},
		{Email: "b@example.com", Amount: "2", Currency: "USDC", PurposeCode: "PAYMENT"},
	}
	if _, err := svc.SendBatch(context.Background(), 1, requests); err != nil {
		t.Fatalf("SendBatch: %v", err)
	}

	if len(api.lastBatch.Requests) != 2 {
		t.Fatalf("batch size = %d, want 2", len(api.lastBatch.Requests))
	}
	seen := map[string]bool{}
	for _, item := range api.lastBatch.Requests {
		if item.RequestID == "" {
			t.Fatal("empty requestId in batch item")
		}
		if seen[item.RequestID] {
			t.Fatalf("duplicate requestId %q", item.RequestID)
		}
		seen[item.RequestID] = true
	}
}

func TestListClampsPage(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, fakeTokens{token: "tok", ok: true})

	list, err := svc.List(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Page != 1 {
		t.Fatalf("page = %d, want 1", list.Page)
	}
	if list.Limit != PageSize {
		t.Fatalf("limit = %d, want %d", list.Limit, PageSize)
	}
}
