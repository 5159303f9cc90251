package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"payoutbot/auth"
	"payoutbot/payout"
	"payoutbot/session"
	"payoutbot/transfer"
	"payoutbot/wallet"
)

type sentMessage struct {
	chatID int64
	text   string
	kb     Keyboard
}

type recordingMessenger struct {
	sent []sentMessage
}

func (m *recordingMessenger) Send(ctx context.Context, chatID int64, text string, kb Keyboard) error {
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text, kb: kb})
	return nil
}

func (m *recordingMessenger) last(t *testing.T) sentMessage {
	t.Helper()
	if len(m.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return m.sent[len(m.sent)-1]
}

// fakePlatform implements the auth, wallet and transfer API slices.
type fakePlatform struct {
	otpErr  error
	authErr error

	kycStatus string
	kycErr    error

	wallets   []payout.Wallet
	balances  []payout.WalletBalances
	transfers payout.TransferList
	listErr   error

	sent      []payout.TransferRequest
	withdrawn []payout.TransferRequest
	sendErr   error

	profile    payout.UserProfile
	profileErr error
}

func (f *fakePlatform) RequestEmailOTP(ctx context.Context, email string) (payout.OTPRequestResult, error) {
	if f.otpErr != nil {
		return payout.OTPRequestResult{}, f.otpErr
	}
	return payout.OTPRequestResult{Email: email, SID: "sid-1"}, nil
}

func (f *fakePlatform) AuthenticateEmailOTP(ctx context.Context, email, otp, sid string) (payout.AuthResult, error) {
	if f.authErr != nil {
		return payout.AuthResult{}, f.authErr
	}
	return payout.AuthResult{
		AccessToken:   "tok-1",
		AccessTokenID: "tok-id-1",
		ExpireAt:      time.Now().Add(time.Hour).Format(time.RFC3339),
		User: payout.UserProfile{
			ID:             "user-1",
			Email:          email,
			OrganizationID: "org-1",
		},
	}, nil
}

func (f *fakePlatform) Me(ctx context.Context, token string) (payout.UserProfile, error) {
	if f.profileErr != nil {
		return payout.UserProfile{}, f.profileErr
	}
	if f.profile.ID != "" {
		return f.profile, nil
	}
	return payout.UserProfile{ID: "user-1", Email: "user@example.com", OrganizationID: "org-1"}, nil
}

func (f *fakePlatform) KYCStatus(ctx context.Context, token string) (payout.KYCList, error) {
	if f.kycErr != nil {
		return payout.KYCList{}, f.kycErr
	}
	if f.kycStatus == "" {
		return payout.KYCList{}, nil
	}
	return payout.KYCList{
		Count: 1,
		Data: []payout.KYCRecord{
			{ID: "kyc-1", Status: f.kycStatus, CreatedAt: "2026-01-01T00:00:00Z"},
		},
	}, nil
}

func (f *fakePlatform) Wallets(ctx context.Context, token string) ([]payout.Wallet, error) {
	return f.wallets, nil
}

func (f *fakePlatform) GenerateWallet(ctx context.Context, token, network string) (payout.Wallet, error) {
	w := payout.Wallet{ID: "w-new", Network: network, WalletAddress: "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd"}
	f.wallets = append(f.wallets, w)
	return w, nil
}

func (f *fakePlatform) DefaultWallet(ctx context.Context, token string) (payout.Wallet, error) {
	for _, w := range f.wallets {
		if w.IsDefault {
			return w, nil
		}
	}
	return payout.Wallet{}, nil
}

func (f *fakePlatform) SetDefaultWallet(ctx context.Context, token, walletID string) (payout.Wallet, error) {
	for i := range f.wallets {
		f.wallets[i].IsDefault = f.wallets[i].ID == walletID
		if f.wallets[i].IsDefault {
			return f.wallets[i], nil
		}
	}
	return payout.Wallet{}, nil
}

func (f *fakePlatform) Balance(ctx context.Context, token string) (payout.Balance, error) {
	return payout.Balance{Balance: "100", Symbol: "USDC"}, nil
}

func (f *fakePlatform) Balances(ctx context.Context, token string) ([]payout.WalletBalances, error) {
	return f.balances, nil
}

func (f *fakePlatform) ListTransfers(ctx context.Context, token string, params payout.ListTransfersParams) (payout.TransferList, error) {
	if f.listErr != nil {
		return payout.TransferList{}, f.listErr
	}
	list := f.transfers
	list.Page = params.Page
	return list, nil
}

func (f *fakePlatform) GetTransfer(ctx context.Context, token, id string) (payout.Transfer, error) {
	for _, t := range f.transfers.Data {
		if t.ID == id {
			return t, nil
		}
	}
	return payout.Transfer{}, &payout.APIError{Status: 404, Message: "not found", Op: "transfers.get"}
}

func (f *fakePlatform) SendTransfer(ctx context.Context, token string, req payout.TransferRequest) (payout.Transfer, error) {
	if f.sendErr != nil {
		return payout.Transfer{}, f.sendErr
	}
	f.sent = append(f.sent, req)
	return payout.Transfer{ID: "t-new", Status: "pending", Amount: req.Amount, Currency: req.Currency}, nil
}

func (f *fakePlatform) WithdrawToWallet(ctx context.Context, token string, req payout.TransferRequest) (payout.Transfer, error) {
	if f.sendErr != nil {
		return payout.Transfer{}, f.sendErr
	}
	f.withdrawn = append(f.withdrawn, req)
	return payout.Transfer{ID: "t-wd", Status: "pending", Amount: req.Amount, Currency: req.Currency}, nil
}

func (f *fakePlatform) SendBatch(ctx context.Context, token string, req payout.BatchTransferRequest) (payout.BatchTransferResponse, error) {
	return payout.BatchTransferResponse{}, nil
}

func (f *fakePlatform) CreateOfframpTransfer(ctx context.Context, token string, req payout.OfframpTransferRequest) (payout.Transfer, error) {
	return payout.Transfer{ID: "t-off"}, nil
}

func newTestBot(api *fakePlatform) (*Bot, *recordingMessenger, session.Store) {
	store := session.NewMemoryStore()
	authSvc := auth.NewService(store, api)
	walletSvc := wallet.NewService(api, authSvc)
	transferSvc := transfer.NewService(api, authSvc)
	m := &recordingMessenger{}
	b := New(store, authSvc, walletSvc, transferSvc, nil, m, Options{
		KYCGuideURL:  "https://example.com/kyc-guide",
		KYCPortalURL: "https://example.com/kyc",
	})
	return b, m, store
}

func login(t *testing.T, b *Bot, chatID int64) {
	t.Helper()
	ctx := context.Background()
	if err := b.HandleCommand(ctx, chatID, "/login"); err != nil {
		t.Fatalf("login command: %v", err)
	}
	if err := b.HandleText(ctx, chatID, "user@example.com"); err != nil {
		t.Fatalf("email step: %v", err)
	}
	if err := b.HandleText(ctx, chatID, "123456"); err != nil {
		t.Fatalf("otp step: %v", err)
	}
}

func TestLoginFlow(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	b, m, store := newTestBot(api)
	ctx := context.Background()

	if err := b.HandleCommand(ctx, 7, "/login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := store.Get(ctx, 7).State; got != session.StateAwaitingLoginEmail {
		t.Fatalf("state after /login = %s", got)
	}

	if err := b.HandleText(ctx, 7, "not-an-email"); err != nil {
		t.Fatalf("invalid email: %v", err)
	}
	if !strings.Contains(m.last(t).text, "valid email") {
		t.Fatalf("expected email rejection, got %q", m.last(t).text)
	}

	if err := b.HandleText(ctx, 7, "user@example.com"); err != nil {
		t.Fatalf("email: %v", err)
	}
	if got := store.Get(ctx, 7).State; got != session.StateAwaitingOTP {
		t.Fatalf("state after email = %s", got)
	}

	if err := b.HandleText(ctx, 7, "abc"); err != nil {
		t.Fatalf("bad otp: %v", err)
	}
	if !strings.Contains(m.last(t).text, "Invalid OTP") {
		t.Fatalf("expected OTP rejection, got %q", m.last(t).text)
	}

	if err := b.HandleText(ctx, 7, "123456"); err != nil {
		t.Fatalf("otp: %v", err)
	}
	sess := store.Get(ctx, 7)
	if sess.State != session.StateAuthenticated {
		t.Fatalf("state after otp = %s", sess.State)
	}
	if !sess.KYCVerified {
		t.Fatal("KYC flag not refreshed after login")
	}
	if !strings.Contains(m.last(t).text, "Login successful") {
		t.Fatalf("expected greeting, got %q", m.last(t).text)
	}
}

func TestLoginGreetsByProfileName(t *testing.T) {
	api := &fakePlatform{
		kycStatus: "approved",
		profile:   payout.UserProfile{ID: "user-1", FirstName: "Ada", LastName: "Lovelace"},
	}
	b, m, _ := newTestBot(api)
	ctx := context.Background()

	if err := b.HandleCommand(ctx, 8, "/login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := b.HandleText(ctx, 8, "ada@example.com"); err != nil {
		t.Fatalf("email: %v", err)
	}
	if err := b.HandleText(ctx, 8, "123456"); err != nil {
		t.Fatalf("otp: %v", err)
	}
	if !strings.Contains(m.last(t).text, "Welcome, Ada Lovelace") {
		t.Fatalf("greeting = %q, want profile name", m.last(t).text)
	}
}

func TestOTPRequestFailureResetsFlow(t *testing.T) {
	api := &fakePlatform{otpErr: &payout.APIError{Status: 500, Message: "boom", Op: "auth.otp"}}
	b, m, store := newTestBot(api)
	ctx := context.Background()

	if err := b.HandleCommand(ctx, 7, "/login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := b.HandleText(ctx, 7, "user@example.com"); err != nil {
		t.Fatalf("email: %v", err)
	}
	if !strings.Contains(m.last(t).text, "couldn't send an OTP") {
		t.Fatalf("expected OTP failure notice, got %q", m.last(t).text)
	}
	if got := store.Get(ctx, 7).State; got != session.StateIdle {
		t.Fatalf("state after OTP failure = %s", got)
	}
}

func TestCommandGating(t *testing.T) {
	api := &fakePlatform{kycStatus: "pending"}
	b, m, _ := newTestBot(api)
	ctx := context.Background()

	if err := b.HandleCommand(ctx, 9, "/wallet"); err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if !strings.Contains(m.last(t).text, "logged in") {
		t.Fatalf("expected auth gate, got %q", m.last(t).text)
	}

	login(t, b, 9)

	if err := b.HandleCommand(ctx, 9, "/wallet"); err != nil {
		t.Fatalf("wallet: %v", err)
	}
	last := m.last(t)
	if !strings.Contains(last.text, "KYC verification") {
		t.Fatalf("expected KYC gate, got %q", last.text)
	}
	if len(last.kb) == 0 {
		t.Fatal("KYC gate reply carries no remediation buttons")
	}
}

func TestSendFlow(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	b, m, store := newTestBot(api)
	ctx := context.Background()
	login(t, b, 11)

	if err := b.HandleCallback(ctx, 11, "send_by_email", nil); err != nil {
		t.Fatalf("send_by_email: %v", err)
	}
	if got := store.Get(ctx, 11).State; got != session.StateAwaitingRecipient {
		t.Fatalf("state = %s", got)
	}

	if err := b.HandleText(ctx, 11, "payee@example.com"); err != nil {
		t.Fatalf("recipient: %v", err)
	}
	if err := b.HandleText(ctx, 11, "12.5"); err != nil {
		t.Fatalf("amount: %v", err)
	}
	if got := store.Get(ctx, 11).State; got != session.StateAwaitingCurrency {
		t.Fatalf("state = %s", got)
	}

	if err := b.HandleCallback(ctx, 11, "transfer_currency", []string{"USDC"}); err != nil {
		t.Fatalf("currency: %v", err)
	}
	if err := b.HandleCallback(ctx, 11, "transfer_purpose", []string{"PAYMENT"}); err != nil {
		t.Fatalf("purpose: %v", err)
	}
	if !strings.Contains(m.last(t).text, "Confirm Transfer") {
		t.Fatalf("expected confirmation, got %q", m.last(t).text)
	}

	if err := b.HandleCallback(ctx, 11, "send_confirm", nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("sent %d transfers, want 1", len(api.sent))
	}
	req := api.sent[0]
	if req.Email != "payee@example.com" || req.Amount != "12.5" || req.Currency != "USDC" || req.PurposeCode != "PAYMENT" {
		t.Fatalf("unexpected request: %+v", req)
	}
	sess := store.Get(ctx, 11)
	if sess.State != session.StateAuthenticated || sess.Transfer != nil {
		t.Fatalf("flow not reset: state=%s draft=%v", sess.State, sess.Transfer)
	}
}

func TestWithdrawFlowUsesWalletEndpoint(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	b, _, _ := newTestBot(api)
	ctx := context.Background()
	login(t, b, 12)

	if err := b.HandleCallback(ctx, 12, "transfer_withdraw", nil); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if err := b.HandleText(ctx, 12, "0x1234567890abcdef1234567890abcdef12345678"); err != nil {
		t.Fatalf("address: %v", err)
	}
	if err := b.HandleText(ctx, 12, "50"); err != nil {
		t.Fatalf("amount: %v", err)
	}
	if err := b.HandleCallback(ctx, 12, "transfer_currency", []string{"USDT"}); err != nil {
		t.Fatalf("currency: %v", err)
	}
	if err := b.HandleCallback(ctx, 12, "transfer_purpose", []string{"SELF"}); err != nil {
		t.Fatalf("purpose: %v", err)
	}
	if err := b.HandleCallback(ctx, 12, "send_confirm", nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if len(api.withdrawn) != 1 || len(api.sent) != 0 {
		t.Fatalf("withdrawn=%d sent=%d, want 1/0", len(api.withdrawn), len(api.sent))
	}
	if api.withdrawn[0].WalletAddress == "" {
		t.Fatal("withdrawal request missing wallet address")
	}
}

func TestSendFailureKeepsConfirmationState(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	b, m, store := newTestBot(api)
	ctx := context.Background()
	login(t, b, 21)

	if err := b.HandleCallback(ctx, 21, "send_by_email", nil); err != nil {
		t.Fatalf("send_by_email: %v", err)
	}
	if err := b.HandleText(ctx, 21, "payee@example.com"); err != nil {
		t.Fatalf("recipient: %v", err)
	}
	if err := b.HandleText(ctx, 21, "5"); err != nil {
		t.Fatalf("amount: %v", err)
	}
	if err := b.HandleCallback(ctx, 21, "transfer_currency", []string{"USDC"}); err != nil {
		t.Fatalf("currency: %v", err)
	}
	if err := b.HandleCallback(ctx, 21, "transfer_purpose", []string{"PAYMENT"}); err != nil {
		t.Fatalf("purpose: %v", err)
	}

	api.sendErr = &payout.APIError{Status: 422, Message: "insufficient balance", Op: "transfers.send"}
	if err := b.HandleCallback(ctx, 21, "send_confirm", nil); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(m.last(t).text, "Transfer Failed") {
		t.Fatalf("expected failure notice, got %q", m.last(t).text)
	}
	sess := store.Get(ctx, 21)
	if sess.State != session.StateAwaitingConfirmation || sess.Transfer == nil {
		t.Fatalf("failure reset the flow: state=%s draft=%v", sess.State, sess.Transfer)
	}

	api.sendErr = nil
	if err := b.HandleCallback(ctx, 21, "send_confirm", nil); err != nil {
		t.Fatalf("retry confirm: %v", err)
	}
	if len(api.sent) != 1 {
		t.Fatalf("retry sent %d transfers, want 1", len(api.sent))
	}
}

func TestCancelResetsFlow(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	b, m, store := newTestBot(api)
	ctx := context.Background()
	login(t, b, 13)

	if err := b.HandleCallback(ctx, 13, "send_by_wallet", nil); err != nil {
		t.Fatalf("send_by_wallet: %v", err)
	}
	if err := b.HandleCallback(ctx, 13, "cancel_transfer", nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	sess := store.Get(ctx, 13)
	if sess.State != session.StateAuthenticated || sess.Transfer != nil {
		t.Fatalf("cancel did not reset: state=%s draft=%v", sess.State, sess.Transfer)
	}
	if !strings.Contains(m.last(t).text, "cancelled") {
		t.Fatalf("expected cancel notice, got %q", m.last(t).text)
	}
}

func TestTransferPageTokenIgnored(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	b, m, _ := newTestBot(api)
	ctx := context.Background()
	login(t, b, 14)

	before := len(m.sent)
	if err := b.HandleCallback(ctx, 14, "transfer_next_page", []string{"oops"}); err != nil {
		t.Fatalf("page callback: %v", err)
	}
	if len(m.sent) != before {
		t.Fatalf("non-numeric page token produced a reply: %q", m.last(t).text)
	}
}

func TestTransferPagination(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	api.transfers = payout.TransferList{
		Count:   12,
		HasMore: true,
		Data: []payout.Transfer{
			{ID: "t1", Amount: "10", Currency: "USDC", Status: "success", CreatedAt: "2026-02-01T10:00:00Z"},
			{ID: "t2", Amount: "20", Currency: "USDT", Status: "pending", CreatedAt: "2026-02-02T10:00:00Z"},
		},
	}
	b, m, _ := newTestBot(api)
	ctx := context.Background()
	login(t, b, 15)

	if err := b.HandleCallback(ctx, 15, "transfer_list", nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	last := m.last(t)
	if !strings.Contains(last.text, "Page 1/3") {
		t.Fatalf("expected page header, got %q", last.text)
	}
	var hasNext, hasPrev bool
	for _, row := range last.kb {
		for _, btn := range row {
			if btn.Callback == "transfer_next_page:2" {
				hasNext = true
			}
			if strings.HasPrefix(btn.Callback, "transfer_prev_page:") {
				hasPrev = true
			}
		}
	}
	if !hasNext || hasPrev {
		t.Fatalf("page 1 nav wrong: next=%v prev=%v", hasNext, hasPrev)
	}
}

func TestUnknownCommand(t *testing.T) {
	api := &fakePlatform{}
	b, m, _ := newTestBot(api)
	ctx := context.Background()

	if err := b.HandleCommand(ctx, 16, "/bogus"); err != nil {
		t.Fatalf("bogus: %v", err)
	}
	last := m.last(t)
	if !strings.Contains(last.text, "Unknown command") || !strings.Contains(last.text, "/help") {
		t.Fatalf("unexpected reply: %q", last.text)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	b, m, store := newTestBot(api)
	ctx := context.Background()

	if err := b.HandleCommand(ctx, 17, "/logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !strings.Contains(m.last(t).text, "not currently logged in") {
		t.Fatalf("expected not-logged-in notice, got %q", m.last(t).text)
	}

	login(t, b, 17)
	if err := b.HandleCommand(ctx, 17, "/logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	sess := store.Get(ctx, 17)
	if sess.State != session.StateIdle || sess.AuthData != nil {
		t.Fatalf("logout left state=%s auth=%v", sess.State, sess.AuthData)
	}
}

func TestVerifyRefreshesKYCFlag(t *testing.T) {
	api := &fakePlatform{kycStatus: "pending"}
	b, m, store := newTestBot(api)
	ctx := context.Background()
	login(t, b, 18)

	if store.Get(ctx, 18).KYCVerified {
		t.Fatal("pending KYC marked verified at login")
	}

	api.kycStatus = "approved"
	if err := b.HandleCommand(ctx, 18, "/verify"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !store.Get(ctx, 18).KYCVerified {
		t.Fatal("verification flag not refreshed")
	}
	if !strings.Contains(m.last(t).text, "complete") {
		t.Fatalf("unexpected reply: %q", m.last(t).text)
	}
}

func TestWalletMenuListsWallets(t *testing.T) {
	api := &fakePlatform{kycStatus: "approved"}
	api.wallets = []payout.Wallet{
		{ID: "w1", Network: "polygon", WalletAddress: "0x1234567890abcdef1234567890abcdef12345678", IsDefault: true},
		{ID: "w2", Network: "ethereum", WalletAddress: "0xfeedfacefeedfacefeedfacefeedfacefeedface"},
	}
	b, m, _ := newTestBot(api)
	ctx := context.Background()
	login(t, b, 19)

	if err := b.HandleCommand(ctx, 19, "/wallet"); err != nil {
		t.Fatalf("wallet: %v", err)
	}
	last := m.last(t)
	var details int
	for _, row := range last.kb {
		for _, btn := range row {
			if strings.HasPrefix(btn.Callback, "wallet_details:") {
				details++
			}
		}
	}
	if details != 2 {
		t.Fatalf("wallet menu has %d detail buttons, want 2", details)
	}
}

func TestFreeTextOutsideFlow(t *testing.T) {
	api := &fakePlatform{}
	b, m, _ := newTestBot(api)
	ctx := context.Background()

	if b.InProgress(ctx, 20) {
		t.Fatal("fresh chat reported in-progress")
	}
	if err := b.HandleText(ctx, 20, "hello there"); err != nil {
		t.Fatalf("text: %v", err)
	}
	if !strings.Contains(m.last(t).text, "/help") {
		t.Fatalf("expected guidance, got %q", m.last(t).text)
	}
}

func TestSlashTextRoutesAsCommand(t *testing.T) {
	api := &fakePlatform{}
	b, m, _ := newTestBot(api)
	ctx := context.Background()

	// Unregistered commands reach the bot as plain text. They must get
	// the unknown-command reply, not the free-text guidance.
	if err := b.HandleText(ctx, 21, "/bogus extra args"); err != nil {
		t.Fatalf("text: %v", err)
	}
	last := m.last(t)
	if !strings.Contains(last.text, "Unknown command") {
		t.Fatalf("unexpected reply: %q", last.text)
	}

	if err := b.HandleText(ctx, 21, "/help"); err != nil {
		t.Fatalf("text: %v", err)
	}
	if !strings.Contains(m.last(t).text, "/login") {
		t.Fatalf("help not routed: %q", m.last(t).text)
	}
}
