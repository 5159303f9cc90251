package payout

// UserProfile describes the account owner returned by the auth endpoints.
type UserProfile struct {
	ID             string   `json:"id"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	Email          string   `json:"email"`
	ProfileImage   string   `json:"profileImage"`
	OrganizationID string   `json:"organizationId"`
	Role           string   `json:"role"`
	Status         string   `json:"status"`
	Type           string   `json:"type"`
	RelayerAddress string   `json:"relayerAddress"`
	Flags          []string `json:"flags"`
	WalletAddress  string   `json:"walletAddress"`
	WalletID       string   `json:"walletId"`
}

// OTPRequestResult carries the session id needed to complete an email OTP login.
type OTPRequestResult struct {
	Email string `json:"email"`
	SID   string `json:"sid"`
}

// AuthResult is the response of a successful OTP authentication.
type AuthResult struct {
	Scheme        string      `json:"scheme"`
	AccessToken   string      `json:"accessToken"`
	AccessTokenID string      `json:"accessTokenId"`
	ExpireAt      string      `json:"expireAt"`
	User          UserProfile `json:"user"`
}

// KYCRecord is a single KYC submission for a user.
type KYCRecord struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Status    string `json:"status"`
	Type      string `json:"type"`
}

// KYCList is the paginated KYC listing.
type KYCList struct {
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Count   int         `json:"count"`
	HasMore bool        `json:"hasMore"`
	Data    []KYCRecord `json:"data"`
}

// Wallet is an organization wallet.
type Wallet struct {
	ID             string `json:"id"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
	OrganizationID string `json:"organizationId"`
	WalletType     string `json:"walletType"`
	Network        string `json:"network"`
	WalletAddress  string `json:"walletAddress"`
	IsDefault      bool   `json:"isDefault"`
}

// Balance is a single token balance inside a wallet.
type Balance struct {
	Decimals int    `json:"decimals"`
	Balance  string `json:"balance"`
	Symbol   string `json:"symbol"`
	Address  string `json:"address"`
}

// WalletBalances groups token balances per wallet.
type WalletBalances struct {
	WalletID  string    `json:"walletId"`
	IsDefault bool      `json:"isDefault"`
	Network   string    `json:"network"`
	Balances  []Balance `json:"balances"`
}

// TransferCustomer identifies the counterparty on a transfer.
type TransferCustomer struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
	Country      string `json:"country"`
}

// TransferAccount describes a source or destination account on a transfer.
type TransferAccount struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	Country          string `json:"country"`
	Network          string `json:"network"`
	WalletAddress    string `json:"walletAddress"`
	PayeeEmail       string `json:"payeeEmail"`
	PayeeDisplayName string `json:"payeeDisplayName"`
}

// Transfer is a funds movement record.
type Transfer struct {
	ID                 string           `json:"id"`
	CreatedAt          string           `json:"createdAt"`
	UpdatedAt          string           `json:"updatedAt"`
	OrganizationID     string           `json:"organizationId"`
	Status             string           `json:"status"`
	Customer           TransferCustomer `json:"customer"`
	Type               string           `json:"type"`
	SourceCountry      string           `json:"sourceCountry"`
	DestinationCountry string           `json:"destinationCountry"`
	Amount             string           `json:"amount"`
	Currency           string           `json:"currency"`
	AmountSubtotal     string           `json:"amountSubtotal"`
	TotalFee           string           `json:"totalFee"`
	FeeCurrency        string           `json:"feeCurrency"`
	Note               string           `json:"note"`
	PurposeCode        string           `json:"purposeCode"`
	Mode               string           `json:"mode"`
	PaymentURL         string           `json:"paymentUrl"`
	SenderDisplayName  string           `json:"senderDisplayName"`
	SourceAccount      TransferAccount  `json:"sourceAccount"`
	DestinationAccount TransferAccount  `json:"destinationAccount"`
}

// TransferList is the paginated transfer listing.
type TransferList struct {
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	Count   int        `json:"count"`
	HasMore bool       `json:"hasMore"`
	Data    []Transfer `json:"data"`
}

// TransferRequest creates a single outbound transfer. Exactly one of
// WalletAddress, Email or PayeeID selects the recipient.
type TransferRequest struct {
	WalletAddress string `json:"walletAddress,omitempty"`
	Email         string `json:"email,omitempty"`
	PayeeID       string `json:"payeeId,omitempty"`
	Amount        string `json:"amount"`
	PurposeCode   string `json:"purposeCode"`
	Currency      string `json:"currency"`
}

// BatchTransferItem pairs a client-generated request id with its transfer.
type BatchTransferItem struct {
	RequestID string          `json:"requestId"`
	Request   TransferRequest `json:"request"`
}

// BatchTransferRequest sends several transfers in one call.
type BatchTransferRequest struct {
	Requests []BatchTransferItem `json:"requests"`
}

// BatchTransferResponse carries per-item results of a batch send.
type BatchTransferResponse struct {
	Responses []Transfer `json:"responses"`
}

// OfframpCustomer identifies the fiat recipient of an offramp transfer.
type OfframpCustomer struct {
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
	Country      string `json:"country"`
}

// OfframpTransferRequest moves funds off-platform to a fiat destination.
type OfframpTransferRequest struct {
	InvoiceNumber         string          `json:"invoiceNumber"`
	InvoiceURL            string          `json:"invoiceUrl"`
	PurposeCode           string          `json:"purposeCode"`
	SourceOfFunds         string          `json:"sourceOfFunds"`
	RecipientRelationship string          `json:"recipientRelationship"`
	QuotePayload          string          `json:"quotePayload"`
	QuoteSignature        string          `json:"quoteSignature"`
	PreferredWalletID     string          `json:"preferredWalletId"`
	CustomerData          OfframpCustomer `json:"customerData"`
	Note                  string          `json:"note"`
}

// NotificationsAuthRequest authorizes a realtime channel subscription.
type NotificationsAuthRequest struct {
	SocketID    string `json:"socket_id"`
	ChannelName string `json:"channel_name"`
}

// NotificationsAuthResult is the signed channel authorization payload.
type NotificationsAuthResult struct {
	Auth        string `json:"auth"`
	ChannelData string `json:"channel_data,omitempty"`
}
