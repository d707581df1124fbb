package dto

// TradeExecuteRequest is the request body for trade execution. Amounts travel
// as decimal strings to avoid float rounding on the wire.
type TradeExecuteRequest struct {
	Kind                string  `json:"kind" binding:"required,oneof=BUY SELL"`
	AmountFiat          string  `json:"amount_fiat" binding:"required,positive_decimal"`
	Rate                *string `json:"rate,omitempty" binding:"omitempty,positive_decimal"`
	CounterpartyAccount string  `json:"counterparty_account" binding:"required,max=100"`
	ExchangeWallet      string  `json:"exchange_wallet" binding:"omitempty,max=100"`
}

// DepositSubmitRequest is the request body for a deposit claim.
type DepositSubmitRequest struct {
	TxHash       string `json:"tx_hash" binding:"required,tx_hash"`
	FromAddress  string `json:"from_address" binding:"required,max=100"`
	ToAddress    string `json:"to_address" binding:"required,max=100"`
	AmountStable string `json:"amount_stable" binding:"required,positive_decimal"`
}

// KYCSubmitRequest is the request body for an identity submission. Field
// formats are checked by the KYC service so every violation is reported in
// one pass; binding only enforces presence.
type KYCSubmitRequest struct {
	FullName    string `json:"full_name" binding:"required,max=100"`
	DateOfBirth string `json:"date_of_birth" binding:"required"`
	NationalID  string `json:"national_id" binding:"required,max=20"`
	TaxID       string `json:"tax_id" binding:"required,max=20"`
	Address     string `json:"address" binding:"required,max=200"`
}

// KYCReviewRequest carries the reviewer's decision.
type KYCReviewRequest struct {
	OwnerID         string  `json:"owner_id" binding:"required,uuid"`
	Approve         bool    `json:"approve"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// TransactionResponse is the response body for trade results.
type TransactionResponse struct {
	ID                  string  `json:"id"`
	Kind                string  `json:"kind"`
	Status              string  `json:"status"`
	AmountFiat          string  `json:"amount_fiat"`
	AmountStable        string  `json:"amount_stable"`
	Rate                string  `json:"rate"`
	PlatformFee         string  `json:"platform_fee"`
	NetworkFee          string  `json:"network_fee"`
	TotalFee            string  `json:"total_fee"`
	NetAmount           string  `json:"net_amount"`
	CounterpartyAccount string  `json:"counterparty_account"`
	FailureCode         *string `json:"failure_code,omitempty"`
	CreatedAt           string  `json:"created_at"`
	SettledAt           *string `json:"settled_at,omitempty"`
}

// DepositClaimResponse is the response body for deposit claims.
type DepositClaimResponse struct {
	ID            string  `json:"id"`
	TxHash        string  `json:"tx_hash"`
	FromAddress   string  `json:"from_address"`
	ToAddress     string  `json:"to_address"`
	AmountStable  string  `json:"amount_stable"`
	Confirmations int64   `json:"confirmations"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
	CreditedAt    *string `json:"credited_at,omitempty"`
}

// KYCRecordResponse is the response body for identity records.
type KYCRecordResponse struct {
	OwnerID         string  `json:"owner_id"`
	FullName        string  `json:"full_name"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	SubmittedAt     string  `json:"submitted_at"`
	ReviewedAt      *string `json:"reviewed_at,omitempty"`
}

// RateResponse is the response for the current conversion rate.
type RateResponse struct {
	Rate string `json:"rate"`
	AsOf string `json:"as_of"`
}

// WalletBalanceResponse is the response for balance query.
type WalletBalanceResponse struct {
	Balance string `json:"balance"`
}

// TradeStatsResponse is the response for trade statistics.
type TradeStatsResponse struct {
	TotalTrades      int64  `json:"total_trades"`
	Settled          int64  `json:"settled"`
	Rejected         int64  `json:"rejected"`
	BuyVolumeStable  string `json:"buy_volume_stable"`
	SellVolumeStable string `json:"sell_volume_stable"`
	FiatSpent        string `json:"fiat_spent"`
	FiatReceived     string `json:"fiat_received"`
}

// TransactionListResponse wraps a paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// ReconciliationResponse reports a wallet consistency check.
type ReconciliationResponse struct {
	OwnerID          string `json:"owner_id"`
	StoredBalance    string `json:"stored_balance"`
	DerivedBalance   string `json:"derived_balance"`
	CreditedDeposits string `json:"credited_deposits"`
	BuyVolume        string `json:"buy_volume"`
	SellVolume       string `json:"sell_volume"`
	Drift            string `json:"drift"`
	Consistent       bool   `json:"consistent"`
}
