package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProfileResponse struct {
	UserID        string          `json:"userId"`
	Email         string          `json:"email,omitempty"`
	Username      string          `json:"username,omitempty"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type MutationResponse struct {
	UserID          string          `json:"userId"`
	Operation       string          `json:"operation"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Reason          string          `json:"reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type WithdrawalResponse struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	NFTItemID          string          `json:"nft_item_id,omitempty"`
	WithdrawalFee      decimal.Decimal `json:"withdrawal_fee"`
	DestinationAddress string          `json:"destination_address,omitempty"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
}

type DepositResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
}

// Mutation presente apenas quando a transição completou o request.
type StatusChangeResponse struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Mutation *MutationResponse `json:"mutation,omitempty"`
}

type HistoryEntryResponse struct {
	Type   string          `json:"type"` // "deposit" | "withdrawal"
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
