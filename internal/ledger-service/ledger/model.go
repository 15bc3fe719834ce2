package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation indica a direção de uma mutação de saldo.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
)

// RequestKind distingue saques de depósitos.
type RequestKind string

const (
	KindWithdrawal RequestKind = "withdrawal"
	KindDeposit    RequestKind = "deposit"
)

const (
	StatusPending    = "pending"
	StatusVerified   = "verified"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)

var withdrawalStatuses = map[string]bool{
	StatusPending:    true,
	StatusVerified:   true,
	StatusProcessing: true,
	StatusCompleted:  true,
	StatusFailed:     true,
}

var depositStatuses = map[string]bool{
	StatusPending:   true,
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCompleted: true,
}

// ValidStatus informa se o status é aceito para o tipo de request.
func ValidStatus(kind RequestKind, status string) bool {
	switch kind {
	case KindWithdrawal:
		return withdrawalStatuses[status]
	case KindDeposit:
		return depositStatuses[status]
	}
	return false
}

// Profile é o perfil de usuário do marketplace.
// WalletBalance só é alterado pelo ledger; nunca fica negativo.
type Profile struct {
	ID            string
	Email         string
	Username      string
	WalletBalance decimal.Decimal
	UpdatedAt     time.Time
}

// Withdrawal é um pedido de saque. NFTItemID vazio indica saque sem item
// vinculado (só a taxa).
type Withdrawal struct {
	ID                 string
	UserID             string
	NFTItemID          string
	WithdrawalFee      decimal.Decimal
	DestinationAddress string
	Status             string
	CreatedAt          time.Time
	CompletedAt        *time.Time
}

// Deposit é um pedido de depósito.
type Deposit struct {
	ID          string
	UserID      string
	Amount      decimal.Decimal
	Status      string
	CreatedAt   time.Time
	ProcessedAt *time.Time
	ApprovedAt  *time.Time
}

// Mutation é o registro de auditoria de uma mutação de saldo.
type Mutation struct {
	ID              string
	UserID          string
	Operation       Operation
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	Reason          string
	CreatedAt       time.Time
}

// HistoryEntry é uma linha do histórico de saldo de um usuário.
type HistoryEntry struct {
	Type   string // "deposit" | "withdrawal"
	Amount decimal.Decimal
	Date   time.Time
}
