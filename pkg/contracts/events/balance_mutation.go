package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evento emitido pelo ledger após cada mutação de saldo confirmada.
type BalanceMutation struct {
	MutationID      string          `json:"mutation_id"`
	UserID          string          `json:"user_id"`
	Operation       string          `json:"operation"` // "add" | "subtract"
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	Reason          string          `json:"reason,omitempty"`
	Ts              time.Time       `json:"ts"`
}
