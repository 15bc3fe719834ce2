package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProfileStore lê e grava perfis. Dentro de RunInTx, GetProfile deve
// bloquear a linha do perfil para serializar mutações por usuário.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateWalletBalance(ctx context.Context, userID string, balance decimal.Decimal, at time.Time) error
}

// RequestStore lê e grava pedidos de saque e depósito.
type RequestStore interface {
	CreateWithdrawal(ctx context.Context, w *Withdrawal) error
	CreateDeposit(ctx context.Context, d *Deposit) error
	GetWithdrawal(ctx context.Context, id string) (*Withdrawal, error)
	GetDeposit(ctx context.Context, id string) (*Deposit, error)

	// CompleteWithdrawal grava status=completed condicionado ao status atual
	// não ser completed; retorna false quando a condição falha.
	CompleteWithdrawal(ctx context.Context, id string, at time.Time) (bool, error)
	CompleteDeposit(ctx context.Context, id string, processedAt, approvedAt time.Time) (bool, error)

	// UpdateRequestStatus aplica transições que não completam o request.
	// Nunca sai de completed; retorna false quando o request já está completed.
	UpdateRequestStatus(ctx context.Context, kind RequestKind, id, status string) (bool, error)

	ListCompletedWithdrawals(ctx context.Context, userID string) ([]Withdrawal, error)
	ListCompletedDeposits(ctx context.Context, userID string) ([]Deposit, error)
}

// ItemStore consulta itens NFT; o ledger só precisa do preço de listagem.
type ItemStore interface {
	GetItemListPrice(ctx context.Context, itemID string) (decimal.Decimal, error)
}

// AuditStore registra e consulta mutações de saldo.
type AuditStore interface {
	AppendMutation(ctx context.Context, m *Mutation) error
	ListMutations(ctx context.Context, userID string) ([]Mutation, error)
}

// Store agrega os stores e o limite transacional do ledger.
type Store interface {
	ProfileStore
	RequestStore
	ItemStore
	AuditStore

	// RunInTx executa fn com todas as operações na mesma transação;
	// qualquer erro desfaz tudo.
	RunInTx(ctx context.Context, fn func(Store) error) error
}
