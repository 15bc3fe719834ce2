package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	ev "github.com/radieske/nft-market-backoffice-poc/pkg/contracts/events"
)

// MutationPublisher publica eventos de mutação de saldo após o commit.
type MutationPublisher interface {
	PublishBalanceMutation(ctx context.Context, e ev.BalanceMutation) error
}

// Service é o único dono das mutações de walletBalance.
// Toda transição de request para completed passa por aqui, dentro de uma
// única transação com o débito/crédito correspondente.
type Service struct {
	log   *zap.Logger
	store Store
	publ  MutationPublisher // opcional; a linha de auditoria no banco é o registro
	now   func() time.Time
}

func New(log *zap.Logger, store Store, publ MutationPublisher) *Service {
	return &Service{log: log, store: store, publ: publ, now: time.Now}
}

// AdjustBalance aplica uma variação direta no saldo de um usuário.
// Falha com ErrInsufficientBalance quando o resultado ficaria negativo.
func (s *Service) AdjustBalance(ctx context.Context, userID string, amount decimal.Decimal, op Operation, reason string) (*Mutation, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if op != OpAdd && op != OpSubtract {
		return nil, fmt.Errorf("unknown operation %q", op)
	}

	var mut *Mutation
	err := s.store.RunInTx(ctx, func(tx Store) error {
		m, err := s.applyDelta(ctx, tx, userID, amount, op, reason)
		if err != nil {
			return err
		}
		mut = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, mut)
	return mut, nil
}

// WithdrawalResult descreve um saque concluído.
type WithdrawalResult struct {
	WithdrawalID   string
	TotalDeduction decimal.Decimal
	Mutation       *Mutation
	CompletedAt    time.Time
}

// CompleteWithdrawal conclui um saque: debita listPrice do item vinculado
// (zero se não houver) mais a taxa, e marca o request como completed.
// Débito e status mudam juntos ou nada muda.
func (s *Service) CompleteWithdrawal(ctx context.Context, id string) (*WithdrawalResult, error) {
	var res *WithdrawalResult
	err := s.store.RunInTx(ctx, func(tx Store) error {
		wd, err := tx.GetWithdrawal(ctx, id)
		if err != nil {
			return err
		}
		if wd.Status == StatusCompleted {
			return ErrAlreadyCompleted
		}

		amount := decimal.Zero
		if wd.NFTItemID != "" {
			price, perr := tx.GetItemListPrice(ctx, wd.NFTItemID)
			if perr != nil && !errors.Is(perr, ErrItemNotFound) {
				return perr
			}
			if perr == nil {
				amount = price
			}
		}

		total := amount.Add(wd.WithdrawalFee)
		if !total.IsPositive() {
			return ErrInvalidAmount
		}

		at := s.now()
		ok, err := tx.CompleteWithdrawal(ctx, id, at)
		if err != nil {
			return err
		}
		if !ok {
			// alguém completou entre a leitura e a escrita condicional
			return ErrCompletionConflict
		}

		mut, err := s.applyDelta(ctx, tx, wd.UserID, total, OpSubtract, "withdrawal #"+id)
		if err != nil {
			return err
		}

		res = &WithdrawalResult{
			WithdrawalID:   id,
			TotalDeduction: total,
			Mutation:       mut,
			CompletedAt:    at,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, res.Mutation)
	return res, nil
}

// DepositResult descreve um depósito concluído.
type DepositResult struct {
	DepositID   string
	Amount      decimal.Decimal
	Mutation    *Mutation
	ProcessedAt time.Time
	ApprovedAt  time.Time
}

// CompleteDeposit conclui um depósito, creditando o valor do request.
// ApprovedAt só é estampado se ainda não estava definido.
func (s *Service) CompleteDeposit(ctx context.Context, id string) (*DepositResult, error) {
	var res *DepositResult
	err := s.store.RunInTx(ctx, func(tx Store) error {
		dep, err := tx.GetDeposit(ctx, id)
		if err != nil {
			return err
		}
		if dep.Status == StatusCompleted {
			return ErrAlreadyCompleted
		}
		if !dep.Amount.IsPositive() {
			return ErrInvalidAmount
		}

		at := s.now()
		approvedAt := at
		if dep.ApprovedAt != nil {
			approvedAt = *dep.ApprovedAt
		}

		ok, err := tx.CompleteDeposit(ctx, id, at, approvedAt)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCompletionConflict
		}

		mut, err := s.applyDelta(ctx, tx, dep.UserID, dep.Amount, OpAdd, "deposit #"+id)
		if err != nil {
			return err
		}

		res = &DepositResult{
			DepositID:   id,
			Amount:      dep.Amount,
			Mutation:    mut,
			ProcessedAt: at,
			ApprovedAt:  approvedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterMutation(ctx, res.Mutation)
	return res, nil
}

// StatusChangeResult descreve o efeito de uma transição aplicada pelo
// editor de status.
type StatusChangeResult struct {
	Completed bool
	Mutation  *Mutation // nil quando a transição não completa o request
}

// ChangeRequestStatus é a fronteira chamada pelo painel ou pelo worker.
// Transição para completed dispara a mutação financeira; as demais só
// gravam o novo status e nunca saem de completed.
func (s *Service) ChangeRequestStatus(ctx context.Context, kind RequestKind, id, newStatus string) (*StatusChangeResult, error) {
	if !ValidStatus(kind, newStatus) {
		return nil, ErrInvalidStatus
	}

	if newStatus == StatusCompleted {
		switch kind {
		case KindWithdrawal:
			res, err := s.CompleteWithdrawal(ctx, id)
			if err != nil {
				return nil, err
			}
			return &StatusChangeResult{Completed: true, Mutation: res.Mutation}, nil
		case KindDeposit:
			res, err := s.CompleteDeposit(ctx, id)
			if err != nil {
				return nil, err
			}
			return &StatusChangeResult{Completed: true, Mutation: res.Mutation}, nil
		}
	}

	ok, err := s.store.UpdateRequestStatus(ctx, kind, id, newStatus)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyCompleted
	}
	return &StatusChangeResult{}, nil
}

// BalanceHistory devolve depósitos e saques concluídos do usuário, do mais
// recente para o mais antigo. Saques expõem a taxa cobrada, como no extrato
// do painel.
func (s *Service) BalanceHistory(ctx context.Context, userID string) ([]HistoryEntry, error) {
	if _, err := s.store.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	deps, err := s.store.ListCompletedDeposits(ctx, userID)
	if err != nil {
		return nil, err
	}
	wds, err := s.store.ListCompletedWithdrawals(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(deps)+len(wds))
	for _, d := range deps {
		date := d.CreatedAt
		if d.ProcessedAt != nil {
			date = *d.ProcessedAt
		}
		entries = append(entries, HistoryEntry{Type: string(KindDeposit), Amount: d.Amount, Date: date})
	}
	for _, w := range wds {
		date := w.CreatedAt
		if w.CompletedAt != nil {
			date = *w.CompletedAt
		}
		entries = append(entries, HistoryEntry{Type: string(KindWithdrawal), Amount: w.WithdrawalFee, Date: date})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries, nil
}

// Mutations expõe o trilho de auditoria de um usuário para relatórios.
func (s *Service) Mutations(ctx context.Context, userID string) ([]Mutation, error) {
	if _, err := s.store.GetProfile(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListMutations(ctx, userID)
}

// CreateProfile registra um novo perfil; id é gerado quando ausente.
func (s *Service) CreateProfile(ctx context.Context, p *Profile) (*Profile, error) {
	if p.WalletBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = s.now()
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfile devolve o perfil com o saldo corrente.
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.store.GetProfile(ctx, userID)
}

// CreateWithdrawalRequest registra um saque pendente com id gerado,
// como o hook "new" do painel fazia.
func (s *Service) CreateWithdrawalRequest(ctx context.Context, w *Withdrawal) (*Withdrawal, error) {
	if w.WithdrawalFee.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.store.GetProfile(ctx, w.UserID); err != nil {
		return nil, err
	}
	w.ID = uuid.NewString()
	w.Status = StatusPending
	w.CreatedAt = s.now()
	w.CompletedAt = nil
	if err := s.store.CreateWithdrawal(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// CreateDepositRequest registra um depósito pendente com id gerado.
func (s *Service) CreateDepositRequest(ctx context.Context, d *Deposit) (*Deposit, error) {
	if !d.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.store.GetProfile(ctx, d.UserID); err != nil {
		return nil, err
	}
	d.ID = uuid.NewString()
	d.Status = StatusPending
	d.CreatedAt = s.now()
	d.ProcessedAt = nil
	d.ApprovedAt = nil
	if err := s.store.CreateDeposit(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetWithdrawal devolve um saque pelo id.
func (s *Service) GetWithdrawal(ctx context.Context, id string) (*Withdrawal, error) {
	return s.store.GetWithdrawal(ctx, id)
}

// GetDeposit devolve um depósito pelo id.
func (s *Service) GetDeposit(ctx context.Context, id string) (*Deposit, error) {
	return s.store.GetDeposit(ctx, id)
}

// applyDelta aplica a variação de saldo dentro da transação corrente e
// registra a linha de auditoria.
func (s *Service) applyDelta(ctx context.Context, tx Store, userID string, amount decimal.Decimal, op Operation, reason string) (*Mutation, error) {
	prof, err := tx.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	prev := prof.WalletBalance
	var next decimal.Decimal
	if op == OpAdd {
		next = prev.Add(amount)
	} else {
		next = prev.Sub(amount)
	}

	if next.IsNegative() {
		return nil, ErrInsufficientBalance
	}

	at := s.now()
	if err := tx.UpdateWalletBalance(ctx, userID, next, at); err != nil {
		return nil, err
	}

	mut := &Mutation{
		ID:              uuid.NewString(),
		UserID:          userID,
		Operation:       op,
		Amount:          amount,
		PreviousBalance: prev,
		NewBalance:      next,
		Reason:          reason,
		CreatedAt:       at,
	}
	if err := tx.AppendMutation(ctx, mut); err != nil {
		return nil, err
	}
	return mut, nil
}

// afterMutation loga e publica o evento depois do commit.
func (s *Service) afterMutation(ctx context.Context, m *Mutation) {
	s.log.Info("balance "+string(m.Operation),
		zap.String("userId", m.UserID),
		zap.String("previous", m.PreviousBalance.String()),
		zap.String("new", m.NewBalance.String()),
		zap.String("reason", m.Reason),
	)

	if s.publ == nil {
		return
	}
	e := ev.BalanceMutation{
		MutationID:      m.ID,
		UserID:          m.UserID,
		Operation:       string(m.Operation),
		Amount:          m.Amount,
		PreviousBalance: m.PreviousBalance,
		NewBalance:      m.NewBalance,
		Reason:          m.Reason,
		Ts:              m.CreatedAt,
	}
	if err := s.publ.PublishBalanceMutation(ctx, e); err != nil {
		s.log.Warn("publish balance mutation", zap.Error(err))
	}
}
