package repo

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/ledger"
)

// Memory implementa ledger.Store em memória, com a mesma semântica
// all-or-nothing do Postgres: RunInTx trabalha sobre uma cópia do estado
// e só a promove no sucesso. Serve de fake nos testes do ledger.
type Memory struct {
	mu   sync.Mutex
	st   *memState
	inTx bool
}

type memState struct {
	profiles    map[string]ledger.Profile
	withdrawals map[string]ledger.Withdrawal
	deposits    map[string]ledger.Deposit
	itemPrices  map[string]decimal.Decimal
	mutations   []ledger.Mutation
}

func NewMemory() *Memory {
	return &Memory{st: &memState{
		profiles:    map[string]ledger.Profile{},
		withdrawals: map[string]ledger.Withdrawal{},
		deposits:    map[string]ledger.Deposit{},
		itemPrices:  map[string]decimal.Decimal{},
	}}
}

func (s *memState) clone() *memState {
	c := &memState{
		profiles:    make(map[string]ledger.Profile, len(s.profiles)),
		withdrawals: make(map[string]ledger.Withdrawal, len(s.withdrawals)),
		deposits:    make(map[string]ledger.Deposit, len(s.deposits)),
		itemPrices:  make(map[string]decimal.Decimal, len(s.itemPrices)),
		mutations:   append([]ledger.Mutation(nil), s.mutations...),
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.withdrawals {
		c.withdrawals[k] = v
	}
	for k, v := range s.deposits {
		c.deposits[k] = v
	}
	for k, v := range s.itemPrices {
		c.itemPrices[k] = v
	}
	return c
}

// RunInTx segura o lock durante toda a transação, serializando também
// tentativas concorrentes de completar o mesmo request.
func (m *Memory) RunInTx(ctx context.Context, fn func(ledger.Store) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.st.clone()
	if err := fn(&Memory{st: work, inTx: true}); err != nil {
		return err
	}
	m.st = work
	return nil
}

// SeedItem registra o preço de listagem de um item NFT.
func (m *Memory) SeedItem(itemID string, listPrice decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.itemPrices[itemID] = listPrice
}

func (m *Memory) CreateProfile(ctx context.Context, p *ledger.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.profiles[p.ID] = *p
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, userID string) (*ledger.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.st.profiles[userID]
	if !ok {
		return nil, ledger.ErrUserNotFound
	}
	cp := p
	return &cp, nil
}

func (m *Memory) UpdateWalletBalance(ctx context.Context, userID string, balance decimal.Decimal, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.st.profiles[userID]
	if !ok {
		return ledger.ErrUserNotFound
	}
	p.WalletBalance = balance
	p.UpdatedAt = at
	m.st.profiles[userID] = p
	return nil
}

func (m *Memory) CreateWithdrawal(ctx context.Context, w *ledger.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.withdrawals[w.ID] = *w
	return nil
}

func (m *Memory) CreateDeposit(ctx context.Context, d *ledger.Deposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.deposits[d.ID] = *d
	return nil
}

func (m *Memory) GetWithdrawal(ctx context.Context, id string) (*ledger.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.st.withdrawals[id]
	if !ok {
		return nil, ledger.ErrRequestNotFound
	}
	cp := w
	return &cp, nil
}

func (m *Memory) GetDeposit(ctx context.Context, id string) (*ledger.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.st.deposits[id]
	if !ok {
		return nil, ledger.ErrRequestNotFound
	}
	cp := d
	return &cp, nil
}

func (m *Memory) CompleteWithdrawal(ctx context.Context, id string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.st.withdrawals[id]
	if !ok || w.Status == ledger.StatusCompleted {
		return false, nil
	}
	w.Status = ledger.StatusCompleted
	t := at
	w.CompletedAt = &t
	m.st.withdrawals[id] = w
	return true, nil
}

func (m *Memory) CompleteDeposit(ctx context.Context, id string, processedAt, approvedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.st.deposits[id]
	if !ok || d.Status == ledger.StatusCompleted {
		return false, nil
	}
	d.Status = ledger.StatusCompleted
	pt, at := processedAt, approvedAt
	d.ProcessedAt = &pt
	d.ApprovedAt = &at
	m.st.deposits[id] = d
	return true, nil
}

func (m *Memory) UpdateRequestStatus(ctx context.Context, kind ledger.RequestKind, id, status string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case ledger.KindWithdrawal:
		w, ok := m.st.withdrawals[id]
		if !ok {
			return false, ledger.ErrRequestNotFound
		}
		if w.Status == ledger.StatusCompleted {
			return false, nil
		}
		w.Status = status
		m.st.withdrawals[id] = w
		return true, nil
	case ledger.KindDeposit:
		d, ok := m.st.deposits[id]
		if !ok {
			return false, ledger.ErrRequestNotFound
		}
		if d.Status == ledger.StatusCompleted {
			return false, nil
		}
		d.Status = status
		m.st.deposits[id] = d
		return true, nil
	}
	return false, ledger.ErrRequestNotFound
}

func (m *Memory) ListCompletedWithdrawals(ctx context.Context, userID string) ([]ledger.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.Withdrawal
	for _, w := range m.st.withdrawals {
		if w.UserID == userID && w.Status == ledger.StatusCompleted {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *Memory) ListCompletedDeposits(ctx context.Context, userID string) ([]ledger.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.Deposit
	for _, d := range m.st.deposits {
		if d.UserID == userID && d.Status == ledger.StatusCompleted {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) GetItemListPrice(ctx context.Context, itemID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	price, ok := m.st.itemPrices[itemID]
	if !ok {
		return decimal.Zero, ledger.ErrItemNotFound
	}
	return price, nil
}

func (m *Memory) AppendMutation(ctx context.Context, mut *ledger.Mutation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.mutations = append(m.st.mutations, *mut)
	return nil
}

func (m *Memory) ListMutations(ctx context.Context, userID string) ([]ledger.Mutation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.Mutation
	for i := len(m.st.mutations) - 1; i >= 0; i-- {
		if m.st.mutations[i].UserID == userID {
			out = append(out, m.st.mutations[i])
		}
	}
	return out, nil
}
