package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/ledger"
)

// Postgres implementa ledger.Store sobre database/sql.
// Fora de transação opera direto no pool; dentro de RunInTx todas as
// leituras de perfil e request usam FOR UPDATE.
type Postgres struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (p *Postgres) q() querier {
	if p.tx != nil {
		return p.tx
	}
	return p.db
}

// RunInTx abre uma transação e executa fn sobre um Store preso a ela.
// Chamadas aninhadas reutilizam a transação corrente.
func (p *Postgres) RunInTx(ctx context.Context, fn func(ledger.Store) error) error {
	if p.tx != nil {
		return fn(p)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Postgres{db: p.db, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *Postgres) CreateProfile(ctx context.Context, prof *ledger.Profile) error {
	_, err := p.q().ExecContext(ctx, `
		INSERT INTO profiles (id, email, username, wallet_balance, updated_at)
		VALUES ($1,$2,$3,$4,$5)`,
		prof.ID, prof.Email, prof.Username, prof.WalletBalance, prof.UpdatedAt)
	return err
}

func (p *Postgres) GetProfile(ctx context.Context, userID string) (*ledger.Profile, error) {
	q := `SELECT id, email, username, wallet_balance, updated_at FROM profiles WHERE id=$1`
	if p.tx != nil {
		q += ` FOR UPDATE` // serializa mutações de saldo por usuário
	}

	var prof ledger.Profile
	var email, username sql.NullString
	err := p.q().QueryRowContext(ctx, q, userID).
		Scan(&prof.ID, &email, &username, &prof.WalletBalance, &prof.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	prof.Email = email.String
	prof.Username = username.String
	return &prof, nil
}

func (p *Postgres) UpdateWalletBalance(ctx context.Context, userID string, balance decimal.Decimal, at time.Time) error {
	res, err := p.q().ExecContext(ctx,
		`UPDATE profiles SET wallet_balance=$1, updated_at=$2 WHERE id=$3`,
		balance, at, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrUserNotFound
	}
	return nil
}

func (p *Postgres) CreateWithdrawal(ctx context.Context, w *ledger.Withdrawal) error {
	_, err := p.q().ExecContext(ctx, `
		INSERT INTO withdrawal_requests (id, user_id, nft_item_id, withdrawal_fee, destination_address, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		w.ID, w.UserID, nullStr(w.NFTItemID), w.WithdrawalFee, nullStr(w.DestinationAddress), w.Status, w.CreatedAt)
	return err
}

func (p *Postgres) CreateDeposit(ctx context.Context, d *ledger.Deposit) error {
	_, err := p.q().ExecContext(ctx, `
		INSERT INTO deposit_requests (id, user_id, amount, status, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		d.ID, d.UserID, d.Amount, d.Status, d.CreatedAt)
	return err
}

func (p *Postgres) GetWithdrawal(ctx context.Context, id string) (*ledger.Withdrawal, error) {
	q := `
		SELECT id, user_id, nft_item_id, withdrawal_fee, destination_address, status, created_at, completed_at
		FROM withdrawal_requests WHERE id=$1`
	if p.tx != nil {
		q += ` FOR UPDATE`
	}

	var w ledger.Withdrawal
	var itemID, dest sql.NullString
	var completedAt sql.NullTime
	err := p.q().QueryRowContext(ctx, q, id).
		Scan(&w.ID, &w.UserID, &itemID, &w.WithdrawalFee, &dest, &w.Status, &w.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	w.NFTItemID = itemID.String
	w.DestinationAddress = dest.String
	if completedAt.Valid {
		t := completedAt.Time
		w.CompletedAt = &t
	}
	return &w, nil
}

func (p *Postgres) GetDeposit(ctx context.Context, id string) (*ledger.Deposit, error) {
	q := `
		SELECT id, user_id, amount, status, created_at, processed_at, approved_at
		FROM deposit_requests WHERE id=$1`
	if p.tx != nil {
		q += ` FOR UPDATE`
	}

	var d ledger.Deposit
	var processedAt, approvedAt sql.NullTime
	err := p.q().QueryRowContext(ctx, q, id).
		Scan(&d.ID, &d.UserID, &d.Amount, &d.Status, &d.CreatedAt, &processedAt, &approvedAt)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if processedAt.Valid {
		t := processedAt.Time
		d.ProcessedAt = &t
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		d.ApprovedAt = &t
	}
	return &d, nil
}

// CompleteWithdrawal é a escrita condicional que fecha a corrida de
// dupla conclusão: só vence quem encontrar status <> completed.
func (p *Postgres) CompleteWithdrawal(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := p.q().ExecContext(ctx, `
		UPDATE withdrawal_requests SET status=$2, completed_at=$3
		WHERE id=$1 AND status <> $2`,
		id, ledger.StatusCompleted, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Postgres) CompleteDeposit(ctx context.Context, id string, processedAt, approvedAt time.Time) (bool, error) {
	res, err := p.q().ExecContext(ctx, `
		UPDATE deposit_requests SET status=$2, processed_at=$3, approved_at=$4
		WHERE id=$1 AND status <> $2`,
		id, ledger.StatusCompleted, processedAt, approvedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (p *Postgres) UpdateRequestStatus(ctx context.Context, kind ledger.RequestKind, id, status string) (bool, error) {
	table, err := requestTable(kind)
	if err != nil {
		return false, err
	}

	res, err := p.q().ExecContext(ctx,
		`UPDATE `+table+` SET status=$2 WHERE id=$1 AND status <> $3`,
		id, status, ledger.StatusCompleted)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	// distingue request inexistente de request já completed
	var exists bool
	if err := p.q().QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id=$1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, ledger.ErrRequestNotFound
	}
	return false, nil
}

func (p *Postgres) ListCompletedWithdrawals(ctx context.Context, userID string) ([]ledger.Withdrawal, error) {
	rows, err := p.q().QueryContext(ctx, `
		SELECT id, user_id, nft_item_id, withdrawal_fee, destination_address, status, created_at, completed_at
		FROM withdrawal_requests
		WHERE user_id=$1 AND status=$2
		ORDER BY completed_at DESC`,
		userID, ledger.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Withdrawal
	for rows.Next() {
		var w ledger.Withdrawal
		var itemID, dest sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&w.ID, &w.UserID, &itemID, &w.WithdrawalFee, &dest, &w.Status, &w.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		w.NFTItemID = itemID.String
		w.DestinationAddress = dest.String
		if completedAt.Valid {
			t := completedAt.Time
			w.CompletedAt = &t
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (p *Postgres) ListCompletedDeposits(ctx context.Context, userID string) ([]ledger.Deposit, error) {
	rows, err := p.q().QueryContext(ctx, `
		SELECT id, user_id, amount, status, created_at, processed_at, approved_at
		FROM deposit_requests
		WHERE user_id=$1 AND status=$2
		ORDER BY processed_at DESC`,
		userID, ledger.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Deposit
	for rows.Next() {
		var d ledger.Deposit
		var processedAt, approvedAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.UserID, &d.Amount, &d.Status, &d.CreatedAt, &processedAt, &approvedAt); err != nil {
			return nil, err
		}
		if processedAt.Valid {
			t := processedAt.Time
			d.ProcessedAt = &t
		}
		if approvedAt.Valid {
			t := approvedAt.Time
			d.ApprovedAt = &t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) GetItemListPrice(ctx context.Context, itemID string) (decimal.Decimal, error) {
	var price decimal.NullDecimal
	err := p.q().QueryRowContext(ctx,
		`SELECT list_price FROM nft_items WHERE id=$1`, itemID).Scan(&price)
	if err == sql.ErrNoRows {
		return decimal.Zero, ledger.ErrItemNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	if !price.Valid {
		return decimal.Zero, nil
	}
	return price.Decimal, nil
}

func (p *Postgres) AppendMutation(ctx context.Context, m *ledger.Mutation) error {
	_, err := p.q().ExecContext(ctx, `
		INSERT INTO balance_mutations (id, user_id, operation, amount, previous_balance, new_balance, reason, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.UserID, string(m.Operation), m.Amount, m.PreviousBalance, m.NewBalance, nullStr(m.Reason), m.CreatedAt)
	return err
}

func (p *Postgres) ListMutations(ctx context.Context, userID string) ([]ledger.Mutation, error) {
	rows, err := p.q().QueryContext(ctx, `
		SELECT id, user_id, operation, amount, previous_balance, new_balance, reason, created_at
		FROM balance_mutations
		WHERE user_id=$1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Mutation
	for rows.Next() {
		var m ledger.Mutation
		var op string
		var reason sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &op, &m.Amount, &m.PreviousBalance, &m.NewBalance, &reason, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Operation = ledger.Operation(op)
		m.Reason = reason.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func requestTable(kind ledger.RequestKind) (string, error) {
	switch kind {
	case ledger.KindWithdrawal:
		return "withdrawal_requests", nil
	case ledger.KindDeposit:
		return "deposit_requests", nil
	}
	return "", fmt.Errorf("unknown request kind %q", kind)
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
