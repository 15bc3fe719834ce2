package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/nft-market-backoffice-poc/internal/ledger-service/ledger"
)

func TestMemoryRunInTxRollsBackOnError(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateProfile(ctx, &ledger.Profile{
		ID:            "u1",
		WalletBalance: decimal.RequireFromString("10.00"),
	}))

	boom := errors.New("boom")
	err := m.RunInTx(ctx, func(tx ledger.Store) error {
		if err := tx.UpdateWalletBalance(ctx, "u1", decimal.RequireFromString("99.00"), time.Now()); err != nil {
			return err
		}
		if err := tx.AppendMutation(ctx, &ledger.Mutation{ID: "m1", UserID: "u1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// nada da transação abortada escapa
	p, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.WalletBalance.Equal(decimal.RequireFromString("10.00")))

	muts, err := m.ListMutations(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, muts)
}

func TestMemoryRunInTxCommitsOnSuccess(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateProfile(ctx, &ledger.Profile{
		ID:            "u1",
		WalletBalance: decimal.Zero,
	}))

	err := m.RunInTx(ctx, func(tx ledger.Store) error {
		return tx.UpdateWalletBalance(ctx, "u1", decimal.RequireFromString("42.00"), time.Now())
	})
	require.NoError(t, err)

	p, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, p.WalletBalance.Equal(decimal.RequireFromString("42.00")))
}

func TestMemoryCompleteWithdrawalConditional(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateWithdrawal(ctx, &ledger.Withdrawal{
		ID:     "w1",
		UserID: "u1",
		Status: ledger.StatusPending,
	}))

	ok, err := m.CompleteWithdrawal(ctx, "w1", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	// segunda tentativa não reescreve
	ok, err = m.CompleteWithdrawal(ctx, "w1", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.CompleteWithdrawal(ctx, "missing", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryUpdateRequestStatusGuardsCompleted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.CreateDeposit(ctx, &ledger.Deposit{
		ID:     "d1",
		UserID: "u1",
		Status: ledger.StatusPending,
	}))

	ok, err := m.UpdateRequestStatus(ctx, ledger.KindDeposit, "d1", ledger.StatusApproved)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.UpdateRequestStatus(ctx, ledger.KindDeposit, "missing", ledger.StatusApproved)
	require.ErrorIs(t, err, ledger.ErrRequestNotFound)

	okc, err := m.CompleteDeposit(ctx, "d1", time.Now(), time.Now())
	require.NoError(t, err)
	require.True(t, okc)

	// completed é terminal
	ok, err = m.UpdateRequestStatus(ctx, ledger.KindDeposit, "d1", ledger.StatusRejected)
	require.NoError(t, err)
	assert.False(t, ok)
}
