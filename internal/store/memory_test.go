package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneymap/backend/internal/model"
)

func amt(s string) model.Amount {
	return model.AmountFromDecimal(decimal.RequireFromString(s))
}

func TestMemoryAccountStore_SaveIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()

	acct := &model.Account{ID: "a1", UserID: "u1", ExternalAccountID: "ext1"}
	outcome, err := s.SaveIfAbsent(ctx, acct)
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)

	// Same id loses.
	outcome, err = s.SaveIfAbsent(ctx, &model.Account{ID: "a1", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, outcome)

	// Different id, same external id for the same user also loses.
	outcome, err = s.SaveIfAbsent(ctx, &model.Account{ID: "a2", UserID: "u1", ExternalAccountID: "ext1"})
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, outcome)

	// Same external id under a different user is fine.
	outcome, err = s.SaveIfAbsent(ctx, &model.Account{ID: "a3", UserID: "u2", ExternalAccountID: "ext1"})
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
}

func TestMemoryAccountStore_OptimisticSave(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})

	acct := &model.Account{ID: "a1", UserID: "u1"}
	_, err := s.SaveIfAbsent(ctx, acct)
	require.NoError(t, err)

	loaded, err := s.FindByID(ctx, "a1")
	require.NoError(t, err)

	// First writer succeeds and advances UpdatedAt.
	loaded.AccountName = "Checking"
	require.NoError(t, s.Save(ctx, loaded))

	// A writer still holding the old UpdatedAt is stale.
	staleCopy := &model.Account{ID: "a1", UserID: "u1", UpdatedAt: acct.UpdatedAt}
	assert.ErrorIs(t, s.Save(ctx, staleCopy), ErrStale)
}

func TestMemoryAccountStore_SaveDoesNotAliasCaller(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()

	acct := &model.Account{ID: "a1", UserID: "u1", AccountName: "Checking"}
	_, err := s.SaveIfAbsent(ctx, acct)
	require.NoError(t, err)

	// Mutating the caller's record must not change stored state.
	acct.AccountName = "Hacked"
	stored, err := s.FindByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "Checking", stored.AccountName)
}

func TestMemoryAccountStore_Lookups(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryAccountStore()

	_, err := s.SaveIfAbsent(ctx, &model.Account{
		ID: "a1", UserID: "u1", ExternalAccountID: "ext1",
		ExternalItemID: "item1", AccountNumber: "1234", InstitutionName: "Test Bank",
	})
	require.NoError(t, err)

	byExt, err := s.FindByExternalAccountID(ctx, "u1", "ext1")
	require.NoError(t, err)
	assert.Equal(t, "a1", byExt.ID)

	_, err = s.FindByExternalAccountID(ctx, "u1", "")
	assert.ErrorIs(t, err, ErrNotFound)

	byItem, err := s.FindByExternalItemID(ctx, "u1", "item1")
	require.NoError(t, err)
	assert.Len(t, byItem, 1)

	byNumber, err := s.FindByAccountNumberAndInstitution(ctx, "u1", "1234", "test bank")
	require.NoError(t, err)
	assert.Equal(t, "a1", byNumber.ID)

	_, err = s.FindByAccountNumberAndInstitution(ctx, "u1", "9999", "Test Bank")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTransactionStore_SaveIfExternalIDAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTransactionStore()

	txn := &model.Transaction{ID: "t1", UserID: "u1", ExternalTransactionID: "ext1"}
	outcome, err := s.SaveIfExternalIDAbsent(ctx, txn)
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)

	outcome, err = s.SaveIfExternalIDAbsent(ctx, &model.Transaction{ID: "t2", UserID: "u1", ExternalTransactionID: "ext1"})
	require.NoError(t, err)
	assert.Equal(t, AlreadyExists, outcome)
}

func TestMemoryTransactionStore_CompositeKeyPrefersUnlinked(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTransactionStore()

	linked := &model.Transaction{
		ID: "t1", UserID: "u1", AccountID: "a1", ExternalTransactionID: "ext1",
		Amount: amt("-12.34"), Date: "2024-01-15", Description: "Coffee Shop",
	}
	unlinked := &model.Transaction{
		ID: "t2", UserID: "u1", AccountID: "a1",
		Amount: amt("-12.34"), Date: "2024-01-15", Description: "Coffee Shop",
	}
	_, err := s.SaveIfExternalIDAbsent(ctx, linked)
	require.NoError(t, err)
	_, err = s.SaveIfExternalIDAbsent(ctx, unlinked)
	require.NoError(t, err)

	got, err := s.FindByCompositeKey(ctx, "u1", "a1", amt("-12.34"), "2024-01-15", "Coffee Shop")
	require.NoError(t, err)
	assert.Equal(t, "t2", got.ID)
}

func TestMemoryTransactionStore_CompositeKeyAmountEquality(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTransactionStore()

	_, err := s.SaveIfExternalIDAbsent(ctx, &model.Transaction{
		ID: "t1", UserID: "u1", AccountID: "a1",
		Amount: amt("-12.340"), Date: "2024-01-15", Description: "Coffee Shop",
	})
	require.NoError(t, err)

	// Equality is numeric, not textual.
	got, err := s.FindByCompositeKey(ctx, "u1", "a1", amt("-12.34"), "2024-01-15", "Coffee Shop")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	_, err = s.FindByCompositeKey(ctx, "u1", "a1", amt("-12.35"), "2024-01-15", "Coffee Shop")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTransactionStore_OptimisticSave(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTransactionStore()

	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})

	txn := &model.Transaction{ID: "t1", UserID: "u1"}
	_, err := s.SaveIfExternalIDAbsent(ctx, txn)
	require.NoError(t, err)

	loaded, err := s.FindByID(ctx, "t1")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, loaded))

	stale := &model.Transaction{ID: "t1", UserID: "u1", UpdatedAt: txn.UpdatedAt}
	assert.ErrorIs(t, s.Save(ctx, stale), ErrStale)
}
