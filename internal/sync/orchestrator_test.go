package sync

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneymap/backend/internal/apperr"
	"github.com/moneymap/backend/internal/classify"
	"github.com/moneymap/backend/internal/provider"
	"github.com/moneymap/backend/internal/provider/providertest"
	"github.com/moneymap/backend/internal/store"
)

func newOrchestratorFixture() (*Orchestrator, *providertest.Client, *store.MemoryAccountStore, *store.MemoryTransactionStore) {
	client := &providertest.Client{
		AccountsResult: &provider.AccountsResult{
			Item:     chaseItem(),
			Accounts: []provider.AccountRecord{checkingRecord("ext-1")},
		},
		Transactions: []provider.TransactionRecord{providertest.Transaction{
			ID:          providertest.Str("txn-1"),
			AccountID:   providertest.Str("ext-1"),
			RawAmount:   providertest.Dec("4.50"),
			Description: providertest.Str("STARBUCKS COFFEE"),
			DateValue:   providertest.Str("2025-03-14"),
		}},
	}
	accounts := store.NewMemoryAccountStore()
	transactions := store.NewMemoryTransactionStore()
	orch := NewOrchestrator(
		NewAccountSyncer(client, accounts, zerolog.Nop()),
		NewTransactionSyncer(client, accounts, transactions, classify.New(), zerolog.Nop()),
		zerolog.Nop(),
	)
	return orch, client, accounts, transactions
}

// Account sync runs first so the transaction phase finds the newly linked
// account in the same run.
func TestOrchestratorSyncAllLinksThenIngests(t *testing.T) {
	orch, _, accounts, transactions := newOrchestratorFixture()
	ctx := context.Background()

	summary, err := orch.SyncAll(ctx, testUser, "token", "item-1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Accounts.Synced)
	assert.Equal(t, 1, summary.Transactions.Synced)

	acct, err := accounts.FindByExternalAccountID(ctx, testUser.ID, "ext-1")
	require.NoError(t, err)
	txn, err := transactions.FindByExternalTransactionID(ctx, testUser.ID, "txn-1")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, txn.AccountID)
	assert.False(t, acct.LastSyncedAt.IsZero())
}

func TestOrchestratorSyncAllAbortsOnAccountFailure(t *testing.T) {
	orch, client, _, _ := newOrchestratorFixture()
	client.AccountsErr = apperr.Upstream("provider down", false, nil)

	summary, err := orch.SyncAll(context.Background(), testUser, "token", "")
	assert.Nil(t, summary)
	assert.Equal(t, apperr.CodeUpstreamUnavailable, apperr.CodeOf(err))
	assert.Equal(t, 0, client.TransactionsCalls)
}

func TestOrchestratorPhaseMethods(t *testing.T) {
	orch, client, _, _ := newOrchestratorFixture()
	ctx := context.Background()

	accounts, err := orch.SyncAccounts(ctx, testUser, "token", "")
	require.NoError(t, err)
	assert.Equal(t, 1, accounts.Synced)

	transactions, err := orch.SyncTransactions(ctx, testUser, "token")
	require.NoError(t, err)
	assert.Equal(t, 1, transactions.Synced)
	assert.Equal(t, 1, client.AccountsCalls)
	assert.Equal(t, 1, client.TransactionsCalls)
}
