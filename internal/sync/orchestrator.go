package sync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/moneymap/backend/internal/model"
)

// Orchestrator sequences the two sync phases for a single user. Running the
// fleet on a schedule is a caller concern; access tokens live wherever the
// caller keeps them.
type Orchestrator struct {
	accounts     *AccountSyncer
	transactions *TransactionSyncer
	log          zerolog.Logger
}

func NewOrchestrator(accounts *AccountSyncer, transactions *TransactionSyncer, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		accounts:     accounts,
		transactions: transactions,
		log:          log,
	}
}

// SyncAll runs the account phase, then the transaction phase. Account sync
// goes first so newly linked accounts pick up transactions in the same run.
// A failed account phase aborts the run; transactions against an unsynced
// account list would attach to stale links.
func (o *Orchestrator) SyncAll(ctx context.Context, user model.User, accessToken, knownItemID string) (*Summary, error) {
	summary := &Summary{}

	accounts, err := o.accounts.Sync(ctx, user, accessToken, knownItemID)
	if err != nil {
		return nil, err
	}
	summary.Accounts = accounts

	transactions, err := o.transactions.Sync(ctx, user, accessToken)
	if err != nil {
		return summary, err
	}
	summary.Transactions = transactions

	o.log.Info().
		Str("user_id", user.ID).
		Int("accounts_synced", summary.Accounts.Synced).
		Int("transactions_synced", summary.Transactions.Synced).
		Int("transaction_duplicates", summary.Transactions.Duplicates).
		Int("errors", summary.Accounts.Errors+summary.Transactions.Errors).
		Msg("full sync complete")

	return summary, nil
}

// SyncAccounts runs only the account phase.
func (o *Orchestrator) SyncAccounts(ctx context.Context, user model.User, accessToken, knownItemID string) (Result, error) {
	return o.accounts.Sync(ctx, user, accessToken, knownItemID)
}

// SyncTransactions runs only the transaction phase.
func (o *Orchestrator) SyncTransactions(ctx context.Context, user model.User, accessToken string) (Result, error) {
	return o.transactions.Sync(ctx, user, accessToken)
}
