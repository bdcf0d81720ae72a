// Package store defines the persistence interfaces the sync engine depends
// on, plus an in-memory implementation for tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/moneymap/backend/internal/model"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// ErrStale is returned by Save when the record was modified since it was
// loaded. The caller should re-fetch and reapply.
var ErrStale = errors.New("record modified since read")

// CreateOutcome reports how a conditional create resolved. Losing the race is
// an expected signal, not an error.
type CreateOutcome int

const (
	Created CreateOutcome = iota
	AlreadyExists
)

// AccountStore persists accounts.
//
// Save is an optimistic update: it compares the record's UpdatedAt against
// the stored one, fails with ErrStale on mismatch, and stamps a fresh
// UpdatedAt on success. Callers never set UpdatedAt themselves.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByUserID(ctx context.Context, userID string) ([]*model.Account, error)
	FindByExternalAccountID(ctx context.Context, userID, externalAccountID string) (*model.Account, error)
	FindByExternalItemID(ctx context.Context, userID, externalItemID string) ([]*model.Account, error)
	FindByAccountNumberAndInstitution(ctx context.Context, userID, accountNumber, institutionName string) (*model.Account, error)
	Save(ctx context.Context, account *model.Account) error
	// SaveIfAbsent creates the account only if its id and external account
	// id are free. AlreadyExists means a concurrent writer won; the caller
	// re-fetches the winner.
	SaveIfAbsent(ctx context.Context, account *model.Account) (CreateOutcome, error)
}

// TransactionStore persists transactions. Save carries the same optimistic
// contract as AccountStore.Save.
type TransactionStore interface {
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindByExternalTransactionID(ctx context.Context, userID, externalTransactionID string) (*model.Transaction, error)
	// FindByCompositeKey matches by (account, amount, date, description),
	// preferring a record that carries no external transaction id.
	FindByCompositeKey(ctx context.Context, userID, accountID string, amount model.Amount, date, description string) (*model.Transaction, error)
	Save(ctx context.Context, txn *model.Transaction) error
	// SaveIfExternalIDAbsent creates the transaction only if neither its id
	// nor its external transaction id is already present.
	SaveIfExternalIDAbsent(ctx context.Context, txn *model.Transaction) (CreateOutcome, error)
}
