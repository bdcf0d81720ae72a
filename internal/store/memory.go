package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/moneymap/backend/internal/model"
)

// MemoryAccountStore implements AccountStore with an in-memory map. Records
// are cloned on every read and write so callers never alias stored state;
// without the clone the optimistic UpdatedAt check would always pass.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*model.Account
	now      func() time.Time
}

// NewMemoryAccountStore creates a new in-memory account store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]*model.Account),
		now:      time.Now,
	}
}

// SetClock overrides the timestamp source, for tests.
func (s *MemoryAccountStore) SetClock(now func() time.Time) {
	s.now = now
}

func cloneAccount(a *model.Account) *model.Account {
	c := *a
	return &c
}

func (s *MemoryAccountStore) FindByID(ctx context.Context, id string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryAccountStore) FindByUserID(ctx context.Context, userID string) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

func (s *MemoryAccountStore) FindByExternalAccountID(ctx context.Context, userID, externalAccountID string) (*model.Account, error) {
	if externalAccountID == "" {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.UserID == userID && a.ExternalAccountID == externalAccountID {
			return cloneAccount(a), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryAccountStore) FindByExternalItemID(ctx context.Context, userID, externalItemID string) ([]*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Account
	for _, a := range s.accounts {
		if a.UserID == userID && a.ExternalItemID == externalItemID {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

func (s *MemoryAccountStore) FindByAccountNumberAndInstitution(ctx context.Context, userID, accountNumber, institutionName string) (*model.Account, error) {
	if accountNumber == "" {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.UserID == userID && a.AccountNumber == accountNumber &&
			strings.EqualFold(a.InstitutionName, institutionName) {
			return cloneAccount(a), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryAccountStore) Save(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.accounts[account.ID]; ok {
		if !existing.UpdatedAt.Equal(account.UpdatedAt) {
			return ErrStale
		}
	}

	stored := cloneAccount(account)
	stored.UpdatedAt = s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.accounts[account.ID] = stored
	account.UpdatedAt = stored.UpdatedAt
	account.CreatedAt = stored.CreatedAt
	return nil
}

func (s *MemoryAccountStore) SaveIfAbsent(ctx context.Context, account *model.Account) (CreateOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return AlreadyExists, nil
	}
	if account.ExternalAccountID != "" {
		for _, a := range s.accounts {
			if a.UserID == account.UserID && a.ExternalAccountID == account.ExternalAccountID {
				return AlreadyExists, nil
			}
		}
	}

	stored := cloneAccount(account)
	stored.UpdatedAt = s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.accounts[account.ID] = stored
	account.UpdatedAt = stored.UpdatedAt
	account.CreatedAt = stored.CreatedAt
	return Created, nil
}

// MemoryTransactionStore implements TransactionStore with an in-memory map,
// with the same cloning discipline as MemoryAccountStore.
type MemoryTransactionStore struct {
	mu           sync.RWMutex
	transactions map[string]*model.Transaction
	now          func() time.Time
}

// NewMemoryTransactionStore creates a new in-memory transaction store.
func NewMemoryTransactionStore() *MemoryTransactionStore {
	return &MemoryTransactionStore{
		transactions: make(map[string]*model.Transaction),
		now:          time.Now,
	}
}

// SetClock overrides the timestamp source, for tests.
func (s *MemoryTransactionStore) SetClock(now func() time.Time) {
	s.now = now
}

func cloneTransaction(t *model.Transaction) *model.Transaction {
	c := *t
	return &c
}

func (s *MemoryTransactionStore) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.transactions[id]; ok {
		return cloneTransaction(t), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryTransactionStore) FindByExternalTransactionID(ctx context.Context, userID, externalTransactionID string) (*model.Transaction, error) {
	if externalTransactionID == "" {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.transactions {
		if t.UserID == userID && t.ExternalTransactionID == externalTransactionID {
			return cloneTransaction(t), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryTransactionStore) FindByCompositeKey(ctx context.Context, userID, accountID string, amount model.Amount, date, description string) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// A record with no external id is the preferred match: it was created by
	// another ingestion path and is waiting to be linked.
	var withExternalID *model.Transaction
	for _, t := range s.transactions {
		if t.UserID != userID || t.AccountID != accountID {
			continue
		}
		if t.Date != date || t.Description != description || !t.Amount.Equal(amount) {
			continue
		}
		if t.ExternalTransactionID == "" {
			return cloneTransaction(t), nil
		}
		if withExternalID == nil {
			withExternalID = t
		}
	}
	if withExternalID != nil {
		return cloneTransaction(withExternalID), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryTransactionStore) Save(ctx context.Context, txn *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.transactions[txn.ID]; ok {
		if !existing.UpdatedAt.Equal(txn.UpdatedAt) {
			return ErrStale
		}
	}

	stored := cloneTransaction(txn)
	stored.UpdatedAt = s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.transactions[txn.ID] = stored
	txn.UpdatedAt = stored.UpdatedAt
	txn.CreatedAt = stored.CreatedAt
	return nil
}

func (s *MemoryTransactionStore) SaveIfExternalIDAbsent(ctx context.Context, txn *model.Transaction) (CreateOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[txn.ID]; ok {
		return AlreadyExists, nil
	}
	if txn.ExternalTransactionID != "" {
		for _, t := range s.transactions {
			if t.UserID == txn.UserID && t.ExternalTransactionID == txn.ExternalTransactionID {
				return AlreadyExists, nil
			}
		}
	}

	stored := cloneTransaction(txn)
	stored.UpdatedAt = s.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = stored.UpdatedAt
	}
	s.transactions[txn.ID] = stored
	txn.UpdatedAt = stored.UpdatedAt
	txn.CreatedAt = stored.CreatedAt
	return Created, nil
}
