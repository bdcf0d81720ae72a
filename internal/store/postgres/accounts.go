package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/moneymap/backend/internal/model"
	"github.com/moneymap/backend/internal/store"
)

const accountColumns = `
	id, user_id, external_account_id, external_item_id, institution_name,
	account_name, account_number, account_type, account_subtype, balance,
	currency_code, active, last_synced_at, created_at, updated_at`

// AccountStore implements store.AccountStore on PostgreSQL.
type AccountStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	var balance decimal.Decimal
	var active *bool
	var lastSyncedAt *time.Time

	err := row.Scan(
		&a.ID, &a.UserID, &a.ExternalAccountID, &a.ExternalItemID, &a.InstitutionName,
		&a.AccountName, &a.AccountNumber, &a.AccountType, &a.AccountSubtype, &balance,
		&a.CurrencyCode, &active, &lastSyncedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	a.Balance = model.AmountFromDecimal(balance)
	a.Active = triState(active)
	a.LastSyncedAt = timeVal(lastSyncedAt)
	return &a, nil
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*model.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(s.pool.QueryRow(ctx, query, id))
}

func (s *AccountStore) FindByUserID(ctx context.Context, userID string) ([]*model.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return s.queryAccounts(ctx, query, userID)
}

func (s *AccountStore) FindByExternalAccountID(ctx context.Context, userID, externalAccountID string) (*model.Account, error) {
	if externalAccountID == "" {
		return nil, store.ErrNotFound
	}
	query := `SELECT` + accountColumns + ` FROM accounts WHERE user_id = $1 AND external_account_id = $2`
	return scanAccount(s.pool.QueryRow(ctx, query, userID, externalAccountID))
}

func (s *AccountStore) FindByExternalItemID(ctx context.Context, userID, externalItemID string) ([]*model.Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE user_id = $1 AND external_item_id = $2`
	return s.queryAccounts(ctx, query, userID, externalItemID)
}

func (s *AccountStore) FindByAccountNumberAndInstitution(ctx context.Context, userID, accountNumber, institutionName string) (*model.Account, error) {
	if accountNumber == "" {
		return nil, store.ErrNotFound
	}
	query := `SELECT` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND account_number = $2 AND LOWER(institution_name) = LOWER($3)
		LIMIT 1`
	return scanAccount(s.pool.QueryRow(ctx, query, userID, accountNumber, institutionName))
}

func (s *AccountStore) queryAccounts(ctx context.Context, query string, args ...any) ([]*model.Account, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Save upserts the account. For an existing row the write only lands when the
// caller still holds the current updated_at; otherwise ErrStale.
func (s *AccountStore) Save(ctx context.Context, account *model.Account) error {
	now := s.now()
	createdAt := account.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			external_account_id = EXCLUDED.external_account_id,
			external_item_id = EXCLUDED.external_item_id,
			institution_name = EXCLUDED.institution_name,
			account_name = EXCLUDED.account_name,
			account_number = EXCLUDED.account_number,
			account_type = EXCLUDED.account_type,
			account_subtype = EXCLUDED.account_subtype,
			balance = EXCLUDED.balance,
			currency_code = EXCLUDED.currency_code,
			active = EXCLUDED.active,
			last_synced_at = EXCLUDED.last_synced_at,
			updated_at = EXCLUDED.updated_at
		WHERE accounts.updated_at = $16`

	tag, err := s.pool.Exec(ctx, query,
		account.ID, account.UserID, account.ExternalAccountID, account.ExternalItemID,
		account.InstitutionName, account.AccountName, account.AccountNumber,
		account.AccountType, account.AccountSubtype, account.Balance.Decimal(),
		account.CurrencyCode, boolPtr(account.Active), timePtr(account.LastSyncedAt),
		createdAt, now, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save account %s: %w", account.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrStale
	}

	account.CreatedAt = createdAt
	account.UpdatedAt = now
	return nil
}

// SaveIfAbsent creates the account unless its id or (user, external id) pair
// already exists.
func (s *AccountStore) SaveIfAbsent(ctx context.Context, account *model.Account) (store.CreateOutcome, error) {
	now := s.now()

	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT DO NOTHING`

	tag, err := s.pool.Exec(ctx, query,
		account.ID, account.UserID, account.ExternalAccountID, account.ExternalItemID,
		account.InstitutionName, account.AccountName, account.AccountNumber,
		account.AccountType, account.AccountSubtype, account.Balance.Decimal(),
		account.CurrencyCode, boolPtr(account.Active), timePtr(account.LastSyncedAt),
		now, now,
	)
	if err != nil {
		return store.AlreadyExists, fmt.Errorf("create account %s: %w", account.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.AlreadyExists, nil
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	return store.Created, nil
}
