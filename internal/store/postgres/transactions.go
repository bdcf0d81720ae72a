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

const transactionColumns = `
	id, user_id, account_id, external_transaction_id, amount, currency_code,
	description, merchant_name, transaction_date, pending, payment_channel,
	category_primary, category_detailed, category_overridden, transaction_type,
	transaction_type_overridden, provider_category_primary,
	provider_category_detailed, created_at, updated_at`

// TransactionStore implements store.TransactionStore on PostgreSQL.
type TransactionStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewTransactionStore(pool *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{pool: pool, now: func() time.Time { return time.Now().UTC() }}
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	var amount decimal.Decimal
	var categoryOverridden, typeOverridden *bool
	var txnType string

	err := row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.ExternalTransactionID, &amount, &t.CurrencyCode,
		&t.Description, &t.MerchantName, &t.Date, &t.Pending, &t.PaymentChannel,
		&t.CategoryPrimary, &t.CategoryDetailed, &categoryOverridden, &txnType,
		&typeOverridden, &t.ProviderCategoryPrimary,
		&t.ProviderCategoryDetailed, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	t.Amount = model.AmountFromDecimal(amount)
	t.CategoryOverridden = triState(categoryOverridden)
	t.TransactionType = model.TransactionType(txnType)
	t.TransactionTypeOverridden = triState(typeOverridden)
	return &t, nil
}

func (s *TransactionStore) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	query := `SELECT` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(s.pool.QueryRow(ctx, query, id))
}

func (s *TransactionStore) FindByExternalTransactionID(ctx context.Context, userID, externalTransactionID string) (*model.Transaction, error) {
	if externalTransactionID == "" {
		return nil, store.ErrNotFound
	}
	query := `SELECT` + transactionColumns + ` FROM transactions WHERE user_id = $1 AND external_transaction_id = $2`
	return scanTransaction(s.pool.QueryRow(ctx, query, userID, externalTransactionID))
}

// FindByCompositeKey matches on (account, amount, date, description), ranking
// rows without an external id first so an unlinked record wins over a
// coincidental duplicate.
func (s *TransactionStore) FindByCompositeKey(ctx context.Context, userID, accountID string, amount model.Amount, date, description string) (*model.Transaction, error) {
	query := `SELECT` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND account_id = $2 AND amount = $3
		  AND transaction_date = $4 AND description = $5
		ORDER BY (external_transaction_id = '') DESC
		LIMIT 1`
	return scanTransaction(s.pool.QueryRow(ctx, query, userID, accountID, amount.Decimal(), date, description))
}

// Save upserts the transaction with the same updated_at guard as account
// saves.
func (s *TransactionStore) Save(ctx context.Context, txn *model.Transaction) error {
	now := s.now()
	createdAt := txn.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			external_transaction_id = EXCLUDED.external_transaction_id,
			amount = EXCLUDED.amount,
			currency_code = EXCLUDED.currency_code,
			description = EXCLUDED.description,
			merchant_name = EXCLUDED.merchant_name,
			transaction_date = EXCLUDED.transaction_date,
			pending = EXCLUDED.pending,
			payment_channel = EXCLUDED.payment_channel,
			category_primary = EXCLUDED.category_primary,
			category_detailed = EXCLUDED.category_detailed,
			category_overridden = EXCLUDED.category_overridden,
			transaction_type = EXCLUDED.transaction_type,
			transaction_type_overridden = EXCLUDED.transaction_type_overridden,
			provider_category_primary = EXCLUDED.provider_category_primary,
			provider_category_detailed = EXCLUDED.provider_category_detailed,
			updated_at = EXCLUDED.updated_at
		WHERE transactions.updated_at = $21`

	tag, err := s.pool.Exec(ctx, query,
		txn.ID, txn.UserID, txn.AccountID, txn.ExternalTransactionID, txn.Amount.Decimal(),
		txn.CurrencyCode, txn.Description, txn.MerchantName, txn.Date, txn.Pending,
		txn.PaymentChannel, txn.CategoryPrimary, txn.CategoryDetailed,
		boolPtr(txn.CategoryOverridden), string(txn.TransactionType),
		boolPtr(txn.TransactionTypeOverridden), txn.ProviderCategoryPrimary,
		txn.ProviderCategoryDetailed, createdAt, now, txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save transaction %s: %w", txn.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrStale
	}

	txn.CreatedAt = createdAt
	txn.UpdatedAt = now
	return nil
}

// SaveIfExternalIDAbsent creates the transaction unless its id or its
// (user, external id) pair is already taken.
func (s *TransactionStore) SaveIfExternalIDAbsent(ctx context.Context, txn *model.Transaction) (store.CreateOutcome, error) {
	now := s.now()

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT DO NOTHING`

	tag, err := s.pool.Exec(ctx, query,
		txn.ID, txn.UserID, txn.AccountID, txn.ExternalTransactionID, txn.Amount.Decimal(),
		txn.CurrencyCode, txn.Description, txn.MerchantName, txn.Date, txn.Pending,
		txn.PaymentChannel, txn.CategoryPrimary, txn.CategoryDetailed,
		boolPtr(txn.CategoryOverridden), string(txn.TransactionType),
		boolPtr(txn.TransactionTypeOverridden), txn.ProviderCategoryPrimary,
		txn.ProviderCategoryDetailed, now, now,
	)
	if err != nil {
		return store.AlreadyExists, fmt.Errorf("create transaction %s: %w", txn.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.AlreadyExists, nil
	}

	txn.CreatedAt = now
	txn.UpdatedAt = now
	return store.Created, nil
}
