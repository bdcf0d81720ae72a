// Package model defines the domain records shared by the sync and
// classification packages.
package model

import "time"

// DateLayout is the canonical transaction-date format. Dates are kept as
// strings so that missing or provider-mangled dates survive round trips
// without being coerced to a zero time.
const DateLayout = "2006-01-02"

// TransactionType buckets a transaction for reporting.
type TransactionType string

const (
	TransactionTypeIncome     TransactionType = "INCOME"
	TransactionTypeExpense    TransactionType = "EXPENSE"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeInvestment TransactionType = "INVESTMENT"
)

// TriState is a nullable boolean for override flags. Unset means no system or
// user decision has been recorded yet, which is distinct from an explicit
// false.
type TriState int

const (
	TriStateUnset TriState = iota
	TriStateFalse
	TriStateTrue
)

// TriStateOf converts a plain bool into the corresponding explicit state.
func TriStateOf(b bool) TriState {
	if b {
		return TriStateTrue
	}
	return TriStateFalse
}

func (t TriState) True() bool  { return t == TriStateTrue }
func (t TriState) Unset() bool { return t == TriStateUnset }

// User identifies the owner of a sync run.
type User struct {
	ID    string
	Email string
}

// Account is a financial account owned by a user. ExternalAccountID is the
// aggregator's identifier; accounts created by hand before linking have none.
type Account struct {
	ID                string
	UserID            string
	ExternalAccountID string
	ExternalItemID    string
	InstitutionName   string
	AccountName       string
	AccountNumber     string
	AccountType       string
	AccountSubtype    string
	Balance           Amount
	CurrencyCode      string
	Active            TriState
	LastSyncedAt      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive treats an unset flag as active. Only an explicit false deactivates
// an account.
func (a *Account) IsActive() bool {
	return a.Active != TriStateFalse
}

// Transaction is a single ledger entry. Amount uses the internal sign
// convention: positive is money in, negative is money out.
type Transaction struct {
	ID                       string
	UserID                   string
	AccountID                string
	ExternalTransactionID    string
	Amount                   Amount
	CurrencyCode             string
	Description              string
	MerchantName             string
	Date                     string
	Pending                  bool
	PaymentChannel           string
	CategoryPrimary          string
	CategoryDetailed         string
	CategoryOverridden       TriState
	TransactionType          TransactionType
	TransactionTypeOverridden TriState
	ProviderCategoryPrimary  string
	ProviderCategoryDetailed string
	CreatedAt                time.Time
	UpdatedAt                time.Time
}
