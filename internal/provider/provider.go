// Package provider defines the typed boundary to the external financial-data
// aggregator. Records expose narrow accessors with an ok flag instead of the
// aggregator's full wire types, so missing fields read as absent rather than
// erroring.
package provider

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moneymap/backend/internal/model"
)

// Client is the aggregator API surface the sync engine consumes.
type Client interface {
	// GetAccounts returns every account linked under the access token,
	// together with the item (institution link) metadata.
	GetAccounts(ctx context.Context, accessToken string) (*AccountsResult, error)
	// GetTransactions returns all transactions across the token's accounts
	// within [startDate, endDate], dates formatted as model.DateLayout.
	GetTransactions(ctx context.Context, accessToken, startDate, endDate string) ([]TransactionRecord, error)
}

// AccountsResult pairs the account list with its item metadata.
type AccountsResult struct {
	Accounts []AccountRecord
	Item     ItemRecord
}

// ItemRecord describes the institution link the accounts came from.
type ItemRecord interface {
	ItemID() (string, bool)
	InstitutionID() (string, bool)
	InstitutionName() (string, bool)
}

// AccountRecord is one external account as reported by the aggregator.
type AccountRecord interface {
	ExternalID() (string, bool)
	Name() (string, bool)
	OfficialName() (string, bool)
	Mask() (string, bool)
	Type() (string, bool)
	Subtype() (string, bool)
	AvailableBalance() (decimal.Decimal, bool)
	CurrentBalance() (decimal.Decimal, bool)
	CurrencyCode() (string, bool)
	UnofficialCurrencyCode() (string, bool)
}

// TransactionRecord is one external transaction as reported by the
// aggregator. Amount carries the provider's native sign convention.
type TransactionRecord interface {
	ExternalID() (string, bool)
	ExternalAccountID() (string, bool)
	Amount() (model.RawAmount, bool)
	Name() (string, bool)
	MerchantName() (string, bool)
	Date() (string, bool)
	CurrencyCode() (string, bool)
	UnofficialCurrencyCode() (string, bool)
	Pending() (bool, bool)
	PaymentChannel() (string, bool)
	CategoryPrimary() (string, bool)
	CategoryDetailed() (string, bool)
}
