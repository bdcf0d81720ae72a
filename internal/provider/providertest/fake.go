// Package providertest provides an in-memory aggregator client for tests.
package providertest

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/moneymap/backend/internal/model"
	"github.com/moneymap/backend/internal/provider"
)

// Item is a struct-backed provider.ItemRecord.
type Item struct {
	ID          *string
	Institution *string
	InstName    *string
}

func (i Item) ItemID() (string, bool)          { return strOpt(i.ID) }
func (i Item) InstitutionID() (string, bool)   { return strOpt(i.Institution) }
func (i Item) InstitutionName() (string, bool) { return strOpt(i.InstName) }

// Account is a struct-backed provider.AccountRecord. Nil pointer fields read
// as absent.
type Account struct {
	ID           *string
	DisplayName  *string
	Official     *string
	MaskValue    *string
	TypeValue    *string
	SubtypeValue *string
	Available    *decimal.Decimal
	Current      *decimal.Decimal
	ISOCurrency  *string
	Unofficial   *string
}

func (a Account) ExternalID() (string, bool)   { return strOpt(a.ID) }
func (a Account) Name() (string, bool)         { return strOpt(a.DisplayName) }
func (a Account) OfficialName() (string, bool) { return strOpt(a.Official) }
func (a Account) Mask() (string, bool)         { return strOpt(a.MaskValue) }
func (a Account) Type() (string, bool)         { return strOpt(a.TypeValue) }
func (a Account) Subtype() (string, bool)      { return strOpt(a.SubtypeValue) }

func (a Account) AvailableBalance() (decimal.Decimal, bool) { return decOpt(a.Available) }
func (a Account) CurrentBalance() (decimal.Decimal, bool)   { return decOpt(a.Current) }
func (a Account) CurrencyCode() (string, bool)              { return strOpt(a.ISOCurrency) }
func (a Account) UnofficialCurrencyCode() (string, bool)    { return strOpt(a.Unofficial) }

// Transaction is a struct-backed provider.TransactionRecord.
type Transaction struct {
	ID          *string
	AccountID   *string
	RawAmount   *decimal.Decimal
	Description *string
	Merchant    *string
	DateValue   *string
	ISOCurrency *string
	Unofficial  *string
	IsPending   *bool
	Channel     *string
	Primary     *string
	Detailed    *string
}

func (t Transaction) ExternalID() (string, bool)        { return strOpt(t.ID) }
func (t Transaction) ExternalAccountID() (string, bool) { return strOpt(t.AccountID) }

func (t Transaction) Amount() (model.RawAmount, bool) {
	if t.RawAmount == nil {
		return model.RawAmount{}, false
	}
	return model.RawAmountFromDecimal(*t.RawAmount), true
}

func (t Transaction) Name() (string, bool)                   { return strOpt(t.Description) }
func (t Transaction) MerchantName() (string, bool)           { return strOpt(t.Merchant) }
func (t Transaction) Date() (string, bool)                   { return strOpt(t.DateValue) }
func (t Transaction) CurrencyCode() (string, bool)           { return strOpt(t.ISOCurrency) }
func (t Transaction) UnofficialCurrencyCode() (string, bool) { return strOpt(t.Unofficial) }

func (t Transaction) Pending() (bool, bool) {
	if t.IsPending == nil {
		return false, false
	}
	return *t.IsPending, true
}

func (t Transaction) PaymentChannel() (string, bool)   { return strOpt(t.Channel) }
func (t Transaction) CategoryPrimary() (string, bool)  { return strOpt(t.Primary) }
func (t Transaction) CategoryDetailed() (string, bool) { return strOpt(t.Detailed) }

// Client is a canned-response provider.Client recording its calls.
type Client struct {
	AccountsResult  *provider.AccountsResult
	AccountsErr     error
	Transactions    []provider.TransactionRecord
	TransactionsErr error

	AccountsCalls     int
	TransactionsCalls int
	LastStartDate     string
	LastEndDate       string
}

func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*provider.AccountsResult, error) {
	c.AccountsCalls++
	if c.AccountsErr != nil {
		return nil, c.AccountsErr
	}
	if c.AccountsResult != nil {
		return c.AccountsResult, nil
	}
	return &provider.AccountsResult{Item: Item{}}, nil
}

func (c *Client) GetTransactions(ctx context.Context, accessToken, startDate, endDate string) ([]provider.TransactionRecord, error) {
	c.TransactionsCalls++
	c.LastStartDate = startDate
	c.LastEndDate = endDate
	if c.TransactionsErr != nil {
		return nil, c.TransactionsErr
	}
	return c.Transactions, nil
}

// Str, Dec and Bool build optional field pointers for literals.
func Str(s string) *string            { return &s }
func Bool(b bool) *bool               { return &b }
func Dec(s string) *decimal.Decimal { d := decimal.RequireFromString(s); return &d }

func strOpt(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

func decOpt(d *decimal.Decimal) (decimal.Decimal, bool) {
	if d == nil {
		return decimal.Decimal{}, false
	}
	return *d, true
}
