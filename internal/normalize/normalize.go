// Package normalize maps opaque aggregator records into internal model
// fields. Extraction failures never propagate: every field falls back to a
// documented default so one malformed record degrades instead of aborting the
// batch.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneymap/backend/internal/model"
	"github.com/moneymap/backend/internal/provider"
)

const (
	defaultAccountName = "Unknown Account"
	defaultDescription = "Transaction"
	defaultCurrency    = "USD"
)

// AccountFields is the normalized view of one external account record.
type AccountFields struct {
	Name          string
	AccountNumber string
	Type          string
	Subtype       string
	Balance       model.Amount
	CurrencyCode  string
}

// TransactionFields is the normalized view of one external transaction
// record. Raw keeps the provider-native signed amount for classification
// rules that depend on the pre-normalization sign.
type TransactionFields struct {
	Raw              model.RawAmount
	Amount           model.Amount
	Description      string
	MerchantName     string
	Date             string
	CurrencyCode     string
	Pending          bool
	PaymentChannel   string
	CategoryPrimary  string
	CategoryDetailed string
}

// investment instruments that providers commonly report under a depository
// type; matching on name text corrects the asserted subtype.
var investmentNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbonds?\b`),
	regexp.MustCompile(`(?i)\btreasury\b`),
	regexp.MustCompile(`(?i)\bt-bill\b`),
	regexp.MustCompile(`(?i)certificate of deposit`),
	regexp.MustCompile(`(?i)\bcd\b`),
}

// Account normalizes one external account record. institutionName
// participates in the investment-subtype inference alongside the account
// name.
func Account(rec provider.AccountRecord, institutionName string) AccountFields {
	var f AccountFields

	// Display name precedence: official name, name, "Account {mask}",
	// "Unknown Account".
	if official, ok := rec.OfficialName(); ok && official != "" {
		f.Name = official
	} else if name, ok := rec.Name(); ok && name != "" {
		f.Name = name
	} else if mask, ok := rec.Mask(); ok && mask != "" {
		f.Name = "Account " + mask
	} else {
		f.Name = defaultAccountName
	}

	if mask, ok := rec.Mask(); ok && mask != "" {
		f.AccountNumber = mask
	}

	if typ, ok := rec.Type(); ok {
		f.Type = typ
	}
	if subtype, ok := rec.Subtype(); ok {
		f.Subtype = subtype
	}

	// Balance precedence: available, current, zero.
	if available, ok := rec.AvailableBalance(); ok {
		f.Balance = model.AmountFromDecimal(available)
	} else if current, ok := rec.CurrentBalance(); ok {
		f.Balance = model.AmountFromDecimal(current)
	} else {
		f.Balance = model.AmountFromDecimal(decimal.Zero)
	}

	// Currency precedence: iso code, unofficial code, USD.
	if iso, ok := rec.CurrencyCode(); ok && iso != "" {
		f.CurrencyCode = iso
	} else if unofficial, ok := rec.UnofficialCurrencyCode(); ok && unofficial != "" {
		f.CurrencyCode = unofficial
	} else {
		f.CurrencyCode = defaultCurrency
	}

	// Providers report CDs, bonds and treasuries as plain depository
	// accounts; the name text is more trustworthy than the asserted subtype.
	searchText := f.Name + " " + institutionName
	for _, p := range investmentNamePatterns {
		if p.MatchString(searchText) {
			f.Subtype = "INVESTMENT"
			break
		}
	}

	return f
}

// Transaction normalizes one external transaction record. now supplies the
// date fallback so callers control the clock.
func Transaction(rec provider.TransactionRecord, now time.Time) TransactionFields {
	var f TransactionFields

	if raw, ok := rec.Amount(); ok {
		f.Raw = raw
	}
	// The provider reports everyday-account outflows as positive; internally
	// positive means income. Negate exactly once, here.
	f.Amount = f.Raw.Normalize()

	if name, ok := rec.Name(); ok && name != "" {
		f.Description = name
	} else if merchant, ok := rec.MerchantName(); ok && merchant != "" {
		f.Description = merchant
	} else {
		f.Description = defaultDescription
	}

	if merchant, ok := rec.MerchantName(); ok && merchant != "" {
		f.MerchantName = MerchantDisplayName(merchant)
	}

	if date, ok := rec.Date(); ok && date != "" {
		f.Date = date
	} else {
		f.Date = now.Format(model.DateLayout)
	}

	if iso, ok := rec.CurrencyCode(); ok && iso != "" {
		f.CurrencyCode = iso
	} else if unofficial, ok := rec.UnofficialCurrencyCode(); ok && unofficial != "" {
		f.CurrencyCode = unofficial
	} else {
		f.CurrencyCode = defaultCurrency
	}

	if pending, ok := rec.Pending(); ok {
		f.Pending = pending
	}
	if channel, ok := rec.PaymentChannel(); ok {
		f.PaymentChannel = strings.ToLower(channel)
	}
	if primary, ok := rec.CategoryPrimary(); ok {
		f.CategoryPrimary = primary
	}
	if detailed, ok := rec.CategoryDetailed(); ok {
		f.CategoryDetailed = detailed
	}

	return f
}
