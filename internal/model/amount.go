package model

import "github.com/shopspring/decimal"

// RawAmount is an amount exactly as the aggregator reported it, before the
// sign convention has been applied. Keeping it as a distinct type stops raw
// values from leaking into stored records.
type RawAmount struct {
	d decimal.Decimal
}

// RawAmountFromFloat wraps a provider float. Aggregators report amounts as
// floats; converting to decimal at the boundary keeps the rest of the
// pipeline exact.
func RawAmountFromFloat(f float64) RawAmount {
	return RawAmount{d: decimal.NewFromFloat(f)}
}

func RawAmountFromDecimal(d decimal.Decimal) RawAmount {
	return RawAmount{d: d}
}

// IsDeposit reports whether the raw value is an inflow under the provider's
// convention (positive raw = money arriving at the institution).
func (r RawAmount) IsDeposit() bool {
	return r.d.IsPositive()
}

func (r RawAmount) Decimal() decimal.Decimal { return r.d }

// Normalize flips the sign once, producing the internal convention where
// positive means income and negative means spending.
func (r RawAmount) Normalize() Amount {
	return Amount{d: r.d.Neg()}
}

// Amount is a normalized monetary value: positive is income, negative is an
// expense.
type Amount struct {
	d decimal.Decimal
}

func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{d: d}, nil
}

func ZeroAmount() Amount { return Amount{} }

func (a Amount) Decimal() decimal.Decimal { return a.d }
func (a Amount) IsPositive() bool         { return a.d.IsPositive() }
func (a Amount) IsZero() bool             { return a.d.IsZero() }
func (a Amount) Equal(b Amount) bool      { return a.d.Equal(b.d) }
func (a Amount) String() string           { return a.d.String() }
