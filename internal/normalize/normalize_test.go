package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moneymap/backend/internal/provider/providertest"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAccount_NamePrecedence(t *testing.T) {
	tests := []struct {
		name string
		rec  providertest.Account
		want string
	}{
		{
			name: "official name wins",
			rec: providertest.Account{
				Official:    providertest.Str("Premier Checking"),
				DisplayName: providertest.Str("Checking"),
				MaskValue:   providertest.Str("1234"),
			},
			want: "Premier Checking",
		},
		{
			name: "falls back to name",
			rec: providertest.Account{
				DisplayName: providertest.Str("Checking"),
				MaskValue:   providertest.Str("1234"),
			},
			want: "Checking",
		},
		{
			name: "falls back to mask",
			rec:  providertest.Account{MaskValue: providertest.Str("1234")},
			want: "Account 1234",
		},
		{
			name: "default when nothing present",
			rec:  providertest.Account{},
			want: "Unknown Account",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Account(tt.rec, "Test Bank")
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestAccount_BalancePrecedence(t *testing.T) {
	available := Account(providertest.Account{
		Available: providertest.Dec("100.50"),
		Current:   providertest.Dec("90.25"),
	}, "")
	assert.Equal(t, "100.5", available.Balance.String())

	current := Account(providertest.Account{Current: providertest.Dec("90.25")}, "")
	assert.Equal(t, "90.25", current.Balance.String())

	zero := Account(providertest.Account{}, "")
	assert.True(t, zero.Balance.IsZero())
}

func TestAccount_CurrencyPrecedence(t *testing.T) {
	iso := Account(providertest.Account{
		ISOCurrency: providertest.Str("AUD"),
		Unofficial:  providertest.Str("BTC"),
	}, "")
	assert.Equal(t, "AUD", iso.CurrencyCode)

	unofficial := Account(providertest.Account{Unofficial: providertest.Str("BTC")}, "")
	assert.Equal(t, "BTC", unofficial.CurrencyCode)

	def := Account(providertest.Account{}, "")
	assert.Equal(t, "USD", def.CurrencyCode)
}

func TestAccount_InvestmentSubtypeInference(t *testing.T) {
	tests := []struct {
		name        string
		accountName string
		institution string
		subtype     string
		want        string
	}{
		{"treasury in name", "Treasury Direct Holdings", "Test Bank", "savings", "INVESTMENT"},
		{"bond in name", "Municipal Bond Fund", "Test Bank", "savings", "INVESTMENT"},
		{"cd as word", "12 Month CD", "Test Bank", "savings", "INVESTMENT"},
		{"certificate of deposit", "Certificate of Deposit", "Test Bank", "savings", "INVESTMENT"},
		{"cd inside a word stays put", "McDonald's Rewards", "Test Bank", "checking", "checking"},
		{"plain checking untouched", "Everyday Checking", "Test Bank", "checking", "checking"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Account(providertest.Account{
				DisplayName:  providertest.Str(tt.accountName),
				SubtypeValue: providertest.Str(tt.subtype),
			}, tt.institution)
			assert.Equal(t, tt.want, got.Subtype)
		})
	}
}

func TestTransaction_SignNormalization(t *testing.T) {
	outflow := Transaction(providertest.Transaction{
		RawAmount: providertest.Dec("50.00"),
	}, testNow)
	assert.Equal(t, "-50", outflow.Amount.String())
	assert.True(t, outflow.Raw.IsDeposit())

	inflow := Transaction(providertest.Transaction{
		RawAmount: providertest.Dec("-50.00"),
	}, testNow)
	assert.Equal(t, "50", inflow.Amount.String())
	assert.False(t, inflow.Raw.IsDeposit())
}

func TestTransaction_DescriptionPrecedence(t *testing.T) {
	name := Transaction(providertest.Transaction{
		Description: providertest.Str("COFFEE SHOP #42"),
		Merchant:    providertest.Str("Coffee Shop"),
	}, testNow)
	assert.Equal(t, "COFFEE SHOP #42", name.Description)

	merchant := Transaction(providertest.Transaction{
		Merchant: providertest.Str("Coffee Shop"),
	}, testNow)
	assert.Equal(t, "Coffee Shop", merchant.Description)

	def := Transaction(providertest.Transaction{}, testNow)
	assert.Equal(t, "Transaction", def.Description)
}

func TestTransaction_Defaults(t *testing.T) {
	got := Transaction(providertest.Transaction{}, testNow)
	assert.Equal(t, "2024-03-01", got.Date)
	assert.Equal(t, "USD", got.CurrencyCode)
	assert.False(t, got.Pending)
	assert.True(t, got.Amount.IsZero())
}

func TestTransaction_ChannelLowercased(t *testing.T) {
	got := Transaction(providertest.Transaction{
		Channel: providertest.Str("ONLINE"),
	}, testNow)
	assert.Equal(t, "online", got.PaymentChannel)
}

func TestMerchantDisplayName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"POS WOOLWORTHS 1234567890", "Woolworths"},
		{"visa STARBUCKS #12345678", "Starbucks"},
		{"ACME WIDGETS PTY", "Acme Widgets"},
		{"JB HI-FI", "JB Hi-Fi"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, MerchantDisplayName(tt.raw))
		})
	}
}
