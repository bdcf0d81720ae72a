// Package classify determines transaction categories and types from provider
// categories, merchant text, payment channel, and account context.
package classify

import (
	"strings"

	"github.com/moneymap/backend/internal/model"
)

// Source identifies which signal produced a category.
type Source string

const (
	// SourceProvider means the result matches the provider's own category.
	SourceProvider Source = "provider"
	// SourceMerchant means a merchant/description keyword tier decided it.
	SourceMerchant Source = "merchant"
	// SourceKeyword means an investment text keyword decided it.
	SourceKeyword Source = "keyword"
	// SourceChannel means the payment-channel signal decided it.
	SourceChannel Source = "channel"
	// SourceAccount means an account-specific rule (HSA) decided it.
	SourceAccount Source = "account"
	// SourceDefault means no signal matched and the fallback applied.
	SourceDefault Source = "default"
)

// CategoryResult is the resolved category for one transaction. Overridden
// reports whether the result diverges from the provider's own category and so
// must survive later resyncs.
type CategoryResult struct {
	Primary    string
	Detailed   string
	Source     Source
	Confidence float64
	Overridden bool
}

// CategoryInput carries every signal the category rules consume. Raw is the
// provider-native signed amount; the deposit/debit rules predate sign
// normalization.
type CategoryInput struct {
	ProviderPrimary  string
	ProviderDetailed string
	MerchantName     string
	Description      string
	PaymentChannel   string
	Raw              model.RawAmount
	Account          *model.Account
}

// Classifier is stateless; a single instance serves all syncs.
type Classifier struct{}

func New() *Classifier {
	return &Classifier{}
}

// Category resolves the primary/detailed category for a transaction. Callers
// must skip the call entirely when the transaction's category is
// user-overridden.
func (c *Classifier) Category(in CategoryInput) CategoryResult {
	res := c.mapCategory(in)

	if isHSA(in.Account) {
		return c.applyHSARules(in, res)
	}
	return res
}

// mapCategory runs the generic precedence: provider detailed map, provider
// primary map, ACH credit signal, investment keywords, merchant keyword
// tiers, fallback buckets.
func (c *Classifier) mapCategory(in CategoryInput) CategoryResult {
	var primary, detailed string
	source := SourceDefault
	confidence := 0.3
	overridden := false

	// Provider detailed category is the most specific provider signal; a hit
	// sets the primary too so the pair stays consistent.
	if in.ProviderDetailed != "" {
		if mapped, ok := detailedCategoryMap[strings.ToUpper(in.ProviderDetailed)]; ok {
			detailed = mapped
			primary = mapped
			source = SourceProvider
			confidence = 0.9
		}
	}

	if primary == "" && in.ProviderPrimary != "" {
		upper := strings.ToUpper(in.ProviderPrimary)
		if upper == "UNKNOWN_CATEGORY" {
			primary = "other"
		} else if mapped, ok := primaryCategoryMap[upper]; ok {
			primary = mapped
			source = SourceProvider
			confidence = 0.9
		} else {
			// Unknown provider category passes through as-is.
			primary = in.ProviderPrimary
			source = SourceProvider
			confidence = 0.5
		}
	}

	combined := strings.ToLower(strings.TrimSpace(in.MerchantName + " " + in.Description))

	// ACH credits are income deposits no matter what category the provider
	// asserted.
	if in.Raw.IsDeposit() && isACHCredit(in.PaymentChannel, combined) {
		return CategoryResult{
			Primary:    "income",
			Detailed:   "deposit",
			Source:     SourceChannel,
			Confidence: 0.85,
			Overridden: true,
		}
	}

	// Investment text runs even when the provider mapped something: CD
	// deposits commonly arrive categorized as entertainment.
	if containsAny(combined, investmentTextKeywords) {
		detailed = "investment"
		if primary == "" || primary == "entertainment" {
			primary = "investment"
		}
		source = SourceKeyword
		confidence = 0.8
		overridden = true
	}

	if detailed == "" {
		if tier, ok := merchantTier(combined); ok {
			detailed = tier
			source = SourceMerchant
			confidence = 0.7
			overridden = true
		}
	}

	if primary == "" {
		if in.ProviderPrimary == "" && in.ProviderDetailed == "" &&
			in.MerchantName == "" && in.Description == "" {
			primary = "UNKNOWN_CATEGORY"
		} else {
			primary = "other"
		}
	}
	if detailed == "" {
		detailed = primary
	}

	return CategoryResult{
		Primary:    primary,
		Detailed:   detailed,
		Source:     source,
		Confidence: confidence,
		Overridden: overridden,
	}
}

// applyHSARules adjusts the generic result for health savings accounts. The
// deposit/debit split uses the raw provider sign: the institution reports
// contributions as positive regardless of the internal convention.
func (c *Classifier) applyHSARules(in CategoryInput, generic CategoryResult) CategoryResult {
	if in.Raw.IsDeposit() {
		// Contributions are investments, and that is a system decision, not
		// a user override.
		return CategoryResult{
			Primary:    "investment",
			Detailed:   "otherInvestment",
			Source:     SourceAccount,
			Confidence: 0.9,
			Overridden: false,
		}
	}

	// Debits keep a specific generic category; only the empty and "other"
	// buckets collapse to healthcare.
	if generic.Primary == "" || generic.Primary == "other" || generic.Primary == "UNKNOWN_CATEGORY" {
		return CategoryResult{
			Primary:    "healthcare",
			Detailed:   "healthcare",
			Source:     SourceAccount,
			Confidence: 0.8,
			Overridden: generic.Overridden,
		}
	}
	return generic
}

// TransactionType buckets a transaction once its category is final. amount is
// the normalized amount (positive = income). Callers must skip the call when
// the transaction's type is user-overridden.
func (c *Classifier) TransactionType(account *model.Account, categoryPrimary, categoryDetailed string, amount model.Amount) model.TransactionType {
	primary := strings.ToLower(categoryPrimary)
	detailed := strings.ToLower(categoryDetailed)

	// ACH credits with a deposit category are income even on investment
	// accounts, so this runs before the account checks.
	if primary == "income" && detailed == "deposit" {
		return model.TransactionTypeIncome
	}

	if account != nil && isInvestmentAccount(account.AccountType, account.AccountSubtype) {
		return model.TransactionTypeInvestment
	}

	if isInvestmentCategory(primary, detailed) {
		return model.TransactionTypeInvestment
	}

	if primary == "income" {
		return model.TransactionTypeIncome
	}

	if incomeDetailedCategories[detailed] {
		return model.TransactionTypeIncome
	}

	if primary == "transfer" {
		return model.TransactionTypeTransfer
	}

	if amount.IsPositive() {
		if primary == "" || primary == "other" || !isExpenseCategory(primary, detailed) {
			return model.TransactionTypeIncome
		}
	}

	return model.TransactionTypeExpense
}

func isHSA(account *model.Account) bool {
	if account == nil {
		return false
	}
	for _, v := range []string{account.AccountType, account.AccountSubtype} {
		switch strings.ToLower(v) {
		case "hsa", "healthsavingsaccount":
			return true
		}
	}
	return false
}

func isACHCredit(channel, combined string) bool {
	ch := strings.ToLower(channel)
	if strings.Contains(ch, "ach") {
		return true
	}
	if strings.Contains(combined, "direct deposit") {
		return true
	}
	return strings.Contains(combined, "ach") &&
		(strings.Contains(combined, "credit") || strings.Contains(combined, "deposit"))
}

func merchantTier(combined string) (string, bool) {
	switch {
	case containsAny(combined, diningKeywords):
		return "dining", true
	case containsAny(combined, groceriesKeywords):
		return "groceries", true
	case containsAny(combined, transportationKeywords):
		return "transportation", true
	case containsAny(combined, subscriptionKeywords):
		return "subscriptions", true
	}
	return "", false
}

func isInvestmentAccount(accountType, accountSubtype string) bool {
	typeLower := strings.ToLower(accountType)
	subtypeLower := strings.ToLower(accountSubtype)
	if typeLower == "" && subtypeLower == "" {
		return false
	}
	return containsAny(typeLower, investmentAccountKeywords) ||
		containsAny(subtypeLower, investmentAccountKeywords)
}

func isInvestmentCategory(primary, detailed string) bool {
	if primary == "investment" {
		return true
	}
	switch detailed {
	case "cd", "stocks", "bonds", "treasury", "tbills", "municipalbonds",
		"mutualfunds", "etf", "ira", "fourzeroonek", "fivetwonine",
		"otherinvestment", "preciousmetals", "crypto", "moneymarket":
		return true
	}
	return false
}

func isExpenseCategory(primary, detailed string) bool {
	return expenseCategories[primary] || expenseCategories[detailed]
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
