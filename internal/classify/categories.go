package classify

// primaryCategoryMap maps provider primary categories to internal ones.
var primaryCategoryMap = map[string]string{
	"FOOD_AND_DRINK":            "dining",
	"GENERAL_MERCHANDISE":       "shopping",
	"GOVERNMENT_AND_NON_PROFIT": "other",
	"HOME_IMPROVEMENT":          "other",
	"MEDICAL":                   "healthcare",
	"PERSONAL_CARE":             "other",
	"TRANSPORTATION":            "transportation",
	"TRAVEL":                    "travel",
	"RENT_AND_UTILITIES":        "rent",
	"ENTERTAINMENT":             "entertainment",
	"GENERAL_SERVICES":          "utilities",
	"INCOME":                    "income",
	"TRANSFER_IN":               "income",
	"TRANSFER_OUT":              "other",
	"LOAN_PAYMENTS":             "other",
	"BANK_FEES":                 "other",
	"GAS_STATIONS":              "transportation",
	"GROCERIES":                 "groceries",
	"SUBSCRIPTIONS":             "subscriptions",
	"INVESTMENT":                "investment",
}

// detailedCategoryMap maps provider detailed categories to internal ones.
// More specific than the primary map, so it is consulted first.
var detailedCategoryMap = map[string]string{
	// Food and drink
	"RESTAURANTS":      "dining",
	"FAST_FOOD":        "dining",
	"COFFEE_SHOPS":     "dining",
	"FOOD_DELIVERY":    "dining",
	"ALCOHOL_AND_BARS": "dining",
	"GROCERIES":        "groceries",
	"SUPERMARKETS":     "groceries",

	// Transportation
	"GAS_STATIONS":          "transportation",
	"PUBLIC_TRANSPORTATION": "transportation",
	"TAXI":                  "transportation",
	"RIDE_SHARE":            "transportation",
	"PARKING":               "transportation",
	"TOLLS":                 "transportation",

	// Shopping
	"GENERAL_MERCHANDISE":      "shopping",
	"ONLINE_MARKETPLACES":      "shopping",
	"DEPARTMENT_STORES":        "shopping",
	"CLOTHING_AND_ACCESSORIES": "shopping",
	"ELECTRONICS":              "shopping",

	// Entertainment
	"ENTERTAINMENT":         "entertainment",
	"MOVIES_AND_DVDS":       "entertainment",
	"MUSIC_AND_AUDIO":       "subscriptions",
	"GAMES_AND_GAMING":      "entertainment",
	"SPORTS_AND_RECREATION": "entertainment",

	// Subscriptions
	"SOFTWARE_SUBSCRIPTIONS": "subscriptions",
	"STREAMING_SERVICES":     "subscriptions",
	"MUSIC_STREAMING":        "subscriptions",
	"NEWS_SUBSCRIPTIONS":     "subscriptions",
	"GAMING_SUBSCRIPTIONS":   "subscriptions",

	// Travel
	"HOTELS_AND_ACCOMMODATIONS": "travel",
	"AIR_TRAVEL":                "travel",
	"RENTAL_CARS":               "travel",
	"TRAVEL_AGENCIES":           "travel",

	// Rent and utilities
	"RENT":               "rent",
	"UTILITIES":          "utilities",
	"ELECTRICITY":        "utilities",
	"WATER":              "utilities",
	"GAS_AND_HEATING":    "utilities",
	"INTERNET_AND_PHONE": "utilities",
	"CABLE":              "utilities",

	// Income
	"SALARY":            "income",
	"PAYROLL":           "income",
	"DIVIDENDS":         "income",
	"INTEREST_EARNED":   "income",
	"GIG_ECONOMY":       "income",
	"RENTAL_INCOME":     "income",
	"INVESTMENT_INCOME": "income",

	// Healthcare
	"PRIMARY_CARE":     "healthcare",
	"DENTAL_CARE":      "healthcare",
	"PHARMACIES":       "healthcare",
	"HOSPITALS":        "healthcare",
	"HEALTH_INSURANCE": "healthcare",

	// Investment
	"CD_DEPOSIT":             "investment",
	"CERTIFICATE_OF_DEPOSIT": "investment",
	"STOCKS":                 "investment",
	"BONDS":                  "investment",
	"MUTUAL_FUNDS":           "investment",
	"ETF":                    "investment",
	"BROKERAGE":              "investment",
	"RETIREMENT":             "investment",
}

// investmentTextKeywords must be checked before the merchant tiers: CD
// deposits and brokerage activity otherwise land in entertainment or dining.
var investmentTextKeywords = []string{
	"cd deposit",
	"certificate of deposit",
	"cd maturity",
	"cd interest",
	" stock",
	" bond",
	"mutual fund",
	" etf",
	"401k",
	" ira",
	"retirement",
	"brokerage",
}

var diningKeywords = []string{
	"mcdonald", "starbucks", "kfc", "burger", "pizza", "coffee", "restaurant", "dining",
}

var groceriesKeywords = []string{
	"walmart", "target", "kroger", "supermarket", "grocer",
}

var transportationKeywords = []string{
	"uber", "lyft", "taxi", "gas", "fuel",
}

var subscriptionKeywords = []string{
	"netflix", "spotify", "subscription", "monthly", "annual",
}

// investmentAccountKeywords mark an account (type or subtype text) as
// investment-bearing.
var investmentAccountKeywords = []string{
	"investment", "401k", "401(k)", "ira", "hsa", "529", "certificate", "cd",
	"bond", "treasury", "money market", "moneymarket", "brokerage", "retirement",
}

// incomeDetailedCategories are detailed categories that imply income
// regardless of sign.
var incomeDetailedCategories = map[string]bool{
	"interest":    true,
	"salary":      true,
	"dividend":    true,
	"stipend":     true,
	"rentincome":  true,
	"tips":        true,
	"otherincome": true,
	"deposit":     true,
}

// expenseCategories are the buckets that clearly mark spending.
var expenseCategories = map[string]bool{
	"groceries":      true,
	"dining":         true,
	"transportation": true,
	"shopping":       true,
	"entertainment":  true,
	"utilities":      true,
	"rent":           true,
	"healthcare":     true,
	"travel":         true,
	"subscriptions":  true,
	"other":          true,
}
