// Package identity derives stable record identifiers from business keys, so
// repeated syncs of the same external record resolve to the same internal id
// without a prior lookup.
package identity

import (
	"strings"

	"github.com/google/uuid"

	"github.com/moneymap/backend/internal/apperr"
)

// Namespaces for name-based UUIDs. One per record kind, so an account and a
// transaction hashed from the same business key never collide.
var (
	accountNamespace     = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	transactionNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")
)

// AccountID derives a deterministic account id from institution name and the
// aggregator's account id. The external id is mandatory; when the institution
// is missing the id is derived from the external id alone, still
// deterministically.
func AccountID(institutionName, externalAccountID string) (string, error) {
	if strings.TrimSpace(externalAccountID) == "" {
		return "", apperr.Invalid("external account id is required")
	}
	if strings.TrimSpace(institutionName) == "" {
		return derive(accountNamespace, externalAccountID), nil
	}
	return derive(accountNamespace, institutionName, externalAccountID), nil
}

// TransactionID derives a deterministic transaction id from institution,
// internal account id, and the aggregator's transaction id. The external id is
// mandatory; missing institution or account id falls back to hashing the
// external id alone.
func TransactionID(institutionName, accountID, externalTransactionID string) (string, error) {
	if strings.TrimSpace(externalTransactionID) == "" {
		return "", apperr.Invalid("external transaction id is required")
	}
	if strings.TrimSpace(institutionName) == "" || strings.TrimSpace(accountID) == "" {
		return derive(transactionNamespace, externalTransactionID), nil
	}
	return derive(transactionNamespace, institutionName, accountID, externalTransactionID), nil
}

// Random returns a random id for records with no external identity at all.
func Random() string {
	return uuid.NewString()
}

// derive hashes trimmed, lowercased parts joined with ":" into a name-based
// UUID under the given namespace. Lowercasing keeps "Chase" and "chase" on the
// same id.
func derive(ns uuid.UUID, parts ...string) string {
	canonical := make([]string, len(parts))
	for i, p := range parts {
		canonical[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return uuid.NewSHA1(ns, []byte(strings.Join(canonical, ":"))).String()
}
