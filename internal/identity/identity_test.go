package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneymap/backend/internal/apperr"
)

func TestAccountID_Deterministic(t *testing.T) {
	a, err := AccountID("Test Bank", "plaid-acct-1")
	require.NoError(t, err)
	b, err := AccountID("Test Bank", "plaid-acct-1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAccountID_CaseAndWhitespaceInsensitive(t *testing.T) {
	a, err := AccountID("Test Bank", "Plaid-Acct-1")
	require.NoError(t, err)
	b, err := AccountID("  test bank ", "plaid-acct-1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAccountID_DifferentInputsDiffer(t *testing.T) {
	a, err := AccountID("Test Bank", "plaid-acct-1")
	require.NoError(t, err)
	b, err := AccountID("Test Bank", "plaid-acct-2")
	require.NoError(t, err)
	c, err := AccountID("Other Bank", "plaid-acct-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestAccountID_MissingExternalID(t *testing.T) {
	_, err := AccountID("Test Bank", "  ")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestAccountID_MissingInstitutionFallsBack(t *testing.T) {
	a, err := AccountID("", "plaid-acct-1")
	require.NoError(t, err)
	b, err := AccountID("", "plaid-acct-1")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	full, err := AccountID("Test Bank", "plaid-acct-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, full)
}

func TestTransactionID_Deterministic(t *testing.T) {
	a, err := TransactionID("Test Bank", "acct-uuid", "plaid-txn-1")
	require.NoError(t, err)
	b, err := TransactionID("Test Bank", "acct-uuid", "plaid-txn-1")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTransactionID_DistinctFromAccountNamespace(t *testing.T) {
	// Same external id must hash differently for accounts and transactions.
	a, err := AccountID("", "shared-id")
	require.NoError(t, err)
	b, err := TransactionID("", "", "shared-id")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTransactionID_FallbackWhenAccountMissing(t *testing.T) {
	a, err := TransactionID("Test Bank", "", "plaid-txn-1")
	require.NoError(t, err)
	b, err := TransactionID("", "acct-uuid", "plaid-txn-1")
	require.NoError(t, err)
	// Both degrade to the external-id-only derivation.
	assert.Equal(t, a, b)
}

func TestTransactionID_MissingExternalID(t *testing.T) {
	_, err := TransactionID("Test Bank", "acct-uuid", "")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.CodeOf(err))
}

func TestRandom_Unique(t *testing.T) {
	assert.NotEqual(t, Random(), Random())
}
