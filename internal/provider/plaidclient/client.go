// Package plaidclient adapts the Plaid SDK to the provider interfaces.
package plaidclient

import (
	"context"
	"fmt"

	"github.com/plaid/plaid-go/v41/plaid"

	"github.com/moneymap/backend/internal/apperr"
	"github.com/moneymap/backend/internal/provider"
)

// pageSize is Plaid's maximum transactions-get page size.
const pageSize = 500

// Client implements provider.Client against the Plaid API.
type Client struct {
	api *plaid.APIClient
}

// New builds a Plaid-backed client for the given environment
// ("sandbox" or "production").
func New(clientID, secret, env string) (*Client, error) {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	configuration.AddDefaultHeader("PLAID-SECRET", secret)

	switch env {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	default:
		return nil, apperr.Invalid("invalid plaid environment: %s", env)
	}

	return &Client{api: plaid.NewAPIClient(configuration)}, nil
}

// GetAccounts fetches the token's accounts and item metadata.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*provider.AccountsResult, error) {
	request := plaid.NewAccountsGetRequest(accessToken)
	resp, _, err := c.api.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, classifyErr("accounts fetch failed", err)
	}

	accounts := resp.GetAccounts()
	records := make([]provider.AccountRecord, 0, len(accounts))
	for i := range accounts {
		records = append(records, accountRecord{base: &accounts[i]})
	}
	item := resp.GetItem()
	return &provider.AccountsResult{
		Accounts: records,
		Item:     itemRecord{item: &item},
	}, nil
}

// GetTransactions fetches every transaction in the window, paging by offset
// until the reported total is reached.
func (c *Client) GetTransactions(ctx context.Context, accessToken, startDate, endDate string) ([]provider.TransactionRecord, error) {
	var records []provider.TransactionRecord
	offset := int32(0)

	for {
		request := plaid.NewTransactionsGetRequest(accessToken, startDate, endDate)
		request.SetOptions(plaid.TransactionsGetRequestOptions{
			Count:  plaid.PtrInt32(pageSize),
			Offset: plaid.PtrInt32(offset),
		})

		resp, _, err := c.api.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
		if err != nil {
			return nil, classifyErr(fmt.Sprintf("transactions fetch failed at offset %d", offset), err)
		}

		page := resp.GetTransactions()
		for i := range page {
			records = append(records, transactionRecord{txn: &page[i]})
		}

		offset += int32(len(page))
		if offset >= resp.GetTotalTransactions() || len(page) == 0 {
			return records, nil
		}
	}
}

// retryable Plaid error types; everything else (bad token, invalid request)
// will not succeed on retry.
var retryableErrorTypes = map[string]bool{
	"RATE_LIMIT_EXCEEDED": true,
	"API_ERROR":           true,
	"INSTITUTION_ERROR":   true,
}

func classifyErr(msg string, err error) error {
	if plaidErr, convErr := plaid.ToPlaidError(err); convErr == nil {
		retryable := retryableErrorTypes[string(plaidErr.ErrorType)]
		return apperr.Upstream(fmt.Sprintf("%s: %s", msg, plaidErr.ErrorMessage), retryable, err)
	}
	// Transport-level failures are worth retrying.
	return apperr.Upstream(msg, true, err)
}
