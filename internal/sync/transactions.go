package sync

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneymap/backend/internal/apperr"
	"github.com/moneymap/backend/internal/classify"
	"github.com/moneymap/backend/internal/identity"
	"github.com/moneymap/backend/internal/model"
	"github.com/moneymap/backend/internal/normalize"
	"github.com/moneymap/backend/internal/provider"
	"github.com/moneymap/backend/internal/retry"
	"github.com/moneymap/backend/internal/store"
)

const (
	// Accounts synced within this window are left alone.
	syncStaleness = 5 * time.Minute

	// How far back the first sync of an account reaches.
	backfillWindow = 2 * 365 * 24 * time.Hour
)

// TransactionSyncer ingests aggregator transactions for all of a user's
// linked accounts in one provider fetch.
type TransactionSyncer struct {
	client       provider.Client
	accounts     store.AccountStore
	transactions store.TransactionStore
	classifier   *classify.Classifier
	log          zerolog.Logger
	now          func() time.Time
}

func NewTransactionSyncer(client provider.Client, accounts store.AccountStore, transactions store.TransactionStore, classifier *classify.Classifier, log zerolog.Logger) *TransactionSyncer {
	return &TransactionSyncer{
		client:       client,
		accounts:     accounts,
		transactions: transactions,
		classifier:   classifier,
		log:          log,
		now:          time.Now,
	}
}

// Sync fetches transactions for every linked, active, stale account of the
// user and reconciles them into the store. Records are deduplicated by
// external id first, then by the (account, amount, date, description)
// composite key. Per-record failures are counted and skipped.
func (s *TransactionSyncer) Sync(ctx context.Context, user model.User, accessToken string) (Result, error) {
	var result Result

	if strings.TrimSpace(user.ID) == "" {
		return result, apperr.Invalid("user id is required")
	}
	if strings.TrimSpace(accessToken) == "" {
		return result, apperr.Invalid("access token is required")
	}

	now := s.now()

	all, err := s.accounts.FindByUserID(ctx, user.ID)
	if err != nil {
		return result, err
	}

	eligible := s.eligibleAccounts(all, now)
	if len(eligible) == 0 {
		s.log.Debug().Str("user_id", user.ID).Msg("no accounts due for transaction sync")
		return result, nil
	}

	startDate, endDate := s.fetchWindow(eligible, now)

	s.log.Info().
		Str("user_id", user.ID).
		Int("accounts", len(eligible)).
		Str("start_date", startDate).
		Str("end_date", endDate).
		Msg("starting transaction sync")

	records, err := retry.Do(ctx, retry.DefaultUpstreamConfig, func(ctx context.Context) ([]provider.TransactionRecord, error) {
		return s.client.GetTransactions(ctx, accessToken, startDate, endDate)
	})
	if err != nil {
		return result, err
	}

	byAccount := s.partitionRecords(user.ID, records)

	for _, acct := range eligible {
		recs := filterByDate(byAccount[acct.ExternalAccountID], acct.LastSyncedAt)
		acctResult := s.syncAccount(ctx, user, acct, recs)
		result.add(acctResult)

		acct.LastSyncedAt = now
		if err := s.saveAccountStamp(ctx, acct); err != nil {
			result.Errors++
			s.log.Error().Err(err).
				Str("user_id", user.ID).
				Str("account_id", acct.ID).
				Msg("failed to stamp account sync time")
		}
	}

	s.log.Info().
		Str("user_id", user.ID).
		Int("synced", result.Synced).
		Int("duplicates", result.Duplicates).
		Int("errors", result.Errors).
		Msg("transaction sync complete")

	return result, nil
}

// eligibleAccounts returns the accounts worth fetching for: linked to the
// provider, not deactivated by the user, and not synced within the staleness
// window.
func (s *TransactionSyncer) eligibleAccounts(accounts []*model.Account, now time.Time) []*model.Account {
	var out []*model.Account
	for _, a := range accounts {
		if a.ExternalAccountID == "" || !a.IsActive() {
			continue
		}
		if !a.LastSyncedAt.IsZero() && now.Sub(a.LastSyncedAt) < syncStaleness {
			continue
		}
		out = append(out, a)
	}
	return out
}

// fetchWindow picks one date range wide enough for every eligible account:
// from the earliest last-synced time (or the backfill horizon for accounts
// never synced) through today.
func (s *TransactionSyncer) fetchWindow(eligible []*model.Account, now time.Time) (string, string) {
	start := now
	for _, a := range eligible {
		if a.LastSyncedAt.IsZero() {
			start = now.Add(-backfillWindow)
			break
		}
		if a.LastSyncedAt.Before(start) {
			start = a.LastSyncedAt
		}
	}
	return start.Format(model.DateLayout), now.Format(model.DateLayout)
}

func (s *TransactionSyncer) partitionRecords(userID string, records []provider.TransactionRecord) map[string][]provider.TransactionRecord {
	byAccount := make(map[string][]provider.TransactionRecord)
	unattributed := 0
	for _, rec := range records {
		extAcct, ok := rec.ExternalAccountID()
		if !ok || extAcct == "" {
			unattributed++
			continue
		}
		byAccount[extAcct] = append(byAccount[extAcct], rec)
	}
	if unattributed > 0 {
		s.log.Warn().
			Str("user_id", userID).
			Int("count", unattributed).
			Msg("dropping transactions without an account id")
	}
	return byAccount
}

// filterByDate keeps records dated on or after the account's last sync.
// Dates are ISO strings so lexicographic compare is chronological; records
// without a date are kept rather than silently lost.
func filterByDate(records []provider.TransactionRecord, lastSyncedAt time.Time) []provider.TransactionRecord {
	if lastSyncedAt.IsZero() {
		return records
	}
	cutoff := lastSyncedAt.Format(model.DateLayout)

	var out []provider.TransactionRecord
	for _, rec := range records {
		date, ok := rec.Date()
		if ok && date != "" && date < cutoff {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *TransactionSyncer) syncAccount(ctx context.Context, user model.User, acct *model.Account, records []provider.TransactionRecord) Result {
	var result Result
	for _, rec := range records {
		outcome, err := s.syncOne(ctx, user, acct, rec)
		if err != nil {
			result.Errors++
			s.log.Error().Err(err).
				Str("user_id", user.ID).
				Str("account_id", acct.ID).
				Msg("transaction record failed")
			continue
		}
		if outcome == store.Created {
			result.Synced++
		} else {
			result.Duplicates++
		}
	}
	return result
}

func (s *TransactionSyncer) syncOne(ctx context.Context, user model.User, acct *model.Account, rec provider.TransactionRecord) (store.CreateOutcome, error) {
	fields := normalize.Transaction(rec, s.now())
	externalID, _ := rec.ExternalID()

	// Path 1: already ingested under this external id.
	if externalID != "" {
		existing, err := s.transactions.FindByExternalTransactionID(ctx, user.ID, externalID)
		if err == nil {
			return store.AlreadyExists, s.updateTransaction(ctx, existing, fields, acct)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return store.AlreadyExists, err
		}
	}

	// Path 2: a manually-entered or previously unlinked duplicate under the
	// composite key. A match already carrying a different external id is a
	// distinct real-world transaction, not a duplicate.
	match, err := s.transactions.FindByCompositeKey(ctx, user.ID, acct.ID, fields.Amount, fields.Date, fields.Description)
	switch {
	case err == nil:
		if match.ExternalTransactionID == "" || match.ExternalTransactionID == externalID {
			if externalID != "" {
				match.ExternalTransactionID = externalID
			}
			return store.AlreadyExists, s.updateTransaction(ctx, match, fields, acct)
		}
	case !errors.Is(err, store.ErrNotFound):
		return store.AlreadyExists, err
	}

	// Path 3: create.
	return s.createTransaction(ctx, user, acct, fields, externalID)
}

func (s *TransactionSyncer) createTransaction(ctx context.Context, user model.User, acct *model.Account, fields normalize.TransactionFields, externalID string) (store.CreateOutcome, error) {
	var id string
	if externalID != "" {
		derived, err := identity.TransactionID(acct.InstitutionName, acct.ID, externalID)
		if err != nil {
			derived = identity.Random()
		}
		id = derived
	} else {
		id = identity.Random()
	}

	txn := &model.Transaction{
		ID:                    id,
		UserID:                user.ID,
		AccountID:             acct.ID,
		ExternalTransactionID: externalID,
	}
	applyTransactionFields(txn, fields, acct, s.classifier)

	outcome, err := s.transactions.SaveIfExternalIDAbsent(ctx, txn)
	if err != nil {
		return store.AlreadyExists, apperr.Record("transaction create failed", err)
	}
	return outcome, nil
}

func (s *TransactionSyncer) updateTransaction(ctx context.Context, txn *model.Transaction, fields normalize.TransactionFields, acct *model.Account) error {
	applyTransactionFields(txn, fields, acct, s.classifier)

	err := s.transactions.Save(ctx, txn)
	if !errors.Is(err, store.ErrStale) {
		if err != nil {
			return apperr.Record("transaction update failed", err)
		}
		return nil
	}

	fresh, ferr := s.transactions.FindByID(ctx, txn.ID)
	if ferr != nil {
		return apperr.Record("transaction update failed", err)
	}
	applyTransactionFields(fresh, fields, acct, s.classifier)
	if err := s.transactions.Save(ctx, fresh); err != nil {
		return apperr.Record("transaction update failed", err)
	}
	*txn = *fresh
	return nil
}

// applyTransactionFields copies the normalized provider data onto the record
// and reclassifies it, except where the user has pinned a category or type.
func applyTransactionFields(txn *model.Transaction, fields normalize.TransactionFields, acct *model.Account, classifier *classify.Classifier) {
	txn.Amount = fields.Amount
	txn.CurrencyCode = fields.CurrencyCode
	txn.Description = fields.Description
	txn.MerchantName = fields.MerchantName
	txn.Date = fields.Date
	txn.Pending = fields.Pending
	txn.PaymentChannel = fields.PaymentChannel
	txn.ProviderCategoryPrimary = fields.CategoryPrimary
	txn.ProviderCategoryDetailed = fields.CategoryDetailed

	if txn.CategoryOverridden != model.TriStateTrue {
		res := classifier.Category(classify.CategoryInput{
			ProviderPrimary:  fields.CategoryPrimary,
			ProviderDetailed: fields.CategoryDetailed,
			MerchantName:     fields.MerchantName,
			Description:      fields.Description,
			PaymentChannel:   fields.PaymentChannel,
			Raw:              fields.Raw,
			Account:          acct,
		})
		txn.CategoryPrimary = res.Primary
		txn.CategoryDetailed = res.Detailed
		txn.CategoryOverridden = model.TriStateOf(res.Overridden)
	}

	if txn.TransactionTypeOverridden != model.TriStateTrue {
		txn.TransactionType = classifier.TransactionType(acct, txn.CategoryPrimary, txn.CategoryDetailed, txn.Amount)
		if txn.TransactionTypeOverridden.Unset() {
			txn.TransactionTypeOverridden = model.TriStateFalse
		}
	}
}

// saveAccountStamp persists last_synced_at, retrying once if another writer
// touched the account mid-run.
func (s *TransactionSyncer) saveAccountStamp(ctx context.Context, acct *model.Account) error {
	err := s.accounts.Save(ctx, acct)
	if !errors.Is(err, store.ErrStale) {
		return err
	}

	fresh, ferr := s.accounts.FindByID(ctx, acct.ID)
	if ferr != nil {
		return err
	}
	fresh.LastSyncedAt = acct.LastSyncedAt
	return s.accounts.Save(ctx, fresh)
}
