package sync

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/moneymap/backend/internal/apperr"
	"github.com/moneymap/backend/internal/identity"
	"github.com/moneymap/backend/internal/model"
	"github.com/moneymap/backend/internal/normalize"
	"github.com/moneymap/backend/internal/provider"
	"github.com/moneymap/backend/internal/retry"
	"github.com/moneymap/backend/internal/store"
)

// AccountSyncer reconciles the aggregator's account list against stored
// accounts.
type AccountSyncer struct {
	client   provider.Client
	accounts store.AccountStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewAccountSyncer(client provider.Client, accounts store.AccountStore, log zerolog.Logger) *AccountSyncer {
	return &AccountSyncer{
		client:   client,
		accounts: accounts,
		log:      log,
		now:      time.Now,
	}
}

// Sync fetches the token's accounts and creates, updates, or re-links stored
// accounts to match. knownItemID is optional; when present it is checked
// against the item the provider actually returned. A single malformed record
// never aborts the run.
func (s *AccountSyncer) Sync(ctx context.Context, user model.User, accessToken, knownItemID string) (Result, error) {
	var result Result

	if strings.TrimSpace(user.ID) == "" {
		return result, apperr.Invalid("user id is required")
	}
	if strings.TrimSpace(accessToken) == "" {
		return result, apperr.Invalid("access token is required")
	}

	fetched, err := retry.Do(ctx, retry.DefaultUpstreamConfig, func(ctx context.Context) (*provider.AccountsResult, error) {
		return s.client.GetAccounts(ctx, accessToken)
	})
	if err != nil {
		return result, err
	}

	var itemID string
	if fetched.Item != nil {
		itemID, _ = fetched.Item.ItemID()
	}
	if knownItemID != "" && itemID != "" && knownItemID != itemID {
		s.log.Warn().
			Str("user_id", user.ID).
			Str("known_item_id", knownItemID).
			Str("item_id", itemID).
			Msg("item id mismatch, using provider's value")
	}
	if itemID == "" {
		itemID = knownItemID
	}

	institution := institutionName(fetched.Item)

	index, err := s.loadAccountIndex(ctx, user.ID)
	if err != nil {
		return result, err
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("institution", institution).
		Int("external_accounts", len(fetched.Accounts)).
		Msg("starting account sync")

	for _, rec := range fetched.Accounts {
		if err := s.syncOne(ctx, user, rec, institution, itemID, index); err != nil {
			result.Errors++
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("account record failed")
			continue
		}
		result.Synced++
	}

	s.log.Info().
		Str("user_id", user.ID).
		Int("synced", result.Synced).
		Int("errors", result.Errors).
		Msg("account sync complete")

	return result, nil
}

// accountIndex holds the user's accounts keyed for the two dedup paths:
// external id first, then account number + institution.
type accountIndex struct {
	byExternalID map[string]*model.Account
	byNumber     map[string]*model.Account
}

func numberKey(accountNumber, institution string) string {
	return accountNumber + ":" + strings.ToLower(institution)
}

func (s *AccountSyncer) loadAccountIndex(ctx context.Context, userID string) (*accountIndex, error) {
	existing, err := s.accounts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := &accountIndex{
		byExternalID: make(map[string]*model.Account),
		byNumber:     make(map[string]*model.Account),
	}
	for _, a := range existing {
		if a.ExternalAccountID != "" {
			index.byExternalID[a.ExternalAccountID] = a
		}
		if a.AccountNumber != "" {
			index.byNumber[numberKey(a.AccountNumber, a.InstitutionName)] = a
			// Manually-created accounts often lack an institution.
			index.byNumber[numberKey(a.AccountNumber, "")] = a
		}
	}
	return index, nil
}

func (s *AccountSyncer) syncOne(ctx context.Context, user model.User, rec provider.AccountRecord, institution, itemID string, index *accountIndex) error {
	externalID, ok := rec.ExternalID()
	if !ok || externalID == "" {
		return apperr.Record("external account id missing", nil)
	}

	fields := normalize.Account(rec, institution)

	// Path 1: already linked by external id.
	if acct, ok := index.byExternalID[externalID]; ok {
		return s.updateExisting(ctx, acct, fields, institution, itemID, index)
	}

	// Path 2: a pre-existing account with the same number at the same
	// institution is the same real-world account, even when the provider
	// handed out a fresh external id for it. The external id is backfilled
	// only when missing.
	if fields.AccountNumber != "" {
		acct, ok := index.byNumber[numberKey(fields.AccountNumber, institution)]
		if !ok {
			acct, ok = index.byNumber[numberKey(fields.AccountNumber, "")]
		}
		if ok {
			if acct.ExternalAccountID == "" {
				acct.ExternalAccountID = externalID
			}
			if acct.InstitutionName == "" {
				acct.InstitutionName = institution
			}
			s.log.Debug().
				Str("user_id", user.ID).
				Str("account_id", acct.ID).
				Str("external_account_id", externalID).
				Msg("matched account by number")
			if err := s.updateExisting(ctx, acct, fields, institution, itemID, index); err != nil {
				return err
			}
			index.byExternalID[externalID] = acct
			return nil
		}
	}

	// Path 3: create.
	return s.createAccount(ctx, user, fields, institution, itemID, externalID, index)
}

func (s *AccountSyncer) updateExisting(ctx context.Context, acct *model.Account, fields normalize.AccountFields, institution, itemID string, index *accountIndex) error {
	applyAccountFields(acct, fields)
	if itemID != "" {
		acct.ExternalItemID = itemID
	}
	if acct.InstitutionName == "" {
		acct.InstitutionName = institution
	}

	if err := s.saveAccount(ctx, acct); err != nil {
		return apperr.Record("account update failed", err)
	}
	if acct.AccountNumber != "" {
		index.byNumber[numberKey(acct.AccountNumber, acct.InstitutionName)] = acct
	}
	return nil
}

func (s *AccountSyncer) createAccount(ctx context.Context, user model.User, fields normalize.AccountFields, institution, itemID, externalID string, index *accountIndex) error {
	id, err := identity.AccountID(institution, externalID)
	if err != nil {
		// Identity derivation cannot block ingestion of an otherwise valid
		// record.
		id = identity.Random()
	}

	acct := &model.Account{
		ID:                id,
		UserID:            user.ID,
		ExternalAccountID: externalID,
		ExternalItemID:    itemID,
		InstitutionName:   institution,
		Active:            model.TriStateTrue,
	}
	applyAccountFields(acct, fields)

	outcome, err := s.accounts.SaveIfAbsent(ctx, acct)
	if err != nil {
		return apperr.Record("account create failed", err)
	}

	if outcome == store.AlreadyExists {
		// A concurrent sync won the race; its record is authoritative.
		winner, err := s.accounts.FindByExternalAccountID(ctx, user.ID, externalID)
		if errors.Is(err, store.ErrNotFound) {
			winner, err = s.accounts.FindByID(ctx, id)
		}
		if err != nil {
			return apperr.Record("conflict winner lookup failed", err)
		}
		return s.updateExisting(ctx, winner, fields, institution, itemID, index)
	}

	index.byExternalID[externalID] = acct
	if acct.AccountNumber != "" {
		index.byNumber[numberKey(acct.AccountNumber, acct.InstitutionName)] = acct
	}
	return nil
}

// saveAccount retries once after an optimistic-lock conflict, reapplying on
// top of the fresher record.
func (s *AccountSyncer) saveAccount(ctx context.Context, acct *model.Account) error {
	err := s.accounts.Save(ctx, acct)
	if !errors.Is(err, store.ErrStale) {
		return err
	}

	fresh, ferr := s.accounts.FindByID(ctx, acct.ID)
	if ferr != nil {
		return err
	}
	acct.UpdatedAt = fresh.UpdatedAt
	acct.CreatedAt = fresh.CreatedAt
	return s.accounts.Save(ctx, acct)
}

func applyAccountFields(acct *model.Account, fields normalize.AccountFields) {
	acct.AccountName = fields.Name
	if fields.AccountNumber != "" {
		acct.AccountNumber = fields.AccountNumber
	}
	if fields.Type != "" {
		acct.AccountType = fields.Type
	}
	if fields.Subtype != "" {
		acct.AccountSubtype = fields.Subtype
	}
	acct.Balance = fields.Balance
	acct.CurrencyCode = fields.CurrencyCode
	if acct.Active.Unset() {
		acct.Active = model.TriStateTrue
	}
}

func institutionName(item provider.ItemRecord) string {
	if item == nil {
		return ""
	}
	if name, ok := item.InstitutionName(); ok && name != "" {
		return name
	}
	if id, ok := item.InstitutionID(); ok {
		return id
	}
	return ""
}
