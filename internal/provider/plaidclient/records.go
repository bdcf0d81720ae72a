package plaidclient

import (
	"github.com/plaid/plaid-go/v41/plaid"
	"github.com/shopspring/decimal"

	"github.com/moneymap/backend/internal/model"
)

type itemRecord struct {
	item *plaid.Item
}

func (r itemRecord) ItemID() (string, bool) {
	v, ok := r.item.GetItemIdOk()
	return deref(v), ok
}

func (r itemRecord) InstitutionID() (string, bool) {
	v, ok := r.item.GetInstitutionIdOk()
	return deref(v), ok
}

func (r itemRecord) InstitutionName() (string, bool) {
	v, ok := r.item.GetInstitutionNameOk()
	return deref(v), ok
}

type accountRecord struct {
	base *plaid.AccountBase
}

func (r accountRecord) ExternalID() (string, bool) {
	v, ok := r.base.GetAccountIdOk()
	return deref(v), ok
}

func (r accountRecord) Name() (string, bool) {
	v, ok := r.base.GetNameOk()
	return deref(v), ok
}

func (r accountRecord) OfficialName() (string, bool) {
	v, ok := r.base.GetOfficialNameOk()
	return deref(v), ok
}

func (r accountRecord) Mask() (string, bool) {
	v, ok := r.base.GetMaskOk()
	return deref(v), ok
}

func (r accountRecord) Type() (string, bool) {
	v, ok := r.base.GetTypeOk()
	if !ok || v == nil {
		return "", false
	}
	return string(*v), true
}

func (r accountRecord) Subtype() (string, bool) {
	v, ok := r.base.GetSubtypeOk()
	if !ok || v == nil {
		return "", false
	}
	return string(*v), true
}

func (r accountRecord) AvailableBalance() (decimal.Decimal, bool) {
	balances, ok := r.base.GetBalancesOk()
	if !ok || balances == nil {
		return decimal.Decimal{}, false
	}
	v, ok := balances.GetAvailableOk()
	if !ok || v == nil {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(*v), true
}

func (r accountRecord) CurrentBalance() (decimal.Decimal, bool) {
	balances, ok := r.base.GetBalancesOk()
	if !ok || balances == nil {
		return decimal.Decimal{}, false
	}
	v, ok := balances.GetCurrentOk()
	if !ok || v == nil {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(*v), true
}

func (r accountRecord) CurrencyCode() (string, bool) {
	balances, ok := r.base.GetBalancesOk()
	if !ok || balances == nil {
		return "", false
	}
	v, ok := balances.GetIsoCurrencyCodeOk()
	return deref(v), ok && v != nil
}

func (r accountRecord) UnofficialCurrencyCode() (string, bool) {
	balances, ok := r.base.GetBalancesOk()
	if !ok || balances == nil {
		return "", false
	}
	v, ok := balances.GetUnofficialCurrencyCodeOk()
	return deref(v), ok && v != nil
}

type transactionRecord struct {
	txn *plaid.Transaction
}

func (r transactionRecord) ExternalID() (string, bool) {
	v, ok := r.txn.GetTransactionIdOk()
	return deref(v), ok
}

func (r transactionRecord) ExternalAccountID() (string, bool) {
	v, ok := r.txn.GetAccountIdOk()
	return deref(v), ok
}

func (r transactionRecord) Amount() (model.RawAmount, bool) {
	v, ok := r.txn.GetAmountOk()
	if !ok || v == nil {
		return model.RawAmount{}, false
	}
	return model.RawAmountFromFloat(*v), true
}

func (r transactionRecord) Name() (string, bool) {
	v, ok := r.txn.GetNameOk()
	return deref(v), ok
}

func (r transactionRecord) MerchantName() (string, bool) {
	v, ok := r.txn.GetMerchantNameOk()
	return deref(v), ok && v != nil
}

func (r transactionRecord) Date() (string, bool) {
	v, ok := r.txn.GetDateOk()
	return deref(v), ok
}

func (r transactionRecord) CurrencyCode() (string, bool) {
	v, ok := r.txn.GetIsoCurrencyCodeOk()
	return deref(v), ok && v != nil
}

func (r transactionRecord) UnofficialCurrencyCode() (string, bool) {
	v, ok := r.txn.GetUnofficialCurrencyCodeOk()
	return deref(v), ok && v != nil
}

func (r transactionRecord) Pending() (bool, bool) {
	v, ok := r.txn.GetPendingOk()
	if !ok || v == nil {
		return false, false
	}
	return *v, true
}

func (r transactionRecord) PaymentChannel() (string, bool) {
	v, ok := r.txn.GetPaymentChannelOk()
	return deref(v), ok
}

func (r transactionRecord) CategoryPrimary() (string, bool) {
	pfc, ok := r.txn.GetPersonalFinanceCategoryOk()
	if !ok || pfc == nil {
		return "", false
	}
	v, ok := pfc.GetPrimaryOk()
	return deref(v), ok
}

func (r transactionRecord) CategoryDetailed() (string, bool) {
	pfc, ok := r.txn.GetPersonalFinanceCategoryOk()
	if !ok || pfc == nil {
		return "", false
	}
	v, ok := pfc.GetDetailedOk()
	return deref(v), ok
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
