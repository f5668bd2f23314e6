package reports

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

// BalanceRow models an account with debit/credit sums aggregated from live
// lines on live entries.
type BalanceRow struct {
	AccountID     int64                `json:"account_id"`
	Code          string               `json:"code"`
	Name          string               `json:"name"`
	Type          ledger.AccountType   `json:"type"`
	NormalBalance ledger.NormalBalance `json:"normal_balance"`
	ParentID      *int64               `json:"parent_id,omitempty"`
	IsPostable    bool                 `json:"is_postable"`
	PLCategory    *string              `json:"pl_category,omitempty"`
	Debit         decimal.Decimal      `json:"debit"`
	Credit        decimal.Decimal      `json:"credit"`
}

// Balance nets the sums against the account's normal balance, producing a
// signed balance that is positive on the conventional side.
func (r BalanceRow) Balance() decimal.Decimal {
	if r.NormalBalance == ledger.NormalBalanceDebit {
		return r.Debit.Sub(r.Credit)
	}
	return r.Credit.Sub(r.Debit)
}

// GroupKey returns a key used for grouping trial balance rows.
func (r BalanceRow) GroupKey() string {
	if idx := strings.Index(r.Code, "."); idx > 0 {
		return r.Code[:idx]
	}
	if len(r.Code) >= 2 {
		return r.Code[:2]
	}
	return r.Code
}

// TrialBalanceAccount represents a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// TrialBalanceGroup aggregates accounts for presentation.
type TrialBalanceGroup struct {
	Key      string                `json:"key"`
	Accounts []TrialBalanceAccount `json:"accounts"`
	Debit    decimal.Decimal       `json:"debit"`
	Credit   decimal.Decimal       `json:"credit"`
}

// TrialBalance is the final structure returned to callers.
type TrialBalance struct {
	Groups      []TrialBalanceGroup `json:"groups"`
	TotalDebit  decimal.Decimal     `json:"total_debit"`
	TotalCredit decimal.Decimal     `json:"total_credit"`
}

// Reconciled reports whether total debits equal total credits exactly. This
// follows from the per-entry balance invariant and doubles as a correctness
// check on the aggregation itself.
func (tb TrialBalance) Reconciled() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// BuildTrialBalance converts balance rows into grouped trial balance data.
// Only postable accounts appear; header accounts exist for hierarchy.
func BuildTrialBalance(rows []BalanceRow) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	result := TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, row := range rows {
		if !row.IsPostable {
			continue
		}
		key := row.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key, Debit: decimal.Zero, Credit: decimal.Zero}
			groups[key] = grp
			keys = append(keys, key)
		}
		acc := TrialBalanceAccount{
			Code:    row.Code,
			Name:    row.Name,
			Debit:   row.Debit,
			Credit:  row.Credit,
			Balance: row.Balance(),
		}
		grp.Accounts = append(grp.Accounts, acc)
		grp.Debit = grp.Debit.Add(acc.Debit)
		grp.Credit = grp.Credit.Add(acc.Credit)
	}

	sort.Strings(keys)
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalDebit = result.TotalDebit.Add(grp.Debit)
		result.TotalCredit = result.TotalCredit.Add(grp.Credit)
	}
	return result
}
