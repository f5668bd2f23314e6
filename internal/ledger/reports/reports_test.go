package reports

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(v string) *string { return &v }

func intPtr(v int64) *int64 { return &v }

func TestBuildTrialBalance(t *testing.T) {
	rows := []BalanceRow{
		{AccountID: 1, Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true, Debit: dec("900"), Credit: dec("200")},
		{AccountID: 2, Code: "1100", Name: "Receivables", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true, Debit: dec("300"), Credit: dec("0")},
		{AccountID: 3, Code: "4000", Name: "Sales", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalBalanceCredit, IsPostable: true, Debit: dec("0"), Credit: dec("1000")},
		{AccountID: 4, Code: "1", Name: "Assets", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalBalanceDebit, IsPostable: false, Debit: dec("999"), Credit: dec("0")},
	}

	tb := BuildTrialBalance(rows)

	if !tb.Reconciled() {
		t.Fatalf("expected reconciled trial balance, got debit=%s credit=%s", tb.TotalDebit, tb.TotalCredit)
	}
	if !tb.TotalDebit.Equal(dec("1200")) {
		t.Fatalf("total debit = %s, want 1200", tb.TotalDebit)
	}
	if len(tb.Groups) != 2 {
		t.Fatalf("groups = %d, want 2 (header account must be excluded)", len(tb.Groups))
	}
	if tb.Groups[0].Key != "10" || tb.Groups[1].Key != "40" {
		t.Fatalf("group keys = %s, %s", tb.Groups[0].Key, tb.Groups[1].Key)
	}
	if len(tb.Groups[0].Accounts) != 2 {
		t.Fatalf("group 10 accounts = %d, want 2", len(tb.Groups[0].Accounts))
	}

	cash := tb.Groups[0].Accounts[0]
	if cash.Code != "1000" || !cash.Balance.Equal(dec("700")) {
		t.Fatalf("cash row = %s balance %s, want 1000 balance 700", cash.Code, cash.Balance)
	}
}

func TestBuildTrialBalanceDottedCodes(t *testing.T) {
	rows := []BalanceRow{
		{AccountID: 1, Code: "11.01", Name: "Cash", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true, Debit: dec("50"), Credit: dec("0")},
		{AccountID: 2, Code: "11.02", Name: "Bank", Type: ledger.AccountTypeAsset, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true, Debit: dec("0"), Credit: dec("50")},
	}
	tb := BuildTrialBalance(rows)
	if len(tb.Groups) != 1 || tb.Groups[0].Key != "11" {
		t.Fatalf("expected single group 11, got %+v", tb.Groups)
	}
}

func plRows() []BalanceRow {
	return []BalanceRow{
		{AccountID: 10, Code: "4000", Name: "Product sales", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalBalanceCredit, IsPostable: true, PLCategory: strPtr("Operating Revenue"), Credit: dec("1000000")},
		{AccountID: 11, Code: "5000", Name: "Cost of sales", Type: ledger.AccountTypeExpense, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true, PLCategory: strPtr("Cost of Sales"), Debit: dec("400000")},
		{AccountID: 12, Code: "6000", Name: "Idle", Type: ledger.AccountTypeExpense, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true},
	}
}

func TestBuildIncomeStatementTax(t *testing.T) {
	rate := dec("0.25")
	is := BuildIncomeStatement(plRows(), Options{TaxRate: &rate})

	if !is.PreTax.Equal(dec("600000")) {
		t.Fatalf("pre-tax = %s, want 600000", is.PreTax)
	}
	if !is.Tax.Equal(dec("150000")) {
		t.Fatalf("tax = %s, want 150000", is.Tax)
	}
	if !is.NetIncome.Equal(dec("450000")) {
		t.Fatalf("net income = %s, want 450000", is.NetIncome)
	}
}

func TestBuildIncomeStatementNoTaxOnLoss(t *testing.T) {
	rate := dec("0.25")
	rows := []BalanceRow{
		{AccountID: 1, Code: "4000", Name: "Sales", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalBalanceCredit, IsPostable: true, Credit: dec("100")},
		{AccountID: 2, Code: "5000", Name: "Costs", Type: ledger.AccountTypeExpense, NormalBalance: ledger.NormalBalanceDebit, IsPostable: true, Debit: dec("300")},
	}
	is := BuildIncomeStatement(rows, Options{TaxRate: &rate})
	if !is.PreTax.Equal(dec("-200")) {
		t.Fatalf("pre-tax = %s, want -200", is.PreTax)
	}
	if !is.Tax.IsZero() {
		t.Fatalf("tax on a loss = %s, want 0", is.Tax)
	}
	if !is.NetIncome.Equal(dec("-200")) {
		t.Fatalf("net income = %s, want -200", is.NetIncome)
	}
}

func TestBuildIncomeStatementIncludeZero(t *testing.T) {
	is := BuildIncomeStatement(plRows(), Options{})
	for _, section := range is.Sections {
		for _, item := range section.Items {
			if item.Code == "6000" {
				t.Fatalf("zero row 6000 should be dropped by default")
			}
		}
	}

	is = BuildIncomeStatement(plRows(), Options{IncludeZero: true})
	found := false
	for _, section := range is.Sections {
		for _, item := range section.Items {
			if item.Code == "6000" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("zero row 6000 missing with IncludeZero")
	}
}

func TestBuildIncomeStatementHeaders(t *testing.T) {
	rows := []BalanceRow{
		{AccountID: 1, Code: "4", Name: "Revenue", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalBalanceCredit, IsPostable: false},
		{AccountID: 2, Code: "4000", Name: "Domestic", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalBalanceCredit, IsPostable: true, ParentID: intPtr(1), Credit: dec("700")},
		{AccountID: 3, Code: "4100", Name: "Export", Type: ledger.AccountTypeRevenue, NormalBalance: ledger.NormalBalanceCredit, IsPostable: true, ParentID: intPtr(1), Credit: dec("300")},
	}

	is := BuildIncomeStatement(rows, Options{})
	for _, item := range is.Sections[0].Items {
		if item.Header {
			t.Fatalf("headers must be omitted by default")
		}
	}

	is = BuildIncomeStatement(rows, Options{IncludeHeader: true})
	revenue := is.Sections[0]
	if len(revenue.Items) != 3 {
		t.Fatalf("revenue items = %d, want 3", len(revenue.Items))
	}
	header := revenue.Items[0]
	if !header.Header || !header.Amount.Equal(dec("1000")) {
		t.Fatalf("header subtotal = %s header=%v, want 1000 true", header.Amount, header.Header)
	}
	// Header subtotals never double-count into the section total.
	if !revenue.Total.Equal(dec("1000")) {
		t.Fatalf("revenue total = %s, want 1000", revenue.Total)
	}
}

func TestBuildIncomeStatementByCategory(t *testing.T) {
	is := BuildIncomeStatement(plRows(), Options{Grouping: GroupingByCategory})
	if len(is.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(is.Sections))
	}
	if is.Sections[0].Label != "Cost of Sales" || is.Sections[1].Label != "Operating Revenue" {
		t.Fatalf("labels = %s, %s", is.Sections[0].Label, is.Sections[1].Label)
	}

	// Rows without a category fall back to their type label.
	is = BuildIncomeStatement(plRows(), Options{Grouping: GroupingByCategory, IncludeZero: true})
	var labels []string
	for _, s := range is.Sections {
		labels = append(labels, s.Label)
	}
	if len(labels) != 3 || labels[1] != "EXPENSE" {
		t.Fatalf("labels with fallback = %v", labels)
	}
}
