package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/ledger"
)

// Grouping names a presentation layout for income statement line items. It
// is a presentation contract, never a recomputation of balances.
type Grouping string

const (
	// GroupingByType buckets rows into Revenue and Expense sections.
	GroupingByType Grouping = "BY_TYPE"
	// GroupingByCategory buckets rows by their pl_category tag.
	GroupingByCategory Grouping = "BY_CATEGORY"
)

// Options controls income statement assembly.
type Options struct {
	IncludeZero   bool
	IncludeHeader bool
	TaxRate       *decimal.Decimal
	Grouping      Grouping
}

// LineItem is a single income statement row. Header rows are subtotals for
// non-postable parent accounts.
type LineItem struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Header bool            `json:"header,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// Section groups line items under a label.
type Section struct {
	Label string          `json:"label"`
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// IncomeStatement is the structured report output. Tax is an overlay line
// computed from PreTax at the supplied rate, never stored.
type IncomeStatement struct {
	Sections  []Section        `json:"sections"`
	PreTax    decimal.Decimal  `json:"pre_tax"`
	Tax       decimal.Decimal  `json:"tax"`
	NetIncome decimal.Decimal  `json:"net_income"`
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
}

// net returns the period amount for a revenue or expense row, positive when
// the account moves income in its conventional direction.
func net(row BalanceRow) decimal.Decimal {
	if row.Type == ledger.AccountTypeRevenue {
		return row.Credit.Sub(row.Debit)
	}
	return row.Debit.Sub(row.Credit)
}

// BuildIncomeStatement assembles revenue/expense rows into the requested
// layout and applies the tax overlay.
func BuildIncomeStatement(rows []BalanceRow, opts Options) IncomeStatement {
	if opts.Grouping == "" {
		opts.Grouping = GroupingByType
	}

	revenueTotal := decimal.Zero
	expenseTotal := decimal.Zero
	for _, row := range rows {
		if !row.IsPostable {
			continue
		}
		switch row.Type {
		case ledger.AccountTypeRevenue:
			revenueTotal = revenueTotal.Add(net(row))
		case ledger.AccountTypeExpense:
			expenseTotal = expenseTotal.Add(net(row))
		}
	}

	var sections []Section
	switch opts.Grouping {
	case GroupingByCategory:
		sections = sectionsByCategory(rows, opts)
	default:
		sections = sectionsByType(rows, opts)
	}

	preTax := revenueTotal.Sub(expenseTotal)
	tax := decimal.Zero
	if opts.TaxRate != nil && preTax.IsPositive() {
		tax = preTax.Mul(*opts.TaxRate)
	}
	return IncomeStatement{
		Sections:  sections,
		PreTax:    preTax,
		Tax:       tax,
		NetIncome: preTax.Sub(tax),
		TaxRate:   opts.TaxRate,
	}
}

func sectionsByType(rows []BalanceRow, opts Options) []Section {
	revenue := Section{Label: "Revenue", Total: decimal.Zero}
	expense := Section{Label: "Expense", Total: decimal.Zero}

	children := childIndex(rows)
	for _, row := range rows {
		var section *Section
		switch row.Type {
		case ledger.AccountTypeRevenue:
			section = &revenue
		case ledger.AccountTypeExpense:
			section = &expense
		default:
			continue
		}
		if !row.IsPostable {
			if !opts.IncludeHeader {
				continue
			}
			subtotal := subtreeNet(row.AccountID, children)
			if subtotal.IsZero() && !opts.IncludeZero {
				continue
			}
			section.Items = append(section.Items, LineItem{Code: row.Code, Name: row.Name, Header: true, Amount: subtotal})
			continue
		}
		amount := net(row)
		if amount.IsZero() && !opts.IncludeZero {
			continue
		}
		section.Items = append(section.Items, LineItem{Code: row.Code, Name: row.Name, Amount: amount})
		section.Total = section.Total.Add(amount)
	}

	sortItems(revenue.Items)
	sortItems(expense.Items)
	return []Section{revenue, expense}
}

func sectionsByCategory(rows []BalanceRow, opts Options) []Section {
	buckets := make(map[string]*Section)
	labels := make([]string, 0)
	for _, row := range rows {
		if !row.IsPostable {
			continue
		}
		if row.Type != ledger.AccountTypeRevenue && row.Type != ledger.AccountTypeExpense {
			continue
		}
		amount := net(row)
		if amount.IsZero() && !opts.IncludeZero {
			continue
		}
		label := string(row.Type)
		if row.PLCategory != nil && *row.PLCategory != "" {
			label = *row.PLCategory
		}
		section, ok := buckets[label]
		if !ok {
			section = &Section{Label: label, Total: decimal.Zero}
			buckets[label] = section
			labels = append(labels, label)
		}
		section.Items = append(section.Items, LineItem{Code: row.Code, Name: row.Name, Amount: amount})
		section.Total = section.Total.Add(amount)
	}

	sort.Strings(labels)
	out := make([]Section, 0, len(labels))
	for _, label := range labels {
		section := buckets[label]
		sortItems(section.Items)
		out = append(out, *section)
	}
	return out
}

// childIndex maps parent account ids to their child rows.
func childIndex(rows []BalanceRow) map[int64][]BalanceRow {
	children := make(map[int64][]BalanceRow)
	for _, row := range rows {
		if row.ParentID != nil {
			children[*row.ParentID] = append(children[*row.ParentID], row)
		}
	}
	return children
}

// subtreeNet sums nets over all postable descendants of a header account.
func subtreeNet(accountID int64, children map[int64][]BalanceRow) decimal.Decimal {
	total := decimal.Zero
	for _, child := range children[accountID] {
		if child.IsPostable {
			total = total.Add(net(child))
		}
		total = total.Add(subtreeNet(child.AccountID, children))
	}
	return total
}

func sortItems(items []LineItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
}
