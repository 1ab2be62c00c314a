package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Totals holds the income, expense and net balance of a set of transactions.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// MonthlyPoint aggregates one calendar month.
type MonthlyPoint struct {
	Month   time.Time // first day of the month, in the series location
	Period  string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// CategoryAmount is one row of a category breakdown.
type CategoryAmount struct {
	Category string
	Type     TransactionType
	Total    decimal.Decimal
	Count    int
}

// Summary is the derived dashboard state for one snapshot and criteria.
type Summary struct {
	Criteria            Criteria
	Warning             error
	Transactions        []*Transaction
	Monthly             []MonthlyPoint
	Categories          []CategoryAmount
	AvailableCategories []string
	Totals              Totals
	Count               int
}

var monthAbbrev = [12]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// MonthLabel returns the pt-BR short label of the month containing t,
// for example "jan 2024".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", monthAbbrev[t.Month()-1], t.Year())
}

// ComputeTotals sums income and expense amounts. Transactions of any other
// type contribute to neither.
func ComputeTotals(transactions []*Transaction) Totals {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero, Balance: decimal.Zero}

	for _, t := range transactions {
		switch t.Type {
		case TransactionTypeIncome:
			totals.Income = totals.Income.Add(t.Amount)
		case TransactionTypeExpense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
		totals.Balance = totals.Balance.Add(t.SignedAmount())
	}

	return totals
}

// MonthlySeries groups transactions by calendar month in loc and returns
// one point per month present, oldest first.
func MonthlySeries(transactions []*Transaction, loc *time.Location) []MonthlyPoint {
	if loc == nil {
		loc = time.UTC
	}

	byMonth := make(map[time.Time]*MonthlyPoint)
	for _, t := range transactions {
		local := t.CreatedAt.In(loc)
		key := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

		p, ok := byMonth[key]
		if !ok {
			p = &MonthlyPoint{
				Month:   key,
				Period:  MonthLabel(key),
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			}
			byMonth[key] = p
		}

		switch t.Type {
		case TransactionTypeIncome:
			p.Income = p.Income.Add(t.Amount)
		case TransactionTypeExpense:
			p.Expense = p.Expense.Add(t.Amount)
		}
	}

	out := make([]MonthlyPoint, 0, len(byMonth))
	for _, p := range byMonth {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// CategoryBreakdown totals transactions per type and category. Income rows
// come first, then expense rows; inside a type rows are ordered by total
// descending and then by category.
func CategoryBreakdown(transactions []*Transaction) []CategoryAmount {
	type key struct {
		t        TransactionType
		category string
	}

	rows := make(map[key]*CategoryAmount)
	for _, t := range transactions {
		if !t.Type.IsValid() {
			continue
		}

		k := key{t: t.Type, category: t.Category}
		row, ok := rows[k]
		if !ok {
			row = &CategoryAmount{Category: t.Category, Type: t.Type, Total: decimal.Zero}
			rows[k] = row
		}
		row.Total = row.Total.Add(t.Amount)
		row.Count++
	}

	out := make([]CategoryAmount, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Type != b.Type {
			return a.Type == TransactionTypeIncome
		}
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})
	return out
}

// Summarize filters the snapshot with the effective criteria and derives
// every aggregate the dashboard shows. An inverted date range is reported in
// Warning and aggregated as if no date bound were set.
func Summarize(snapshot []*Transaction, c Criteria) Summary {
	warning := c.Validate()
	effective := c.Effective()

	filtered := Filter(snapshot, effective)

	return Summary{
		Criteria:            effective,
		Warning:             warning,
		Transactions:        filtered,
		Count:               len(filtered),
		Totals:              ComputeTotals(filtered),
		Monthly:             MonthlySeries(filtered, effective.Loc()),
		Categories:          CategoryBreakdown(filtered),
		AvailableCategories: AvailableCategories(snapshot, effective.Type),
	}
}
