// Package report computes summaries over the transaction table and renders
// them as text. Every aggregate is a pure function of the table and the
// reference time it is given.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/pkg/transaction"
)

// CategorySum is the total of one (type, category) group.
type CategorySum struct {
	Type     transaction.Type
	Category string
	Amount   decimal.Decimal
	Count    int
}

// CategoryReport holds the grouped sums, income groups first, each type
// sorted by category name.
type CategoryReport struct {
	Groups []CategorySum
}

// ByType returns the groups of one type.
func (r CategoryReport) ByType(typ transaction.Type) []CategorySum {
	var out []CategorySum
	for _, g := range r.Groups {
		if g.Type == typ {
			out = append(out, g)
		}
	}
	return out
}

// Total sums every group of one type.
func (r CategoryReport) Total(typ transaction.Type) decimal.Decimal {
	total := decimal.Zero
	for _, g := range r.ByType(typ) {
		total = total.Add(g.Amount)
	}
	return total
}

// Categories groups rows by (type, category) and sums each group.
func Categories(list *transaction.List) CategoryReport {
	type key struct {
		typ      transaction.Type
		category string
	}
	index := make(map[key]int)
	var groups []CategorySum

	if list != nil {
		for _, tx := range list.Transactions {
			k := key{tx.Type, tx.Category}
			i, ok := index[k]
			if !ok {
				i = len(groups)
				index[k] = i
				groups = append(groups, CategorySum{Type: tx.Type, Category: tx.Category, Amount: decimal.Zero})
			}
			groups[i].Amount = groups[i].Amount.Add(tx.Amount)
			groups[i].Count++
		}
	}

	slices.SortFunc(groups, func(a, b CategorySum) int {
		if c := cmp.Compare(typeOrder(a.Type), typeOrder(b.Type)); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return CategoryReport{Groups: groups}
}

func typeOrder(t transaction.Type) int {
	if i := slices.Index(transaction.Types, t); i >= 0 {
		return i
	}
	return len(transaction.Types)
}

// TopExpenses returns up to n expense rows, largest amount first. Rows with
// equal amounts keep their table order.
func TopExpenses(list *transaction.List, n int) []transaction.Transaction {
	if n <= 0 {
		return nil
	}
	expenses := slices.Clone(list.GetByType(transaction.Expense))
	slices.SortStableFunc(expenses, func(a, b transaction.Transaction) int {
		return b.Amount.Cmp(a.Amount)
	})
	if len(expenses) > n {
		expenses = expenses[:n]
	}
	return expenses
}

// Flow is income and expense over some slice of the table.
type Flow struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net is income minus expense.
func (f Flow) Net() decimal.Decimal {
	return f.Income.Sub(f.Expense)
}

// flow sums income and expense over the rows matching keep.
func flow(list *transaction.List, keep func(transaction.Transaction) bool) Flow {
	f := Flow{Income: decimal.Zero, Expense: decimal.Zero}
	if list == nil {
		return f
	}
	for _, tx := range list.Transactions {
		if !keep(tx) {
			continue
		}
		switch tx.Type {
		case transaction.Income:
			f.Income = f.Income.Add(tx.Amount)
		case transaction.Expense:
			f.Expense = f.Expense.Add(tx.Amount)
		}
	}
	return f
}

// Window is a trailing period ending today.
type Window struct {
	Days  int
	Since time.Time
	Flow
}

// RecentTotals holds the trailing 7 and 30 day flows.
type RecentTotals struct {
	Week  Window
	Month Window
}

// TrailingWindow sums rows dated on or after today minus days.
func TrailingWindow(list *transaction.List, now time.Time, days int) Window {
	since := transaction.Day(now).AddDate(0, 0, -days)
	return Window{
		Days:  days,
		Since: since,
		Flow:  flow(list, func(tx transaction.Transaction) bool { return !tx.Date.Before(since) }),
	}
}

// Recent computes the last 7 and last 30 day windows relative to now.
func Recent(list *transaction.List, now time.Time) RecentTotals {
	return RecentTotals{
		Week:  TrailingWindow(list, now, 7),
		Month: TrailingWindow(list, now, 30),
	}
}

// Averages holds the mean amount per type. A type without rows is invalid.
type Averages struct {
	Income  decimal.NullDecimal
	Expense decimal.NullDecimal
}

// Means averages amounts per type.
func Means(list *transaction.List) Averages {
	return Averages{
		Income:  mean(list.GetByType(transaction.Income)),
		Expense: mean(list.GetByType(transaction.Expense)),
	}
}

func mean(txs []transaction.Transaction) decimal.NullDecimal {
	if len(txs) == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(transaction.Sum(txs).Div(decimal.NewFromInt(int64(len(txs)))))
}

// LimitStatus compares this month's spending to a threshold.
type LimitStatus struct {
	Year     int
	Month    time.Month
	Spent    decimal.Decimal
	Limit    decimal.Decimal
	Exceeded bool
}

// ExpenseLimit sums expenses in the calendar month of now and flags when the
// sum meets or exceeds limit.
func ExpenseLimit(list *transaction.List, now time.Time, limit decimal.Decimal) LimitStatus {
	year, month, _ := now.Date()
	spent := flow(list, func(tx transaction.Transaction) bool {
		y, m, _ := tx.Date.Date()
		return y == year && m == month
	}).Expense
	return LimitStatus{
		Year:     year,
		Month:    month,
		Spent:    spent,
		Limit:    limit,
		Exceeded: spent.GreaterThanOrEqual(limit),
	}
}

// MonthFlow is the flow of one calendar month.
type MonthFlow struct {
	Month time.Month
	Flow
}

// YearSummary is the net worth movement of one year with its months.
type YearSummary struct {
	Year   int
	Total  Flow
	Months [12]MonthFlow
}

// NetWorth sums income and expense for the year of now and for each of its
// calendar months. Each row is kept only when its date falls in the period
// and its type matches, both evaluated on that row.
func NetWorth(list *transaction.List, now time.Time) YearSummary {
	year := now.Year()
	summary := YearSummary{
		Year: year,
		Total: flow(list, func(tx transaction.Transaction) bool {
			return tx.Date.Year() == year
		}),
	}
	for i := range summary.Months {
		month := time.Month(i + 1)
		summary.Months[i] = MonthFlow{
			Month: month,
			Flow: flow(list, func(tx transaction.Transaction) bool {
				return tx.Date.Year() == year && tx.Date.Month() == month
			}),
		}
	}
	return summary
}
