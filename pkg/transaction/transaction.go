package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/internal/common"
)

// DateLayout is the calendar-date format used for persisted rows.
const DateLayout = "2006-01-02"

// Type classifies a transaction as money in or money out
type Type string

// Transaction types
const (
	Income  Type = "income"
	Expense Type = "expense"
)

// Types lists the valid types in report order.
var Types = []Type{Income, Expense}

// ParseType returns the Type named by s, ignoring case and surrounding space.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("%w: 'type' has to be either 'income' or 'expense', got %q", common.ErrInvalidType, s)
}

// Valid reports whether t is income or expense.
func (t Type) Valid() bool {
	return t == Income || t == Expense
}

// Transaction represents one canonical row of the table
type Transaction struct {
	Date     time.Time       `json:"date"`
	Type     Type            `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
}

// New builds a validated Transaction. The date is truncated to its calendar day.
func New(date time.Time, typ Type, amount decimal.Decimal, category string) (Transaction, error) {
	if !typ.Valid() {
		return Transaction{}, fmt.Errorf("%w: 'type' has to be either 'income' or 'expense', got %q", common.ErrInvalidType, typ)
	}
	if amount.IsNegative() {
		return Transaction{}, fmt.Errorf("%w: amount %s is negative", common.ErrInvalidAmount, amount)
	}
	return Transaction{
		Date:     Day(date),
		Type:     typ,
		Amount:   amount,
		Category: category,
	}, nil
}

// Day drops the time of day, keeping the calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// List holds the in-memory table of transactions in file order
type List struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Source       string        `json:"source"`
	LoadedAt     time.Time     `json:"loaded_at"`
}

// AddTransaction appends a transaction to the list
func (l *List) AddTransaction(t Transaction) {
	l.Transactions = append(l.Transactions, t)
	l.Total = len(l.Transactions)
}

// Empty reports whether the table has no rows.
func (l *List) Empty() bool {
	return l == nil || len(l.Transactions) == 0
}

// Filter returns the rows for which keep returns true, in original order.
func (l *List) Filter(keep func(Transaction) bool) []Transaction {
	if l == nil {
		return nil
	}
	var filtered []Transaction
	for _, t := range l.Transactions {
		if keep(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// GetByType returns all transactions of the given type
func (l *List) GetByType(typ Type) []Transaction {
	return l.Filter(func(t Transaction) bool { return t.Type == typ })
}

// GetByCategory returns all transactions matching the given category
func (l *List) GetByCategory(category string) []Transaction {
	return l.Filter(func(t Transaction) bool { return t.Category == category })
}

// Sum adds up the amounts of txs. An empty slice sums to zero.
func Sum(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}
