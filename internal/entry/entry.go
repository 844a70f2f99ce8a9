// Package entry records manually entered transactions, applying the
// savings-jar rule to salary income.
package entry

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/internal/common"
	"github.com/example/finance-tracker/internal/store"
	"github.com/example/finance-tracker/pkg/transaction"
)

// Rules configures the savings jar.
type Rules struct {
	SavingsRate    decimal.Decimal
	SalaryCategory string
}

// DefaultRules diverts 25% of income categorized as "salary".
func DefaultRules() Rules {
	return Rules{
		SavingsRate:    decimal.RequireFromString("0.25"),
		SalaryCategory: "salary",
	}
}

// Entry is one manually supplied transaction before the savings rule.
type Entry struct {
	Type     transaction.Type
	Amount   decimal.Decimal
	Category string
	Note     string
}

// Result is what was stored and how much went into the jar.
type Result struct {
	Stored transaction.Transaction
	Saved  decimal.Decimal
}

// Validate checks the entry type and that its amount is strictly positive.
func (e Entry) Validate() error {
	if !e.Type.Valid() {
		return common.NewUserError("'type' has to be either 'income' or 'expense'",
			fmt.Errorf("%w: %q", common.ErrInvalidType, e.Type))
	}
	if !e.Amount.IsPositive() {
		return common.NewUserError("'amount' has to be a positive number",
			fmt.Errorf("%w: %s", common.ErrInvalidAmount, e.Amount))
	}
	return nil
}

// Split returns the stored amount and the jar contribution for e. Only
// income whose category equals the salary category contributes.
func (r Rules) Split(e Entry) (stored, saved decimal.Decimal) {
	if e.Type != transaction.Income || e.Category != r.SalaryCategory {
		return e.Amount, decimal.Zero
	}
	saved = e.Amount.Mul(r.SavingsRate)
	return e.Amount.Sub(saved), saved
}

// Record validates e, applies the savings rule and appends one row dated now.
// Nothing is appended when validation fails.
func Record(app store.Appender, e Entry, now time.Time, rules Rules) (Result, error) {
	e.Category = strings.TrimSpace(e.Category)
	if err := e.Validate(); err != nil {
		return Result{Saved: decimal.Zero}, err
	}

	amount, saved := rules.Split(e)
	tx, err := transaction.New(now, e.Type, amount, e.Category)
	if err != nil {
		return Result{Saved: decimal.Zero}, err
	}
	if err := app.Append([]transaction.Transaction{tx}); err != nil {
		return Result{Saved: decimal.Zero}, fmt.Errorf("failed to append entry: %w", err)
	}

	logger := common.Component("entry")
	logger.Debug("Recorded manual entry",
		slog.String("type", string(tx.Type)),
		slog.String("amount", tx.Amount.String()),
		slog.String("saved", saved.String()),
		slog.String("note", e.Note))
	return Result{Stored: tx, Saved: saved}, nil
}
