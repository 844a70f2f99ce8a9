// Package sample generates random transactions for trying out the reports.
package sample

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/pkg/transaction"
)

// Category pools drawn from per type.
var (
	IncomeCategories = []string{
		"salary", "freelance", "scholarhsip", "business", "gift", "rental income", "stock divident",
	}
	ExpenseCategories = []string{
		"grocery", "charity", "education", "entertainment", "rent",
		"utilities", "health care", "taxes", "transportation", "self care",
	}
)

// Options bounds the generated rows.
type Options struct {
	From      time.Time
	To        time.Time
	MinAmount float64
	MaxAmount float64
}

// DefaultOptions spans 2020-01-01 to 2025-12-31 with amounts in [1, 1000000].
func DefaultOptions() Options {
	return Options{
		From:      time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		MinAmount: 1,
		MaxAmount: 1000000,
	}
}

// Generator draws rows from a seeded source so runs can be repeated.
type Generator struct {
	rng  *rand.Rand
	opts Options
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64, opts Options) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		opts: opts,
	}
}

// Next returns one random transaction.
func (g *Generator) Next() transaction.Transaction {
	days := int(transaction.Day(g.opts.To).Sub(transaction.Day(g.opts.From)).Hours() / 24)
	date := transaction.Day(g.opts.From).AddDate(0, 0, g.rng.IntN(max(days, 0)+1))

	typ := transaction.Types[g.rng.IntN(len(transaction.Types))]
	pool := ExpenseCategories
	if typ == transaction.Income {
		pool = IncomeCategories
	}

	span := g.opts.MaxAmount - g.opts.MinAmount
	amount := decimal.NewFromFloat(g.opts.MinAmount + g.rng.Float64()*span).Round(2)

	return transaction.Transaction{
		Date:     date,
		Type:     typ,
		Amount:   amount,
		Category: pool[g.rng.IntN(len(pool))],
	}
}

// Generate returns n rows, calling progress after each one when set.
func (g *Generator) Generate(n int, progress func()) []transaction.Transaction {
	rows := make([]transaction.Transaction, 0, max(n, 0))
	for range n {
		rows = append(rows, g.Next())
		if progress != nil {
			progress()
		}
	}
	return rows
}
