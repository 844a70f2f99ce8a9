package sample

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/finance-tracker/pkg/transaction"
)

func TestGenerate_WithinBounds(t *testing.T) {
	opts := DefaultOptions()
	calls := 0
	rows := NewGenerator(7, opts).Generate(500, func() { calls++ })

	require.Len(t, rows, 500)
	assert.Equal(t, 500, calls)
	for _, tx := range rows {
		assert.False(t, tx.Date.Before(opts.From), "date %s", tx.Date)
		assert.False(t, tx.Date.After(opts.To), "date %s", tx.Date)
		assert.True(t, tx.Type.Valid())
		assert.LessOrEqual(t, tx.Amount.InexactFloat64(), opts.MaxAmount)
		assert.GreaterOrEqual(t, tx.Amount.InexactFloat64(), opts.MinAmount)
		assert.LessOrEqual(t, -tx.Amount.Exponent(), int32(2))

		pool := ExpenseCategories
		if tx.Type == transaction.Income {
			pool = IncomeCategories
		}
		assert.True(t, slices.Contains(pool, tx.Category), "category %q for %s", tx.Category, tx.Type)
	}
}

func TestGenerate_SeedIsRepeatable(t *testing.T) {
	a := keys(NewGenerator(42, DefaultOptions()).Generate(20, nil))
	b := keys(NewGenerator(42, DefaultOptions()).Generate(20, nil))
	c := keys(NewGenerator(43, DefaultOptions()).Generate(20, nil))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func keys(rows []transaction.Transaction) []string {
	out := make([]string, len(rows))
	for i, tx := range rows {
		out[i] = tx.Date.Format(transaction.DateLayout) + "," + string(tx.Type) + "," + tx.Amount.String() + "," + tx.Category
	}
	return out
}

func TestGenerate_BothTypes(t *testing.T) {
	rows := NewGenerator(1, DefaultOptions()).Generate(200, nil)
	seen := map[transaction.Type]bool{}
	for _, tx := range rows {
		seen[tx.Type] = true
	}
	assert.True(t, seen[transaction.Income])
	assert.True(t, seen[transaction.Expense])
}

func TestGenerate_Zero(t *testing.T) {
	assert.Empty(t, NewGenerator(1, DefaultOptions()).Generate(0, nil))
}
