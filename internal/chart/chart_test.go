package chart

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/finance-tracker/internal/cli"
)

func TestNewPanel(t *testing.T) {
	p, ok := NewPanel("Expense Categories", cli.ExpenseColor,
		[]string{"grocery", "rent", "refund"},
		[]decimal.Decimal{decimal.NewFromInt(250), decimal.NewFromInt(750), decimal.Zero})
	require.True(t, ok)

	require.Len(t, p.Slices, 2)
	assert.True(t, p.Total.Equal(decimal.NewFromInt(1000)))
	assert.InDelta(t, 0.25, p.Slices[0].Share, 1e-9)
	assert.InDelta(t, 0.75, p.Slices[1].Share, 1e-9)
}

func TestNewPanel_Empty(t *testing.T) {
	_, ok := NewPanel("Income Categories", cli.IncomeColor, nil, nil)
	assert.False(t, ok)

	_, ok = NewPanel("Income Categories", cli.IncomeColor, []string{"gift"}, []decimal.Decimal{decimal.Zero})
	assert.False(t, ok)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "25.0%", Percent(0.25))
	assert.Equal(t, "33.3%", Percent(1.0/3))
	assert.Equal(t, "100.0%", Percent(1))
}

func TestRender(t *testing.T) {
	income, ok := NewPanel("Income Categories", cli.IncomeColor, []string{"salary"}, []decimal.Decimal{decimal.NewFromInt(1000)})
	require.True(t, ok)
	expense, ok := NewPanel("Expense Categories", cli.ExpenseColor, []string{"grocery", "rent"},
		[]decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(3)})
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, []Panel{income, expense}, 20))

	out := buf.String()
	assert.Contains(t, out, "Income Categories")
	assert.Contains(t, out, "Expense Categories")
	assert.Contains(t, out, "salary")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "75.0%")
}

func TestRender_NoPanels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, 0))
	assert.Contains(t, buf.String(), NoDataMessage)
}
