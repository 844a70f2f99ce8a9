package entry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/finance-tracker/internal/common"
	"github.com/example/finance-tracker/internal/store"
	"github.com/example/finance-tracker/pkg/transaction"
)

var now = time.Date(2024, 6, 15, 18, 45, 0, 0, time.UTC)

type memAppender struct {
	rows []transaction.Transaction
	err  error
}

func (m *memAppender) Append(rows []transaction.Transaction) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, rows...)
	return nil
}

func TestRecord_SalaryFeedsJar(t *testing.T) {
	app := &memAppender{}
	res, err := Record(app, Entry{Type: transaction.Income, Amount: decimal.NewFromInt(400), Category: "salary"}, now, DefaultRules())
	require.NoError(t, err)

	assert.True(t, res.Saved.Equal(decimal.NewFromInt(100)), "saved %s", res.Saved)
	require.Len(t, app.rows, 1)
	assert.True(t, app.rows[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, transaction.Income, app.rows[0].Type)
	assert.Equal(t, "salary", app.rows[0].Category)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), app.rows[0].Date)
}

func TestRecord_NoJarContribution(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{name: "income from another source", entry: Entry{Type: transaction.Income, Amount: decimal.NewFromInt(400), Category: "gift"}},
		{name: "salary category is case sensitive", entry: Entry{Type: transaction.Income, Amount: decimal.NewFromInt(400), Category: "Salary"}},
		{name: "expense named salary", entry: Entry{Type: transaction.Expense, Amount: decimal.NewFromInt(400), Category: "salary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &memAppender{}
			res, err := Record(app, tt.entry, now, DefaultRules())
			require.NoError(t, err)
			assert.True(t, res.Saved.IsZero())
			require.Len(t, app.rows, 1)
			assert.True(t, app.rows[0].Amount.Equal(decimal.NewFromInt(400)))
		})
	}
}

func TestRecord_ValidationAppendsNothing(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{name: "unknown type", entry: Entry{Type: "transfer", Amount: decimal.NewFromInt(5), Category: "x"}, wantErr: common.ErrInvalidType},
		{name: "empty type", entry: Entry{Amount: decimal.NewFromInt(5)}, wantErr: common.ErrInvalidType},
		{name: "zero amount", entry: Entry{Type: transaction.Expense, Amount: decimal.Zero, Category: "x"}, wantErr: common.ErrInvalidAmount},
		{name: "negative amount", entry: Entry{Type: transaction.Income, Amount: decimal.NewFromInt(-3), Category: "salary"}, wantErr: common.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &memAppender{}
			_, err := Record(app, tt.entry, now, DefaultRules())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, common.IsValidation(err))

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
			assert.Empty(t, app.rows)
		})
	}
}

func TestRecord_AppendFailure(t *testing.T) {
	app := &memAppender{err: errors.New("disk full")}
	res, err := Record(app, Entry{Type: transaction.Income, Amount: decimal.NewFromInt(400), Category: "salary"}, now, DefaultRules())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, res.Saved.IsZero())
}

func TestRecord_WritesToStore(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "transactions.csv"))
	_, err := Record(s, Entry{Type: transaction.Income, Amount: decimal.NewFromInt(400), Category: "salary", Note: "june"}, now, DefaultRules())
	require.NoError(t, err)

	list, err := s.LoadAll()
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.True(t, list.Transactions[0].Amount.Equal(decimal.NewFromInt(300)))
}

func TestRules_CustomRate(t *testing.T) {
	rules := Rules{SavingsRate: decimal.RequireFromString("0.1"), SalaryCategory: "paycheck"}
	stored, saved := rules.Split(Entry{Type: transaction.Income, Amount: decimal.NewFromInt(1000), Category: "paycheck"})
	assert.True(t, stored.Equal(decimal.NewFromInt(900)))
	assert.True(t, saved.Equal(decimal.NewFromInt(100)))
}

func newCollector(input string, app store.Appender) (*Collector, *bytes.Buffer) {
	var out bytes.Buffer
	c := NewCollector(strings.NewReader(input), &out, app, DefaultRules())
	c.now = func() time.Time { return now }
	return c, &out
}

func TestCollector_Income(t *testing.T) {
	app := &memAppender{}
	c, out := newCollector("YES\nincome\n400\nsalary\nbonus month\n", app)

	saved, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, saved.Equal(decimal.NewFromInt(100)))
	require.Len(t, app.rows, 1)
	assert.True(t, app.rows[0].Amount.Equal(decimal.NewFromInt(300)))

	text := out.String()
	assert.Contains(t, text, "What is your income?")
	assert.Contains(t, text, "What is the source?")
	assert.NotContains(t, text, "What is your expense?")
	assert.Contains(t, text, Added)
}

func TestCollector_ExpenseWithoutNote(t *testing.T) {
	app := &memAppender{}
	c, out := newCollector("yes\nExpense\n12.50\ngrocery\n", app)

	saved, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.True(t, saved.IsZero())
	require.Len(t, app.rows, 1)
	assert.Equal(t, transaction.Expense, app.rows[0].Type)
	assert.True(t, app.rows[0].Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Contains(t, out.String(), "What is the category?")
}

func TestCollector_Answers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "no\n", want: Declined},
		{input: "No\n", want: Declined},
		{input: "maybe\n", want: Invalid},
		{input: "\n", want: Invalid},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			app := &memAppender{}
			c, out := newCollector(tt.input, app)

			saved, err := c.Collect(context.Background())
			require.NoError(t, err)
			assert.True(t, saved.IsZero())
			assert.Contains(t, out.String(), tt.want)
			assert.Empty(t, app.rows)
		})
	}
}

func TestCollector_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "bad type", input: "yes\ntransfer\n", wantErr: common.ErrInvalidType},
		{name: "non-numeric amount", input: "yes\nexpense\nten\n", wantErr: common.ErrInvalidAmount},
		{name: "zero amount", input: "yes\nexpense\n0\nrent\n\n", wantErr: common.ErrInvalidAmount},
		{name: "negative amount", input: "yes\nincome\n-5\nsalary\n\n", wantErr: common.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &memAppender{}
			c, _ := newCollector(tt.input, app)

			_, err := c.Collect(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, app.rows)
		})
	}
}

func TestCollector_EndOfInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "closed before the first answer", input: ""},
		{name: "closed after yes", input: "yes\n"},
		{name: "closed before the amount", input: "yes\nincome\n"},
		{name: "closed before the category", input: "yes\nexpense\n12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &memAppender{}
			c, out := newCollector(tt.input, app)

			saved, err := c.Collect(context.Background())
			require.NoError(t, err)
			assert.True(t, saved.IsZero())
			assert.Contains(t, out.String(), NoInput)
			assert.Empty(t, app.rows)
		})
	}
}

func TestCollector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	c := NewCollector(pr, &bytes.Buffer{}, &memAppender{}, DefaultRules())
	_, err := c.Collect(ctx)
	assert.ErrorIs(t, err, common.ErrInputCancelled)
}
