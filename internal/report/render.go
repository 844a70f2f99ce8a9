package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/internal/chart"
	"github.com/example/finance-tracker/internal/cli"
	"github.com/example/finance-tracker/pkg/transaction"
)

// Notices printed when a report has nothing to work on.
const (
	NoDataCategories = "No data available to generate report."
	NoDataTop        = "No data available to show top expenses."
	NoDataRecent     = "No data available to show recent activity."
	NoDataMeans      = "No data available to calculate means."
	NoDataLimit      = "No data available to check the expense limit."
	NoDataNetWorth   = "No data available to compute net worth."
	LimitWarning     = "Warning: Your spending for this month is too high!"
	absent           = "n/a"
)

// Renderer writes reports as styled text.
type Renderer struct {
	w          io.Writer
	currency   string
	chartWidth int
}

// NewRenderer returns a Renderer writing to w with amounts shown in currency.
func NewRenderer(w io.Writer, currency string) *Renderer {
	return &Renderer{w: w, currency: currency, chartWidth: 30}
}

// Amount formats d in the renderer currency.
func (r *Renderer) Amount(d decimal.Decimal) string {
	return FormatAmount(d, r.currency)
}

func (r *Renderer) println(s string) error {
	_, err := fmt.Fprintln(r.w, s)
	return err
}

func (r *Renderer) notice(s string) error {
	return r.println(cli.SubtleStyle.Render(s))
}

// Categories prints the nested (type, category) breakdown followed by the
// proportion chart.
func (r *Renderer) Categories(list *transaction.List) error {
	if list.Empty() {
		return r.notice(NoDataCategories)
	}

	rep := Categories(list)
	var b strings.Builder
	var panels []chart.Panel
	for i, typ := range transaction.Types {
		groups := rep.ByType(typ)
		if len(groups) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(typeStyle(typ).Render(fmt.Sprintf("%s  %s", typ, r.Amount(rep.Total(typ)))))

		labels := make([]string, len(groups))
		values := make([]decimal.Decimal, len(groups))
		for j, g := range groups {
			fmt.Fprintf(&b, "\n  %s %s", cli.TableCellStyle.Render(g.Category), r.Amount(g.Amount))
			labels[j] = g.Category
			values[j] = g.Amount
		}

		title := panelTitles[i]
		if p, ok := chart.NewPanel(title, typeColor(typ), labels, values); ok {
			panels = append(panels, p)
		}
	}

	if err := r.println(cli.RenderBox("Report by Category", b.String())); err != nil {
		return err
	}
	return chart.Render(r.w, panels, r.chartWidth)
}

var panelTitles = []string{"Income Categories", "Expense Categories"}

// TopExpenses prints the n largest expenses with date, category and amount.
func (r *Renderer) TopExpenses(list *transaction.List, n int) error {
	if list.Empty() {
		return r.notice(NoDataTop)
	}

	top := TopExpenses(list, n)
	if len(top) == 0 {
		return r.println(cli.RenderBox("Top Expenses", cli.SubtleStyle.Render("no expenses recorded")))
	}

	width := 0
	for _, tx := range top {
		width = max(width, lipgloss.Width(tx.Category))
	}
	lines := make([]string, 0, len(top))
	for _, tx := range top {
		lines = append(lines, fmt.Sprintf("%s  %-*s  %s",
			tx.Date.Format(transaction.DateLayout), width, tx.Category,
			cli.ExpenseStyle.Render(r.Amount(tx.Amount))))
	}
	return r.println(cli.RenderBox("Top Expenses", strings.Join(lines, "\n")))
}

// Recent prints the trailing 7 and 30 day totals.
func (r *Renderer) Recent(list *transaction.List, now time.Time) error {
	if list.Empty() {
		return r.notice(NoDataRecent)
	}

	totals := Recent(list, now)
	var lines []string
	for _, w := range []Window{totals.Week, totals.Month} {
		lines = append(lines, fmt.Sprintf("Last %d days:\n   Income: %s | Expense: %s",
			w.Days,
			cli.IncomeStyle.Render(r.Amount(w.Income)),
			cli.ExpenseStyle.Render(r.Amount(w.Expense))))
	}
	return r.println(cli.RenderBox("Recent Activity", strings.Join(lines, "\n")))
}

// Means prints the average income and expense. A type without rows is
// shown as absent.
func (r *Renderer) Means(list *transaction.List) error {
	if list.Empty() {
		return r.notice(NoDataMeans)
	}

	avg := Means(list)
	content := fmt.Sprintf("your average income: %s\nyour average expense: %s",
		r.nullable(avg.Income), r.nullable(avg.Expense))
	return r.println(cli.RenderBox("Averages", content))
}

func (r *Renderer) nullable(d decimal.NullDecimal) string {
	if !d.Valid {
		return absent
	}
	return r.Amount(d.Decimal)
}

// ExpenseLimit prints a warning when this month's expenses reach limit and
// reports whether it did.
func (r *Renderer) ExpenseLimit(list *transaction.List, now time.Time, limit decimal.Decimal) (bool, error) {
	if list.Empty() {
		return false, r.notice(NoDataLimit)
	}

	status := ExpenseLimit(list, now, limit)
	if !status.Exceeded {
		return false, nil
	}
	msg := fmt.Sprintf("%s (%s spent in %s %d, limit %s)",
		LimitWarning, r.Amount(status.Spent), status.Month, status.Year, r.Amount(status.Limit))
	return true, r.println(cli.FormatWarning(msg))
}

// NetWorth prints the current year's totals and per-month breakdown.
func (r *Renderer) NetWorth(list *transaction.List, now time.Time) error {
	if list.Empty() {
		return r.notice(NoDataNetWorth)
	}

	summary := NetWorth(list, now)
	var b strings.Builder
	fmt.Fprintf(&b, "Income: %s | Expense: %s | Net: %s",
		cli.IncomeStyle.Render(r.Amount(summary.Total.Income)),
		cli.ExpenseStyle.Render(r.Amount(summary.Total.Expense)),
		r.Amount(summary.Total.Net()))
	for _, m := range summary.Months {
		if m.Income.IsZero() && m.Expense.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "\n  %-9s %s / %s  net %s",
			m.Month, r.Amount(m.Income), r.Amount(m.Expense), r.Amount(m.Net()))
	}
	return r.println(cli.RenderBox(fmt.Sprintf("Net Worth %d", summary.Year), b.String()))
}

func typeStyle(t transaction.Type) lipgloss.Style {
	if t == transaction.Income {
		return cli.IncomeStyle.Bold(true)
	}
	return cli.ExpenseStyle.Bold(true)
}

func typeColor(t transaction.Type) lipgloss.Color {
	if t == transaction.Income {
		return cli.IncomeColor
	}
	return cli.ExpenseColor
}
