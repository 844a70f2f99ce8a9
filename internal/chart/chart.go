// Package chart draws proportion panels in the terminal: one panel per
// series, one bar per slice, each labelled with its share.
package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/internal/cli"
)

// NoDataMessage is printed when there is nothing to draw.
const NoDataMessage = "No data to plot."

// Slice is one labelled share of a panel.
type Slice struct {
	Label string
	Value decimal.Decimal
	Share float64
}

// Panel is one proportion chart.
type Panel struct {
	Title  string
	Color  lipgloss.Color
	Slices []Slice
	Total  decimal.Decimal
}

// NewPanel builds a panel from parallel labels and values. Non-positive
// values are dropped; a panel with nothing left reports ok=false.
func NewPanel(title string, color lipgloss.Color, labels []string, values []decimal.Decimal) (Panel, bool) {
	p := Panel{Title: title, Color: color, Total: decimal.Zero}
	for i, v := range values {
		if i >= len(labels) || !v.IsPositive() {
			continue
		}
		p.Slices = append(p.Slices, Slice{Label: labels[i], Value: v})
		p.Total = p.Total.Add(v)
	}
	if len(p.Slices) == 0 {
		return Panel{}, false
	}
	for i := range p.Slices {
		p.Slices[i].Share = p.Slices[i].Value.Div(p.Total).InexactFloat64()
	}
	return p, true
}

// Percent formats a share the way the slice labels show it.
func Percent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

// Render writes every panel, or NoDataMessage when there are none.
func Render(w io.Writer, panels []Panel, width int) error {
	if len(panels) == 0 {
		_, err := fmt.Fprintln(w, cli.SubtleStyle.Render(NoDataMessage))
		return err
	}
	if width <= 0 {
		width = 30
	}

	blocks := make([]string, 0, len(panels))
	for _, p := range panels {
		blocks = append(blocks, renderPanel(p, width))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	return err
}

func renderPanel(p Panel, width int) string {
	bar := progress.New(
		progress.WithSolidFill(string(p.Color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)

	labelWidth := 0
	for _, s := range p.Slices {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
	}

	var b strings.Builder
	for i, s := range p.Slices {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-*s %s %6s", labelWidth, s.Label, bar.ViewAs(s.Share), Percent(s.Share))
	}
	return cli.BoxStyle.MarginRight(1).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		cli.TitleStyle.Render(cli.ChartIcon+" "+p.Title),
		b.String(),
	))
}
