package entry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/internal/cli"
	"github.com/example/finance-tracker/internal/common"
	"github.com/example/finance-tracker/internal/store"
	"github.com/example/finance-tracker/pkg/transaction"
)

// Answers to the opening question.
const (
	Declined = "sure!"
	Invalid  = "non-valid answer"
	Added    = "transactions are added!"
	NoInput  = "no input, nothing added"
)

// Collector asks for one transaction over a line-oriented terminal.
type Collector struct {
	reader *cli.LineReader
	out    io.Writer
	app    store.Appender
	rules  Rules
	now    func() time.Time
}

// NewCollector reads answers from in and writes prompts to out.
func NewCollector(in io.Reader, out io.Writer, app store.Appender, rules Rules) *Collector {
	return &Collector{
		reader: cli.NewLineReader(in),
		out:    out,
		app:    app,
		rules:  rules,
		now:    time.Now,
	}
}

// Collect runs the dialogue and returns the savings jar value. Declining,
// giving an unrecognised answer or running out of input adds nothing and
// returns zero. Only validation failures and cancellation are errors.
func (c *Collector) Collect(ctx context.Context) (decimal.Decimal, error) {
	saved, err := c.collect(ctx)
	if errors.Is(err, io.EOF) {
		return decimal.Zero, c.say("\n" + NoInput)
	}
	return saved, err
}

func (c *Collector) collect(ctx context.Context) (decimal.Decimal, error) {
	answer, err := c.ask(ctx, "Do you need to add transactions?")
	if err != nil {
		return decimal.Zero, err
	}
	switch strings.ToLower(answer) {
	case "yes":
	case "no":
		return decimal.Zero, c.say(Declined)
	default:
		return decimal.Zero, c.say(Invalid)
	}

	raw, err := c.ask(ctx, "Income or Expense?")
	if err != nil {
		return decimal.Zero, err
	}
	typ, err := transaction.ParseType(raw)
	if err != nil {
		return decimal.Zero, common.NewUserError("'type' has to be either 'income' or 'expense'", err)
	}

	amountPrompt, categoryPrompt := "What is your expense?", "What is the category?"
	if typ == transaction.Income {
		amountPrompt, categoryPrompt = "What is your income?", "What is the source?"
	}

	raw, err = c.ask(ctx, amountPrompt)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, common.NewUserError("'amount' has to be a positive number",
			fmt.Errorf("%w: %q", common.ErrInvalidAmount, raw))
	}

	category, err := c.ask(ctx, categoryPrompt)
	if err != nil {
		return decimal.Zero, err
	}
	note, err := c.askOptional(ctx, "Add notes (optional)")
	if err != nil {
		return decimal.Zero, err
	}

	res, err := Record(c.app, Entry{Type: typ, Amount: amount, Category: category, Note: note}, c.now(), c.rules)
	if err != nil {
		return decimal.Zero, err
	}
	return res.Saved, c.say(cli.FormatSuccess(Added))
}

func (c *Collector) ask(ctx context.Context, prompt string) (string, error) {
	if _, err := fmt.Fprint(c.out, cli.FormatPrompt(prompt)); err != nil {
		return "", err
	}
	line, err := c.reader.ReadLine(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return line, nil
}

// askOptional treats end of input as an empty answer.
func (c *Collector) askOptional(ctx context.Context, prompt string) (string, error) {
	line, err := c.ask(ctx, prompt)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	return line, err
}

func (c *Collector) say(msg string) error {
	_, err := fmt.Fprintln(c.out, msg)
	return err
}
