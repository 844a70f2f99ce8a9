// Package pipeline runs the tracker end to end: fetch remote transactions,
// append them to the table, reload it, print the reports and optionally
// collect one manual entry.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/internal/cli"
	"github.com/example/finance-tracker/internal/common"
	"github.com/example/finance-tracker/internal/report"
	"github.com/example/finance-tracker/internal/store"
	"github.com/example/finance-tracker/internal/wise"
	"github.com/example/finance-tracker/pkg/transaction"
)

// Notices printed while running.
const (
	NoAccountNotice = "No borderless accounts found."
	SavedNotice     = "Wise transactions have been saved to CSV."
)

// Table is the store surface the pipeline needs.
type Table interface {
	store.Appender
	EnsureInitialized() error
	LoadAll() (*transaction.List, error)
	Path() string
}

// Collector gathers one manual entry and returns the savings jar value.
type Collector interface {
	Collect(ctx context.Context) (decimal.Decimal, error)
}

// Options are the caller-supplied parameters of a run.
type Options struct {
	From          time.Time
	To            time.Time
	TopN          int
	ExpenseLimit  decimal.Decimal
	DiagnosticLog string
	Now           func() time.Time
}

// Summary reports what a run did.
type Summary struct {
	AccountID     string
	Fetched       int
	Appended      int
	Skipped       int
	Loaded        int
	LimitExceeded bool
	Saved         decimal.Decimal
}

// Pipeline wires the stages together. Collector may be nil to skip manual
// entry.
type Pipeline struct {
	fetcher   wise.TransactionFetcher
	table     Table
	renderer  *report.Renderer
	collector Collector
	out       io.Writer
	opts      Options
	logger    *slog.Logger
}

// New builds a pipeline writing notices and reports to out.
func New(fetcher wise.TransactionFetcher, table Table, collector Collector, out io.Writer, renderer *report.Renderer, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		fetcher:   fetcher,
		table:     table,
		renderer:  renderer,
		collector: collector,
		out:       out,
		opts:      opts,
		logger:    common.Component("pipeline"),
	}
}

// Run executes every stage in order. Remote and load failures are reported
// and the run continues; only local write failures and manual-entry
// validation failures end it early.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	summary := Summary{Saved: decimal.Zero}

	if err := p.table.EnsureInitialized(); err != nil {
		return summary, fmt.Errorf("failed to initialize table: %w", err)
	}

	if err := p.ingest(ctx, &summary); err != nil {
		return summary, err
	}

	list, err := p.table.LoadAll()
	if err != nil {
		p.logger.Warn("Failed to load table", "path", p.table.Path(), "error", err)
		if perr := p.loadNotice(err); perr != nil {
			return summary, perr
		}
	}
	summary.Loaded = list.Total

	now := p.opts.Now()
	if err := p.reports(list, now, &summary); err != nil {
		return summary, fmt.Errorf("failed to write report: %w", err)
	}

	if p.collector != nil {
		saved, err := p.collector.Collect(ctx)
		if err != nil {
			return summary, err
		}
		summary.Saved = saved
	}

	if err := p.say(fmt.Sprintf("your savings are: %s", p.renderer.Amount(summary.Saved))); err != nil {
		return summary, err
	}
	return summary, nil
}

// ingest fetches, normalizes and appends. An unresolved account short-cuts
// the whole stage and nothing referring to an account id is emitted.
func (p *Pipeline) ingest(ctx context.Context, summary *Summary) error {
	if p.fetcher == nil {
		return nil
	}

	accountID, err := p.fetcher.AccountID(ctx)
	if err != nil {
		p.logger.Debug("No account resolved", "error", err)
		return p.say(cli.FormatWarning(NoAccountNotice))
	}
	summary.AccountID = accountID

	raws, err := p.fetcher.GetTransactions(ctx, accountID, p.opts.From, p.opts.To)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Warn("Fetching transactions failed", "error", err)
		return p.say(cli.FormatError(p.fetchFailure(err)))
	}
	summary.Fetched = len(raws)

	rows, skipped := wise.NormalizeAll(raws, p.logger)
	summary.Skipped = skipped
	if err := p.table.Append(rows); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}
	summary.Appended = len(rows)

	p.logger.Info("Ingested transactions", "appended", len(rows), "skipped", skipped)
	return p.say(cli.FormatSuccess(fmt.Sprintf("%s (%d rows)", SavedNotice, len(rows))))
}

func (p *Pipeline) fetchFailure(err error) string {
	msg := "Failed to fetch transactions."
	if errors.Is(err, common.ErrMalformedResponse) {
		msg = "Transactions response could not be used."
	}
	if p.opts.DiagnosticLog != "" {
		msg += " Check " + p.opts.DiagnosticLog + "."
	}
	return msg
}

func (p *Pipeline) loadNotice(err error) error {
	if errors.Is(err, common.ErrTableNotFound) {
		return p.say(cli.FormatError(fmt.Sprintf("Error: %s not found. Please generate data first.", p.table.Path())))
	}
	return p.say(cli.FormatError(fmt.Sprintf("Error loading data: %v", err)))
}

func (p *Pipeline) reports(list *transaction.List, now time.Time, summary *Summary) error {
	if err := p.renderer.Categories(list); err != nil {
		return err
	}
	if err := p.renderer.TopExpenses(list, p.opts.TopN); err != nil {
		return err
	}
	if err := p.renderer.Recent(list, now); err != nil {
		return err
	}
	if err := p.renderer.Means(list); err != nil {
		return err
	}
	exceeded, err := p.renderer.ExpenseLimit(list, now, p.opts.ExpenseLimit)
	if err != nil {
		return err
	}
	summary.LimitExceeded = exceeded
	return p.renderer.NetWorth(list, now)
}

func (p *Pipeline) say(msg string) error {
	_, err := fmt.Fprintln(p.out, msg)
	return err
}
