// Package store persists canonical transactions in an append-only CSV table.
package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/internal/common"
	"github.com/example/finance-tracker/pkg/transaction"
)

// Header is the fixed column set of the table.
var Header = []string{"Date", "Type", "Amount", "Category"}

var dateLayouts = []string{
	transaction.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Appender adds rows to the table.
type Appender interface {
	Append(rows []transaction.Transaction) error
}

// Store is the CSV-backed transaction table.
type Store struct {
	logger *slog.Logger
	path   string
}

// New returns a Store over the file at path. Nothing is touched on disk.
func New(path string) *Store {
	return &Store{
		path:   path,
		logger: common.Component("store"),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureInitialized creates the file with the header when it does not exist.
// An existing file is never rewritten.
func (s *Store) EnsureInitialized() error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create table directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, os.ErrExist) {
		return s.headerIfEmpty()
	}
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	if err := writeAll(f, [][]string{Header}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close table: %w", err)
	}

	s.logger.Info("Created transaction table", "path", s.path)
	return nil
}

// headerIfEmpty writes the header into an existing zero-length file.
func (s *Store) headerIfEmpty() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat table: %w", err)
	}
	if info.Size() > 0 {
		return nil
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open table: %w", err)
	}
	if err := writeAll(f, [][]string{Header}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Append adds rows after the existing content. The whole batch is encoded
// before the file is opened and written with one call, so a validation
// failure leaves the file untouched.
func (s *Store) Append(rows []transaction.Transaction) (err error) {
	if len(rows) == 0 {
		return nil
	}

	records := make([][]string, 0, len(rows))
	for i, tx := range rows {
		if !tx.Type.Valid() {
			return fmt.Errorf("row %d: %w: %q", i, common.ErrInvalidType, tx.Type)
		}
		if tx.Amount.IsNegative() {
			return fmt.Errorf("row %d: %w: %s is negative", i, common.ErrInvalidAmount, tx.Amount)
		}
		records = append(records, encode(tx))
	}

	if err := s.EnsureInitialized(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open table: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close table: %w", cerr)
		}
	}()

	// A hand-edited file may lack its final newline.
	terminated, err := endsWithNewline(f)
	if err != nil {
		return err
	}
	if !terminated {
		if _, err := f.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}

	if err := writeAll(f, records); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	s.logger.Debug("Appended rows", "count", len(rows), "path", s.path)
	return nil
}

// LoadAll reads the whole table. It always returns a usable list: a missing
// file yields an empty list with common.ErrTableNotFound, and a read or parse
// failure yields an empty list with the failure.
func (s *Store) LoadAll() (*transaction.List, error) {
	list := &transaction.List{Source: s.path, LoadedAt: time.Now()}

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return list, fmt.Errorf("%w: %s", common.ErrTableNotFound, s.path)
	}
	if err != nil {
		return list, fmt.Errorf("failed to open table: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := Decode(f)
	if err != nil {
		return list, fmt.Errorf("failed to load %s: %w", s.path, err)
	}
	for _, tx := range rows {
		list.AddTransaction(tx)
	}
	return list, nil
}

// Decode parses a table with the fixed header.
func Decode(r io.Reader) ([]transaction.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("unexpected header %v, want %v", header, Header)
	}

	var rows []transaction.Transaction
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		tx, err := decode(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, tx)
	}
	return rows, nil
}

func encode(tx transaction.Transaction) []string {
	return []string{
		tx.Date.Format(transaction.DateLayout),
		string(tx.Type),
		tx.Amount.String(),
		tx.Category,
	}
}

func decode(record []string) (transaction.Transaction, error) {
	date, err := parseDate(record[0])
	if err != nil {
		return transaction.Transaction{}, err
	}
	typ, err := transaction.ParseType(record[1])
	if err != nil {
		return transaction.Transaction{}, err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(record[2]))
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("%w: %q", common.ErrInvalidAmount, record[2])
	}
	return transaction.New(date, typ, amount, record[3])
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return transaction.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func endsWithNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("failed to stat table: %w", err)
	}
	if info.Size() == 0 {
		return true, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, fmt.Errorf("failed to read table: %w", err)
	}
	return last[0] == '\n', nil
}

func writeAll(w io.Writer, records [][]string) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// Ensure Store implements Appender interface.
var _ Appender = (*Store)(nil)
