package wise

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/example/finance-tracker/pkg/transaction"
)

// UnknownCategory labels records that carry no description.
const UnknownCategory = "unknown"

// ErrMalformedRecord marks a raw record that cannot become a row.
var ErrMalformedRecord = errors.New("malformed transaction record")

// Normalize maps one raw record onto a canonical row. The date keeps only its
// YYYY-MM-DD prefix, a positive signed amount means income, and the stored
// amount is its magnitude.
func Normalize(raw any) (transaction.Transaction, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return transaction.Transaction{}, fmt.Errorf("%w: record is %T, not an object", ErrMalformedRecord, raw)
	}

	date, err := recordDate(obj)
	if err != nil {
		return transaction.Transaction{}, err
	}

	signed, err := recordAmount(obj)
	if err != nil {
		return transaction.Transaction{}, err
	}

	typ := transaction.Expense
	if signed.IsPositive() {
		typ = transaction.Income
	}

	category := field(obj, "$.details.description")
	if category == "" {
		category = UnknownCategory
	}

	return transaction.Transaction{
		Date:     date,
		Type:     typ,
		Amount:   signed.Abs(),
		Category: category,
	}, nil
}

// NormalizeAll maps every well-formed record and skips the rest individually.
func NormalizeAll(raws []any, logger *slog.Logger) (rows []transaction.Transaction, skipped int) {
	if logger == nil {
		logger = slog.Default()
	}
	rows = make([]transaction.Transaction, 0, len(raws))
	for i, raw := range raws {
		tx, err := Normalize(raw)
		if err != nil {
			skipped++
			logger.Debug("Skipping transaction record", "index", i, "error", err)
			continue
		}
		rows = append(rows, tx)
	}
	return rows, skipped
}

func recordDate(obj map[string]any) (time.Time, error) {
	v, err := jsonpath.Get("$.date", obj)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: missing date", ErrMalformedRecord)
	}
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: date is %T", ErrMalformedRecord, v)
	}
	if len(s) > len(transaction.DateLayout) {
		s = s[:len(transaction.DateLayout)]
	}
	date, err := time.Parse(transaction.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", ErrMalformedRecord, s, err)
	}
	return date, nil
}

// recordAmount reads amount.value; a missing value counts as zero.
func recordAmount(obj map[string]any) (decimal.Decimal, error) {
	v, err := jsonpath.Get("$.amount.value", obj)
	if err != nil || v == nil {
		return decimal.Zero, nil
	}
	switch v := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: amount %q: %v", ErrMalformedRecord, v, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	return decimal.Zero, fmt.Errorf("%w: amount is %T", ErrMalformedRecord, v)
}
