package wise

import (
	"context"
	"time"
)

// TransactionFetcher defines the contract for fetching raw transaction records.
type TransactionFetcher interface {
	AccountID(ctx context.Context) (string, error)
	GetTransactions(ctx context.Context, accountID string, from, to time.Time) ([]any, error)
}
