package sources

import (
	"context"

	"salesplot/internal/core"
)

// TransactionReader loads the full sales dataset.
type TransactionReader interface {
	ReadTransactions(ctx context.Context) (core.Table, error)
}

// TransactionWriter persists a dataset, replacing nothing unless the
// implementation says so.
type TransactionWriter interface {
	ImportTransactions(ctx context.Context, t core.Table) (int, error)
}
