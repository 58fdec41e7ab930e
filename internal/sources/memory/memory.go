package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"salesplot/internal/core"
	"salesplot/internal/sources"
	"salesplot/internal/sources/csvfile"
)

// Store keeps transactions in memory.
type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

var (
	_ sources.TransactionReader = (*Store)(nil)
	_ sources.TransactionWriter = (*Store)(nil)
)

func New(rows ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), rows...)}
}

// NewFromCSV seeds the store from a CSV file. A missing file yields an empty
// store; a malformed one is an error.
func NewFromCSV(ctx context.Context, path string) (*Store, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed %s: %w", path, err)
	}
	defer f.Close()

	t, err := csvfile.Parse(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return New(t.Rows()...), nil
}

// Append stores one transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, t core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ImportTransactions appends every row of t.
func (s *Store) ImportTransactions(_ context.Context, t core.Table) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t.Rows()...)
	return t.Len(), nil
}

// ReadTransactions returns a snapshot of the stored rows.
func (s *Store) ReadTransactions(_ context.Context) (core.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.NewTable(s.items), nil
}
