// Package csvfile reads the sales dataset from a CSV file.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"salesplot/internal/core"
	"salesplot/internal/sources"
)

// Reader loads transactions from a CSV file whose first record is the header.
type Reader struct {
	path string
}

var _ sources.TransactionReader = (*Reader)(nil)

func New(path string) *Reader {
	return &Reader{path: path}
}

// ReadTransactions opens the file and parses every record.
func (r *Reader) ReadTransactions(ctx context.Context) (core.Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return core.Table{}, fmt.Errorf("open csv %s: %w", r.path, err)
	}
	defer f.Close()

	t, err := Parse(ctx, f)
	if err != nil {
		return core.Table{}, fmt.Errorf("parse csv %s: %w", r.path, err)
	}

	slog.InfoContext(ctx, "Loaded transactions from CSV", "path", r.path, "rows", t.Len())
	return t, nil
}

// Parse reads a header record followed by data records. An input with no
// records at all is an empty table; a header without the required columns
// is an error.
func Parse(ctx context.Context, in io.Reader) (core.Table, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return core.NewTable(nil), nil
	}
	if err != nil {
		return core.Table{}, fmt.Errorf("read header: %w", err)
	}

	h, err := sources.NewHeader(names)
	if err != nil {
		return core.Table{}, err
	}

	var rows []core.Transaction
	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return core.Table{}, err
			}
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.Table{}, fmt.Errorf("read record %d: %w", line, err)
		}
		rows = append(rows, h.Transaction(rec))
	}

	return core.NewTable(rows), nil
}
