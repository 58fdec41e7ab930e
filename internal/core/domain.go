package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownCategory is the category label for rows whose category value is blank.
const UnknownCategory = "(unknown)"

type (
	// Transaction is one row of the sales dataset. RawDate is kept exactly as
	// read; parsing happens at aggregation time.
	Transaction struct {
		OrderID         string
		RawDate         string
		ItemName        string
		ItemType        string
		ItemPrice       decimal.Decimal
		Quantity        int
		Amount          decimal.Decimal
		TransactionType string
		ReceivedBy      string
		TimeOfSale      string
	}

	// Table is an immutable, ordered set of transactions.
	Table struct {
		rows []Transaction
	}
)

// NewTable copies rows into a new Table.
func NewTable(rows []Transaction) Table {
	return Table{rows: append([]Transaction(nil), rows...)}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows; callers may modify it freely.
func (t Table) Rows() []Transaction {
	return append([]Transaction(nil), t.rows...)
}

// Each calls fn for every row in order without copying the table.
func (t Table) Each(fn func(Transaction)) {
	for _, r := range t.rows {
		fn(r)
	}
}

// Category helpers normalise blank values to UnknownCategory.

func ItemTypeOf(t Transaction) string        { return categoryValue(t.ItemType) }
func ReceivedByOf(t Transaction) string      { return categoryValue(t.ReceivedBy) }
func TransactionTypeOf(t Transaction) string { return categoryValue(t.TransactionType) }

func categoryValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownCategory
	}
	return s
}
