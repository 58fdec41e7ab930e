package sources

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"salesplot/internal/core"
)

// Column names of the sales dataset.
const (
	ColOrderID         = "order_id"
	ColDate            = "date"
	ColItemName        = "item_name"
	ColItemType        = "item_type"
	ColItemPrice       = "item_price"
	ColQuantity        = "quantity"
	ColAmount          = "transaction_amount"
	ColTransactionType = "transaction_type"
	ColReceivedBy      = "received_by"
	ColTimeOfSale      = "time_of_sale"
)

// RequiredColumns are the columns every analysis depends on.
var RequiredColumns = []string{ColDate, ColItemType, ColReceivedBy, ColTransactionType}

// ErrMissingColumns is returned when a header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

// Header maps column names to their positions in a row.
type Header struct {
	index map[string]int
}

// NewHeader matches names case-insensitively after trimming. It fails with
// ErrMissingColumns naming every absent required column.
func NewHeader(names []string) (Header, error) {
	h := Header{index: make(map[string]int, len(names))}
	for i, n := range names {
		n = normalizeName(n)
		if _, dup := h.index[n]; dup || n == "" {
			continue
		}
		h.index[n] = i
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := h.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return Header{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return h, nil
}

// Transaction builds a transaction from one row. Short rows yield blank
// fields; unparseable numbers yield zero. No row is ever rejected.
func (h Header) Transaction(row []string) core.Transaction {
	return core.Transaction{
		OrderID:         h.get(row, ColOrderID),
		RawDate:         h.get(row, ColDate),
		ItemName:        h.get(row, ColItemName),
		ItemType:        h.get(row, ColItemType),
		ItemPrice:       parseDecimal(h.get(row, ColItemPrice)),
		Quantity:        parseInt(h.get(row, ColQuantity)),
		Amount:          parseDecimal(h.get(row, ColAmount)),
		TransactionType: h.get(row, ColTransactionType),
		ReceivedBy:      h.get(row, ColReceivedBy),
		TimeOfSale:      h.get(row, ColTimeOfSale),
	}
}

func (h Header) get(row []string, col string) string {
	i, ok := h.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeName(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "_")
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
