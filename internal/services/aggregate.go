// Package services provides the aggregation and report orchestration services.
package services

import (
	"salesplot/internal/cache"
	"salesplot/internal/core"
)

// Aggregator turns a transaction table into the three count pivots the
// reports draw. It never modifies the table.
type Aggregator struct {
	parser *core.DateParser
}

func NewAggregator(parser *core.DateParser) *Aggregator {
	return &Aggregator{parser: parser}
}

// MonthlySales counts transactions per (month, item type).
func (a *Aggregator) MonthlySales(t core.Table) core.Pivot {
	return core.CountPivot(t, a.parser.Parse, core.Month, core.ItemTypeOf)
}

// YearlyReceivedBy counts transactions per (year, received by).
func (a *Aggregator) YearlyReceivedBy(t core.Table) core.Pivot {
	return core.CountPivot(t, a.parser.Parse, core.Year, core.ReceivedByOf)
}

// YearlyTransactionTypes counts transactions per (year, transaction type).
func (a *Aggregator) YearlyTransactionTypes(t core.Table) core.Pivot {
	return core.CountPivot(t, a.parser.Parse, core.Year, core.TransactionTypeOf)
}

// DateMemoStats reports how often date parsing was served from the memo.
func (a *Aggregator) DateMemoStats() cache.Stats {
	return a.parser.Stats()
}
