package google

import (
	"fmt"
	"strings"

	"salesplot/internal/core"
	"salesplot/internal/sources"
)

// parseValues converts a values matrix (as returned by the Sheets API) into a
// table. Row 0 is the header; fully blank rows are skipped.
func parseValues(values [][]interface{}) (core.Table, error) {
	if len(values) == 0 {
		return core.NewTable(nil), nil
	}
	h, err := sources.NewHeader(toStrings(values[0]))
	if err != nil {
		return core.Table{}, err
	}

	rows := make([]core.Transaction, 0, len(values)-1)
	for _, v := range values[1:] {
		row := toStrings(v)
		if isBlank(row) {
			continue
		}
		rows = append(rows, h.Transaction(row))
	}
	return core.NewTable(rows), nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func isBlank(row []string) bool {
	for _, s := range row {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
