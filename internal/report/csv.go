package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes the report as CSV: one line per row in column order, the
// header row first. Structural markers are dropped.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	record := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		for i, col := range r.Columns {
			record[i] = formatCell(row.Cells[col])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
