package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// WriteCSV writes the header followed by one record per row.
// Records are "\n"-terminated and carry no index column.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(Record(rows[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Record returns the serialized fields of r in Columns order.
func Record(r Row) []string {
	return []string{
		strconv.Itoa(r.ProductiveSeconds),
		FormatFloat(r.TaskScore),
		FormatFloat(r.FocusIndex),
		FormatFloat(r.SelfReportProductivity),
	}
}

// FormatFloat renders v in its shortest round-trip form, always with a
// fractional part (5 -> "5.0").
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
