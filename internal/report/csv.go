package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"rootfind/internal/rootfind"
)

// WriteCSV exports a run trace with a k column, the method columns and the residual.
func WriteCSV(w io.Writer, m rootfind.Method, iters []rootfind.Iter) error {
	cw := csv.NewWriter(w)

	header := append([]string{"k"}, m.Columns()...)
	header = append(header, "residual")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, it := range iters {
		row := make([]string, 0, len(it.Values)+2)
		row = append(row, strconv.Itoa(it.K))
		for _, v := range it.Values {
			row = append(row, fmtFloat(v))
		}
		row = append(row, fmtFloat(it.Residual))
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}
