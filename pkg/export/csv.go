package export

import (
	"encoding/csv"
	"io"

	"forecastlog/pkg/record"
)

func WriteCSV(w io.Writer, t record.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}
