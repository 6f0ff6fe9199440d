package export

import (
	"fmt"
	"io"
	"strings"

	"forecastlog/pkg/record"

	"github.com/xuri/excelize/v2"
)

const (
	defaultSheet      = "Sheet1"
	maxSheetNameRunes = 31
)

// WriteXLSX writes the table to a single-sheet workbook named after title.
func WriteXLSX(w io.Writer, t record.Table, title string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(title)
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("naming sheet: %w", err)
		}
	}
	if err := f.SetSheetRow(sheet, "A1", toCells(t.Columns)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, toCells(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	return f.Write(w)
}

// SheetName makes title usable as a worksheet name.
func SheetName(title string) string {
	title = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	title = strings.Trim(title, "'")
	if runes := []rune(title); len(runes) > maxSheetNameRunes {
		title = string(runes[:maxSheetNameRunes])
	}
	if title == "" {
		return defaultSheet
	}
	return title
}

func toCells(values []string) *[]interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return &cells
}
