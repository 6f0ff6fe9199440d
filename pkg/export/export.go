package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"forecastlog/pkg/record"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write exports the whole table: a column-name header row then every row.
func Write(w io.Writer, t record.Table, f Format, title string) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t, title)
	}
	return fmt.Errorf("unknown export format %q", f)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName builds a download name such as "Project_A.csv".
func FileName(base string, f Format) string {
	base = strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(base), "_"), "._")
	if base == "" {
		base = "export"
	}
	return base + "." + string(f)
}
