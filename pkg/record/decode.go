package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrUnexpectedShape is returned when a response body does not have the
// expected JSON layout.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// Cell is a scalar spreadsheet value. Strings, numbers, booleans and null are
// accepted; objects and arrays are a shape error.
type Cell string

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty cell", ErrUnexpectedShape)
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		*c = Cell(s)
	case 'n':
		*c = ""
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		*c = Cell(strconv.FormatBool(b))
	case '{', '[':
		return fmt.Errorf("%w: cell holds %s", ErrUnexpectedShape, kindOf(data[0]))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		*c = Cell(n.String())
	}
	return nil
}

func kindOf(b byte) string {
	if b == '{' {
		return "an object"
	}
	return "an array"
}

type recordJSON struct {
	ProjectTab          Cell `json:"projectTab"`
	ProjectName         Cell `json:"projectName"`
	LotNumber           Cell `json:"lotNumber"`
	ExpectedInstallDate Cell `json:"expectedInstallDate"`
	StatusUpdate        Cell `json:"statusUpdate"`
}

type dashboardJSON struct {
	ProjectTab          Cell `json:"projectTab"`
	Timestamp           Cell `json:"timestamp"`
	ProjectName         Cell `json:"projectName"`
	LotNumber           Cell `json:"lotNumber"`
	ExpectedInstallDate Cell `json:"expectedInstallDate"`
	StatusUpdate        Cell `json:"statusUpdate"`
}

// objects splits a JSON array of objects, rejecting anything else.
func objects(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrUnexpectedShape)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrUnexpectedShape, i)
		}
	}
	return items, nil
}

// DecodeRecords parses a JSON array of Record objects. Unknown keys are dropped.
func DecodeRecords(data []byte) ([]Record, error) {
	items, err := objects(data)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(items))
	for i, item := range items {
		var r recordJSON
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, wrapShape(err))
		}
		records = append(records, Record{
			ProjectTab:          string(r.ProjectTab),
			ProjectName:         string(r.ProjectName),
			LotNumber:           string(r.LotNumber),
			ExpectedInstallDate: NormalizeDate(string(r.ExpectedInstallDate)),
			StatusUpdate:        string(r.StatusUpdate),
		})
	}
	return records, nil
}

// DecodeDashboardRows parses a JSON array of Dashboard Row objects.
func DecodeDashboardRows(data []byte) ([]DashboardRow, error) {
	items, err := objects(data)
	if err != nil {
		return nil, err
	}
	rows := make([]DashboardRow, 0, len(items))
	for i, item := range items {
		var d dashboardJSON
		if err := json.Unmarshal(item, &d); err != nil {
			return nil, fmt.Errorf("dashboard row %d: %w", i, wrapShape(err))
		}
		rows = append(rows, DashboardRow{
			ProjectTab:          string(d.ProjectTab),
			Timestamp:           NormalizeTimestamp(string(d.Timestamp)),
			ProjectName:         string(d.ProjectName),
			LotNumber:           string(d.LotNumber),
			ExpectedInstallDate: NormalizeDate(string(d.ExpectedInstallDate)),
			StatusUpdate:        string(d.StatusUpdate),
		})
	}
	return rows, nil
}

// DecodeTabNames parses a JSON array of tab name strings. Blank names are skipped.
func DecodeTabNames(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrUnexpectedShape)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out, nil
}

func wrapShape(err error) error {
	if errors.Is(err, ErrUnexpectedShape) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
}

// maxSerial is 9999-12-31, the last date a spreadsheet can hold.
const maxSerial = 2958465

// NormalizeDate reduces ISO datetimes to their calendar date. Date cells
// arrive as midnight in the spreadsheet's zone expressed in UTC, so the
// instant is rounded to the nearest UTC day, which holds for zones from
// UTC-11 to UTC+12. Anything it cannot parse is returned unchanged.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := time.Parse(DateLayout, s); err == nil {
		return s
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Add(12 * time.Hour).Format(DateLayout)
	}
	return s
}

// NormalizeTimestamp renders spreadsheet serial numbers and ISO datetimes as
// TimestampLayout. Anything else is returned unchanged.
func NormalizeTimestamp(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(serial) || serial <= 0 || serial > maxSerial {
			return s
		}
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(TimestampLayout)
		}
		return s
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(TimestampLayout)
	}
	return s
}
