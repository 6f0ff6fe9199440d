package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"forecastlog/pkg/record"
	"forecastlog/pkg/store"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Config struct {
	SpreadsheetID string
	// CredentialsFile is a service account key. Empty uses application
	// default credentials unless opts say otherwise.
	CredentialsFile string
	DashboardTab    string
	Timeouts        store.Timeouts
}

// SheetClient is a RecordStore that reads and writes the spreadsheet through
// the Sheets API instead of a deployed web app. The dashboard tab is
// maintained by the spreadsheet itself, so it can be read but not rebuilt.
type SheetClient struct {
	service       *sheets.Service
	spreadsheetID string
	dashboardTab  string
	timeouts      store.Timeouts
}

var _ store.RecordStore = (*SheetClient)(nil)

func NewSheetClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*SheetClient, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet ID is required")
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	if cfg.DashboardTab == "" {
		cfg.DashboardTab = "Dashboard"
	}
	return &SheetClient{
		service:       srv,
		spreadsheetID: cfg.SpreadsheetID,
		dashboardTab:  cfg.DashboardTab,
		timeouts:      cfg.Timeouts.WithDefaults(),
	}, nil
}

func (s *SheetClient) ListPartitions(ctx context.Context) ([]string, error) {
	const op = "list tabs"
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.List)
	defer cancel()

	titles, err := s.sheetTitles(ctx)
	if err != nil {
		return []string{}, wrapErr(op, err)
	}
	names := make([]string, 0, len(titles))
	for _, title := range titles {
		if title != s.dashboardTab {
			names = append(names, title)
		}
	}
	return names, nil
}

func (s *SheetClient) AppendRecord(ctx context.Context, r record.Record) error {
	const op = "append"
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Append)
	defer cancel()

	tab := strings.TrimSpace(r.ProjectTab)
	if tab == "" {
		return &store.Error{Op: op, Kind: store.KindServer, Err: store.ErrNoPartition}
	}
	if tab == s.dashboardTab {
		return &store.Error{Op: op, Kind: store.KindServer, Err: fmt.Errorf("%q is reserved for the dashboard", tab)}
	}
	if err := s.EnsureSheetExists(ctx, tab); err != nil {
		return wrapErr(op, err)
	}
	row := []interface{}{
		nowFunc().Format(record.TimestampLayout),
		"'" + r.ProjectName,
		"'" + r.LotNumber,
		r.ExpectedInstallDate,
		"'" + r.StatusUpdate,
	}
	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		a1(tab, tabRange),
		&sheets.ValueRange{Values: [][]interface{}{row}},
	).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return wrapErr(op, err)
	}
	log.WithField("tab", tab).Debug("appended record")
	return nil
}

// FetchRecords has no single default tab to read in this backend.
func (s *SheetClient) FetchRecords(ctx context.Context) (record.Table, error) {
	return record.EmptyRecordTable(), &store.Error{Op: "fetch records", Kind: store.KindServer, Err: store.ErrUnsupported}
}

func (s *SheetClient) FetchPartitionRecords(ctx context.Context, tab string) (record.Table, error) {
	const op = "fetch tab"
	tab = strings.TrimSpace(tab)
	if tab == "" {
		return record.EmptyRecordTable(), &store.Error{Op: op, Kind: store.KindServer, Err: store.ErrNoPartition}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Partition)
	defer cancel()

	values, err := s.readRange(ctx, a1(tab, tabRange))
	if err != nil {
		return record.EmptyRecordTable(), wrapErr(op, err)
	}
	var records []record.Record
	for _, row := range dataRows(values) {
		records = append(records, record.Record{
			ProjectTab:          tab,
			ProjectName:         cell(row, ColumnProjectName),
			LotNumber:           cell(row, ColumnLotNumber),
			ExpectedInstallDate: serialToDate(cell(row, ColumnExpectedInstallDate)),
			StatusUpdate:        cell(row, ColumnStatusUpdate),
		})
	}
	return record.RecordsTable(records), nil
}

func (s *SheetClient) FetchDashboard(ctx context.Context) (record.Table, error) {
	const op = "fetch dashboard"
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Dashboard)
	defer cancel()

	values, err := s.readRange(ctx, a1(s.dashboardTab, dashboardRange))
	if err != nil {
		return record.EmptyDashboardTable(), wrapErr(op, err)
	}
	var rows []record.DashboardRow
	for _, row := range dataRows(values) {
		rows = append(rows, record.DashboardRow{
			ProjectTab:          cell(row, DashColumnProjectTab),
			Timestamp:           record.NormalizeTimestamp(cell(row, DashColumnTimestamp)),
			ProjectName:         cell(row, DashColumnProjectName),
			LotNumber:           cell(row, DashColumnLotNumber),
			ExpectedInstallDate: serialToDate(cell(row, DashColumnExpectedInstallDate)),
			StatusUpdate:        cell(row, DashColumnStatusUpdate),
		})
	}
	return record.DashboardTable(rows), nil
}

func (s *SheetClient) RefreshDashboard(ctx context.Context) error {
	return &store.Error{Op: "refresh dashboard", Kind: store.KindServer, Err: store.ErrUnsupported}
}

// EnsureSheetExists adds the tab with a header row if it is missing.
func (s *SheetClient) EnsureSheetExists(ctx context.Context, tab string) error {
	// 1. Get spreadsheet metadata
	titles, err := s.sheetTitles(ctx)
	if err != nil {
		return err
	}
	// 2. Check if sheet exists
	for _, title := range titles {
		if title == tab {
			return nil
		}
	}
	// 3. Add the sheet if not found, header frozen
	addSheetReq := &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: tab,
				GridProperties: &sheets.GridProperties{
					FrozenRowCount: 1,
				},
			},
		},
	}
	_, err = s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{addSheetReq},
	}).Context(ctx).Do()
	if err != nil {
		return err
	}
	log.WithField("tab", tab).Info("created project tab")
	// 4. Write the header
	_, err = s.service.Spreadsheets.Values.Update(
		s.spreadsheetID,
		a1(tab, "A1:E1"),
		&sheets.ValueRange{Values: [][]interface{}{headerRow}},
	).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (s *SheetClient) sheetTitles(ctx context.Context) ([]string, error) {
	ss, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (s *SheetClient) readRange(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// a1 builds an A1 range, quoting the tab name.
func a1(tab, cells string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cells
}

// dataRows drops the header row and blank rows.
func dataRows(values [][]interface{}) [][]interface{} {
	if len(values) == 0 {
		return nil
	}
	out := make([][]interface{}, 0, len(values)-1)
	for _, row := range values[1:] {
		blank := true
		for _, v := range row {
			if cellString(v) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}

func cell(row []interface{}, i colIdx) string {
	if int(i) < len(row) {
		return cellString(row[i])
	}
	return ""
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// serialToDate renders a spreadsheet date serial as YYYY-MM-DD.
func serialToDate(s string) string {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return record.NormalizeDate(s)
	}
	ts := record.NormalizeTimestamp(s)
	if len(ts) >= len(record.DateLayout) && ts != s {
		return ts[:len(record.DateLayout)]
	}
	return s
}

func wrapErr(op string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		log.WithFields(log.Fields{"op": op, "status": gErr.Code}).Warnf("Sheets API error: %s", gErr.Message)
		return &store.Error{Op: op, Kind: store.KindServer, StatusCode: gErr.Code, Body: gErr.Message}
	}
	log.WithField("op", op).Warnf("Sheets API unreachable: %v", err)
	return &store.Error{Op: op, Kind: store.KindTransport, Err: err}
}

var nowFunc = time.Now
