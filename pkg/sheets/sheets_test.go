package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"forecastlog/pkg/record"
	"forecastlog/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetID = "sheet-1"

// fakeSheets emulates the few Sheets REST endpoints the client uses.
type fakeSheets struct {
	mu           sync.Mutex
	titles       []string
	values       map[string][][]interface{}
	failStatus   int
	appendRanges []string
	appended     [][]interface{}
	headers      map[string][]interface{}
	added        []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED"}}`))
		return
	}

	prefix := "/v4/spreadsheets/" + spreadsheetID
	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == prefix:
		var resp sheets.Spreadsheet
		for _, title := range f.titles {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}})
		}
		_ = json.NewEncoder(w).Encode(resp)
	case r.Method == http.MethodPost && path == prefix+":batchUpdate":
		var req sheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		for _, rq := range req.Requests {
			if rq.AddSheet != nil {
				f.titles = append(f.titles, rq.AddSheet.Properties.Title)
				f.added = append(f.added, rq.AddSheet.Properties.Title)
			}
		}
		_, _ = w.Write([]byte(`{}`))
	case strings.HasPrefix(path, prefix+"/values/"):
		rng := strings.TrimPrefix(path, prefix+"/values/")
		var body sheets.ValueRange
		switch r.Method {
		case http.MethodPost:
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.appendRanges = append(f.appendRanges, strings.TrimSuffix(rng, ":append"))
			f.appended = append(f.appended, body.Values...)
			_, _ = w.Write([]byte(`{}`))
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&body)
			if f.headers == nil {
				f.headers = map[string][]interface{}{}
			}
			f.headers[tabOf(rng)] = body.Values[0]
			_, _ = w.Write([]byte(`{}`))
		default:
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"range":  rng,
				"values": f.values[tabOf(rng)],
			})
		}
	default:
		http.NotFound(w, r)
	}
}

func tabOf(rng string) string {
	tab := rng[:strings.LastIndex(rng, "!")]
	tab = strings.TrimSuffix(strings.TrimPrefix(tab, "'"), "'")
	return strings.ReplaceAll(tab, "''", "'")
}

func newTestClient(t *testing.T, fake *fakeSheets) *SheetClient {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client, err := NewSheetClient(context.Background(), Config{SpreadsheetID: spreadsheetID},
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return client
}

func TestNewSheetClientRequiresID(t *testing.T) {
	_, err := NewSheetClient(context.Background(), Config{}, option.WithoutAuthentication())
	assert.Error(t, err)
}

func TestListPartitionsSkipsDashboard(t *testing.T) {
	client := newTestClient(t, &fakeSheets{titles: []string{"Project_A", "Dashboard", "Project_B"}})
	names, err := client.ListPartitions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Project_A", "Project_B"}, names)
}

func TestListPartitionsError(t *testing.T) {
	client := newTestClient(t, &fakeSheets{failStatus: http.StatusForbidden})
	names, err := client.ListPartitions(context.Background())
	assert.NotNil(t, names)
	assert.Empty(t, names)
	var se *store.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, store.KindServer, se.Kind)
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Equal(t, "The caller does not have permission", se.Body)
}

func TestAppendRecordCreatesTab(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	oldNow := nowFunc
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = oldNow }()

	fake := &fakeSheets{titles: []string{"Dashboard"}}
	client := newTestClient(t, fake)
	err := client.AppendRecord(context.Background(), record.Record{
		ProjectTab:          "Project_A",
		ProjectName:         "Acme",
		LotNumber:           "L-42",
		ExpectedInstallDate: "2024-05-01",
		StatusUpdate:        "Framing done",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Project_A"}, fake.added)
	assert.Equal(t, headerRow, fake.headers["Project_A"])
	assert.Equal(t, []string{"'Project_A'!A:E"}, fake.appendRanges)
	assert.Equal(t, [][]interface{}{
		{"2024-05-01 08:30:00", "'Acme", "'L-42", "2024-05-01", "'Framing done"},
	}, fake.appended)
}

func TestAppendRecordExistingTab(t *testing.T) {
	fake := &fakeSheets{titles: []string{"Project_A"}}
	client := newTestClient(t, fake)
	require.NoError(t, client.AppendRecord(context.Background(), record.Record{ProjectTab: "Project_A", ProjectName: "Acme", LotNumber: "1"}))
	assert.Empty(t, fake.added)
	assert.Len(t, fake.appended, 1)
}

func TestAppendRecordRejectsDashboardTab(t *testing.T) {
	fake := &fakeSheets{}
	client := newTestClient(t, fake)
	err := client.AppendRecord(context.Background(), record.Record{ProjectTab: "Dashboard", ProjectName: "Acme", LotNumber: "1"})
	assert.Error(t, err)
	assert.Empty(t, fake.appended)
}

func TestFetchPartitionRecords(t *testing.T) {
	fake := &fakeSheets{values: map[string][][]interface{}{
		"Project_A": {
			{"Timestamp", "Project Name", "Lot Number", "Expected Install Date", "Status Update"},
			{45413.5, "Acme", float64(42), float64(45413), "Framing done"},
			{"", "", "", "", ""},
			{45414.0, "Acme", "L-43"},
		},
	}}
	client := newTestClient(t, fake)
	table, err := client.FetchPartitionRecords(context.Background(), "Project_A")
	require.NoError(t, err)
	assert.Equal(t, record.RecordColumns, table.Columns)
	assert.Equal(t, [][]string{
		{"Project_A", "Acme", "42", "2024-05-01", "Framing done"},
		{"Project_A", "Acme", "L-43", "", ""},
	}, table.Rows)
}

func TestFetchPartitionRecordsError(t *testing.T) {
	client := newTestClient(t, &fakeSheets{failStatus: http.StatusForbidden})
	table, err := client.FetchPartitionRecords(context.Background(), "Project_A")
	assert.Error(t, err)
	assert.Equal(t, record.RecordColumns, table.Columns)
	assert.Zero(t, table.Len())
}

func TestFetchDashboard(t *testing.T) {
	fake := &fakeSheets{values: map[string][][]interface{}{
		"Dashboard": {
			{"Project Tab", "Timestamp", "Project Name", "Lot Number", "Expected Install Date", "Status Update"},
			{"Project_A", 45413.5, "Acme", "L-42", float64(45413), "Framing done"},
		},
	}}
	client := newTestClient(t, fake)
	table, err := client.FetchDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Project_A", "2024-05-01 12:00:00", "Acme", "L-42", "2024-05-01", "Framing done"},
	}, table.Rows)
}

func TestRefreshDashboardUnsupported(t *testing.T) {
	client := newTestClient(t, &fakeSheets{})
	err := client.RefreshDashboard(context.Background())
	assert.ErrorIs(t, err, store.ErrUnsupported)
}

func TestA1(t *testing.T) {
	assert.Equal(t, "'Project_A'!A:E", a1("Project_A", "A:E"))
	assert.Equal(t, "'Bob''s Lot'!A1:E1", a1("Bob's Lot", "A1:E1"))
}

func TestSerialToDate(t *testing.T) {
	assert.Equal(t, "2024-07-01", serialToDate("45474"))
	assert.Equal(t, "2024-05-01", serialToDate("2024-05-01"))
	assert.Equal(t, "", serialToDate(""))
	assert.Equal(t, "0", serialToDate("0"))
}
