package record

import "time"

// DateLayout is the ISO-8601 calendar date used on the wire.
const DateLayout = "2006-01-02"

// TimestampLayout is how dashboard timestamps are displayed and exported.
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one submitted project-status entry. Field order is the wire order.
type Record struct {
	ProjectTab          string `json:"projectTab"`
	ProjectName         string `json:"projectName"`
	LotNumber           string `json:"lotNumber"`
	ExpectedInstallDate string `json:"expectedInstallDate"`
	StatusUpdate        string `json:"statusUpdate"`
}

// DashboardRow is one row of the cross-tab aggregate built by the remote store.
type DashboardRow struct {
	ProjectTab          string `json:"projectTab"`
	Timestamp           string `json:"timestamp"`
	ProjectName         string `json:"projectName"`
	LotNumber           string `json:"lotNumber"`
	ExpectedInstallDate string `json:"expectedInstallDate"`
	StatusUpdate        string `json:"statusUpdate"`
}

type colIdx int

const (
	ColumnProjectTab          colIdx = 0
	ColumnProjectName         colIdx = 1
	ColumnLotNumber           colIdx = 2
	ColumnExpectedInstallDate colIdx = 3
	ColumnStatusUpdate        colIdx = 4
)

var RecordColumns = []string{
	"projectTab",
	"projectName",
	"lotNumber",
	"expectedInstallDate",
	"statusUpdate",
}

var DashboardColumns = []string{
	"projectTab",
	"timestamp",
	"projectName",
	"lotNumber",
	"expectedInstallDate",
	"statusUpdate",
}

// ToRow returns the record's cells in RecordColumns order.
func (r Record) ToRow() []string {
	return []string{
		r.ProjectTab,
		r.ProjectName,
		r.LotNumber,
		r.ExpectedInstallDate,
		r.StatusUpdate,
	}
}

// ToRow returns the row's cells in DashboardColumns order.
func (d DashboardRow) ToRow() []string {
	return []string{
		d.ProjectTab,
		d.Timestamp,
		d.ProjectName,
		d.LotNumber,
		d.ExpectedInstallDate,
		d.StatusUpdate,
	}
}

// Today returns the current local date in DateLayout.
func Today() string {
	return nowFunc().Format(DateLayout)
}

var nowFunc = time.Now
