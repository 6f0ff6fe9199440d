package sheets

type colIdx int

// Layout of a project tab.
const (
	ColumnTimestamp           colIdx = 0
	ColumnProjectName         colIdx = 1
	ColumnLotNumber           colIdx = 2
	ColumnExpectedInstallDate colIdx = 3
	ColumnStatusUpdate        colIdx = 4
)

// Layout of the dashboard tab.
const (
	DashColumnProjectTab          colIdx = 0
	DashColumnTimestamp           colIdx = 1
	DashColumnProjectName         colIdx = 2
	DashColumnLotNumber           colIdx = 3
	DashColumnExpectedInstallDate colIdx = 4
	DashColumnStatusUpdate        colIdx = 5
)

var headerRow = []interface{}{
	"Timestamp",
	"Project Name",
	"Lot Number",
	"Expected Install Date",
	"Status Update",
}

const (
	tabRange       = "A:E"
	dashboardRange = "A:F"
)
