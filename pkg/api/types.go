package api

// ColumnLabels maps wire column names to table headings.
var ColumnLabels = map[string]string{
	"projectTab":          "Project Tab",
	"timestamp":           "Timestamp",
	"projectName":         "Project Name",
	"lotNumber":           "Lot Number",
	"expectedInstallDate": "Expected Install Date",
	"statusUpdate":        "Status Update",
}

func columnLabel(col string) string {
	if l, ok := ColumnLabels[col]; ok {
		return l
	}
	return col
}
