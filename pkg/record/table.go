package record

// Table is a flat, display-ready view. Columns is never empty for tables
// built by this package and Rows is never nil.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns ...string) Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Table{Columns: cols, Rows: [][]string{}}
}

// EmptyRecordTable is the stable fallback for a failed partition fetch.
func EmptyRecordTable() Table {
	return NewTable(RecordColumns...)
}

// EmptyDashboardTable is the stable fallback for a failed dashboard fetch.
func EmptyDashboardTable() Table {
	return NewTable(DashboardColumns...)
}

func RecordsTable(records []Record) Table {
	t := EmptyRecordTable()
	for _, r := range records {
		t.Rows = append(t.Rows, r.ToRow())
	}
	return t
}

func DashboardTable(rows []DashboardRow) Table {
	t := EmptyDashboardTable()
	for _, r := range rows {
		t.Rows = append(t.Rows, r.ToRow())
	}
	return t
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Tail returns a table holding at most the last n rows.
func (t Table) Tail(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	out := NewTable(t.Columns...)
	out.Rows = append(out.Rows, t.Rows[len(t.Rows)-n:]...)
	return out
}
