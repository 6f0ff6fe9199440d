package store

import (
	"context"
	"time"

	"forecastlog/pkg/record"
)

// RecordStore is the remote spreadsheet holding one tab per project plus a
// dashboard aggregate. Every read returns a usable value alongside any error:
// an empty slice, or an empty table with the fixed columns.
type RecordStore interface {
	ListPartitions(ctx context.Context) ([]string, error)
	AppendRecord(ctx context.Context, r record.Record) error
	FetchRecords(ctx context.Context) (record.Table, error)
	FetchPartitionRecords(ctx context.Context, tab string) (record.Table, error)
	FetchDashboard(ctx context.Context) (record.Table, error)
	RefreshDashboard(ctx context.Context) error
}

// Timeouts bounds each operation. Larger payloads get more time.
type Timeouts struct {
	List      time.Duration
	Append    time.Duration
	Partition time.Duration
	Dashboard time.Duration
	Refresh   time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		List:      15 * time.Second,
		Append:    15 * time.Second,
		Partition: 20 * time.Second,
		Dashboard: 30 * time.Second,
		Refresh:   40 * time.Second,
	}
}

// WithDefaults fills any zero timeout from DefaultTimeouts.
func (t Timeouts) WithDefaults() Timeouts {
	d := DefaultTimeouts()
	if t.List <= 0 {
		t.List = d.List
	}
	if t.Append <= 0 {
		t.Append = d.Append
	}
	if t.Partition <= 0 {
		t.Partition = d.Partition
	}
	if t.Dashboard <= 0 {
		t.Dashboard = d.Dashboard
	}
	if t.Refresh <= 0 {
		t.Refresh = d.Refresh
	}
	return t
}
