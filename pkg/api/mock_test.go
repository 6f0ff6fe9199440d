package api

import (
	"context"

	"forecastlog/pkg/record"
)

type mockStore struct {
	ListPartitionsFunc        func() ([]string, error)
	AppendRecordFunc          func(r record.Record) error
	FetchRecordsFunc          func() (record.Table, error)
	FetchPartitionRecordsFunc func(tab string) (record.Table, error)
	FetchDashboardFunc        func() (record.Table, error)
	RefreshDashboardFunc      func() error

	Calls         []string
	AppendedCalls []record.Record
}

func (m *mockStore) ListPartitions(ctx context.Context) ([]string, error) {
	m.Calls = append(m.Calls, "ListPartitions")
	if m.ListPartitionsFunc == nil {
		return []string{}, nil
	}
	return m.ListPartitionsFunc()
}

func (m *mockStore) AppendRecord(ctx context.Context, r record.Record) error {
	m.Calls = append(m.Calls, "AppendRecord")
	m.AppendedCalls = append(m.AppendedCalls, r)
	if m.AppendRecordFunc == nil {
		return nil
	}
	return m.AppendRecordFunc(r)
}

func (m *mockStore) FetchRecords(ctx context.Context) (record.Table, error) {
	m.Calls = append(m.Calls, "FetchRecords")
	if m.FetchRecordsFunc == nil {
		return record.EmptyRecordTable(), nil
	}
	return m.FetchRecordsFunc()
}

func (m *mockStore) FetchPartitionRecords(ctx context.Context, tab string) (record.Table, error) {
	m.Calls = append(m.Calls, "FetchPartitionRecords")
	if m.FetchPartitionRecordsFunc == nil {
		return record.EmptyRecordTable(), nil
	}
	return m.FetchPartitionRecordsFunc(tab)
}

func (m *mockStore) FetchDashboard(ctx context.Context) (record.Table, error) {
	m.Calls = append(m.Calls, "FetchDashboard")
	if m.FetchDashboardFunc == nil {
		return record.EmptyDashboardTable(), nil
	}
	return m.FetchDashboardFunc()
}

func (m *mockStore) RefreshDashboard(ctx context.Context) error {
	m.Calls = append(m.Calls, "RefreshDashboard")
	if m.RefreshDashboardFunc == nil {
		return nil
	}
	return m.RefreshDashboardFunc()
}
