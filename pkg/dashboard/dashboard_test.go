package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"forecastlog/pkg/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	FetchFunc    func() (record.Table, error)
	RefreshFunc  func() error
	FetchCalls   int
	RefreshCalls int
}

func (m *mockSource) FetchDashboard(ctx context.Context) (record.Table, error) {
	m.FetchCalls++
	return m.FetchFunc()
}

func (m *mockSource) RefreshDashboard(ctx context.Context) error {
	m.RefreshCalls++
	return m.RefreshFunc()
}

func sampleTable() record.Table {
	return record.DashboardTable([]record.DashboardRow{{
		ProjectTab:          "Project_A",
		Timestamp:           "2024-05-02 09:30:00",
		ProjectName:         "Acme",
		LotNumber:           "L-42",
		ExpectedInstallDate: "2024-05-01",
		StatusUpdate:        "Framing done",
	}})
}

func TestNewStartsEmpty(t *testing.T) {
	a := New(&mockSource{})
	v := a.Latest()
	assert.True(t, v.FetchedAt.IsZero())
	assert.Equal(t, record.DashboardColumns, v.Table.Columns)
	assert.Zero(t, v.Table.Len())
}

func TestLoadStoresView(t *testing.T) {
	fixed := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	oldNow := nowFunc
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = oldNow }()

	src := &mockSource{FetchFunc: func() (record.Table, error) { return sampleTable(), nil }}
	a := New(src)
	v, err := a.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), v.Table)
	assert.Equal(t, fixed, v.FetchedAt)
	assert.Equal(t, v, a.Latest())
}

func TestRefreshFailureKeepsLastView(t *testing.T) {
	src := &mockSource{
		FetchFunc:   func() (record.Table, error) { return sampleTable(), nil },
		RefreshFunc: func() error { return errors.New("refresh dashboard failed: 200 Error: locked") },
	}
	a := New(src)
	_, err := a.Load(context.Background())
	require.NoError(t, err)

	err = a.Refresh(context.Background())
	assert.EqualError(t, err, "refresh dashboard failed: 200 Error: locked")
	assert.Equal(t, 1, src.FetchCalls, "refresh must not chain a fetch")
	assert.Equal(t, sampleTable(), a.Latest().Table)
}

func TestRefreshDoesNotFetch(t *testing.T) {
	src := &mockSource{RefreshFunc: func() error { return nil }}
	a := New(src)
	require.NoError(t, a.Refresh(context.Background()))
	assert.Equal(t, 1, src.RefreshCalls)
	assert.Zero(t, src.FetchCalls)
}

func TestLoadFailureKeepsLastView(t *testing.T) {
	fail := false
	src := &mockSource{FetchFunc: func() (record.Table, error) {
		if fail {
			return record.EmptyDashboardTable(), errors.New("fetch dashboard: network error")
		}
		return sampleTable(), nil
	}}
	a := New(src)
	first, err := a.Load(context.Background())
	require.NoError(t, err)

	fail = true
	v, err := a.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, first, v)
	assert.Equal(t, first, a.Latest())
}
