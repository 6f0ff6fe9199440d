// Package dashboard presents the cross-tab aggregate built by the remote
// store. Refreshing and loading are separate actions; a failed load keeps
// the last good view on screen.
package dashboard

import (
	"context"
	"sync"
	"time"

	"forecastlog/pkg/record"

	log "github.com/sirupsen/logrus"
)

// Source is the part of the record store the dashboard needs.
type Source interface {
	FetchDashboard(ctx context.Context) (record.Table, error)
	RefreshDashboard(ctx context.Context) error
}

// View is a fetched dashboard and when it was fetched. A zero FetchedAt
// means nothing has been fetched successfully yet.
type View struct {
	Table     record.Table
	FetchedAt time.Time
}

type Aggregator struct {
	src Source

	mu   sync.Mutex
	last View
}

func New(src Source) *Aggregator {
	return &Aggregator{
		src:  src,
		last: View{Table: record.EmptyDashboardTable()},
	}
}

// Refresh asks the store to rebuild the aggregate. The displayed view is
// left untouched whatever the outcome.
func (a *Aggregator) Refresh(ctx context.Context) error {
	if err := a.src.RefreshDashboard(ctx); err != nil {
		log.Warnf("dashboard refresh failed: %v", err)
		return err
	}
	log.Info("dashboard refresh requested")
	return nil
}

// Load fetches the aggregate. On success it becomes the latest view; on
// failure the previous view is returned with the error.
func (a *Aggregator) Load(ctx context.Context) (View, error) {
	table, err := a.src.FetchDashboard(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		log.Warnf("dashboard load failed, keeping %d rows from %s: %v",
			a.last.Table.Len(), a.last.FetchedAt.Format(record.TimestampLayout), err)
		return a.last, err
	}
	a.last = View{Table: table, FetchedAt: nowFunc()}
	log.Debugf("dashboard loaded with %d rows", table.Len())
	return a.last, nil
}

// Latest returns the last successfully loaded view.
func (a *Aggregator) Latest() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

var nowFunc = time.Now
