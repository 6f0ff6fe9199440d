package api

import (
	"context"

	"forecastlog/pkg/config"
	"forecastlog/pkg/sheets"
	"forecastlog/pkg/store"

	log "github.com/sirupsen/logrus"
)

// NewStore builds the RecordStore selected by cfg.Store.Backend.
func NewStore(ctx context.Context, cfg config.Config) (store.RecordStore, error) {
	timeouts := store.Timeouts{
		List:      cfg.Timeouts.List(),
		Append:    cfg.Timeouts.Append(),
		Partition: cfg.Timeouts.Partition(),
		Dashboard: cfg.Timeouts.Dashboard(),
		Refresh:   cfg.Timeouts.Refresh(),
	}
	if cfg.Store.Backend == config.BackendSheets {
		log.Infof("using Sheets API backend for spreadsheet %s", cfg.Store.SpreadsheetID)
		client, err := sheets.NewSheetClient(ctx, sheets.Config{
			SpreadsheetID:   cfg.Store.SpreadsheetID,
			CredentialsFile: cfg.Store.CredentialsFile,
			DashboardTab:    cfg.Store.DashboardTab,
			Timeouts:        timeouts,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	log.Info("using web app backend")
	client, err := store.NewWebAppClient(store.Config{
		URL:      cfg.Store.WebAppURL,
		Token:    cfg.Store.Token,
		Timeouts: timeouts,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
