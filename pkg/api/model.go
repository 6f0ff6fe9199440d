package api

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"forecastlog/pkg/form"
	"forecastlog/pkg/record"
	"forecastlog/pkg/store"
)

type level string

const (
	levelSuccess level = "success"
	levelInfo    level = "info"
	levelWarning level = "warning"
	levelError   level = "error"
)

type message struct {
	Level level
	Text  string
}

// messageFor turns a store failure into a banner: network trouble is a
// warning the user can retry, anything else is an error.
func messageFor(action string, err error) message {
	if store.IsTransient(err) {
		return message{Level: levelWarning, Text: fmt.Sprintf("%s: %v. Try again.", action, err)}
	}
	if errors.Is(err, store.ErrUnsupported) {
		return message{Level: levelInfo, Text: fmt.Sprintf("%s is not available with this backend.", action)}
	}
	return message{Level: levelError, Text: fmt.Sprintf("%s: %v", action, err)}
}

// entryValues are the form fields echoed back into the page.
type entryValues struct {
	ExistingTab         string
	NewTab              string
	ProjectName         string
	LotNumber           string
	ExpectedInstallDate string
	StatusUpdate        string
}

type formPage struct {
	Title    string
	Messages []message

	Mode   form.Mode
	Forced bool
	Tabs   []string
	Values entryValues
	Errors form.FieldErrors

	ActiveTab string
	Recent    record.Table
	// RecentLoaded is false when the tab's rows could not be fetched.
	RecentLoaded bool
}

func (p formPage) IsNewMode() bool {
	return p.Mode == form.ModeNew
}

func (p formPage) ExportPath(format string) string {
	return "/tabs/" + url.PathEscape(p.ActiveTab) + "/export." + format
}

type dashboardPage struct {
	Title     string
	Messages  []message
	Table     record.Table
	FetchedAt time.Time
}

func (p dashboardPage) Loaded() bool {
	return !p.FetchedAt.IsZero()
}

func (p dashboardPage) FetchedAtText() string {
	return p.FetchedAt.Format(record.TimestampLayout)
}
