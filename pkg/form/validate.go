package form

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"forecastlog/pkg/record"
)

const (
	FieldProjectTab          = "projectTab"
	FieldProjectName         = "projectName"
	FieldLotNumber           = "lotNumber"
	FieldExpectedInstallDate = "expectedInstallDate"
)

// Input is the raw entry as typed by the user.
type Input struct {
	ProjectName string
	LotNumber   string
	// ExpectedInstallDate is YYYY-MM-DD. Blank means today.
	ExpectedInstallDate string
	StatusUpdate        string
}

// FieldErrors maps a field name to its problem.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, fe[f]))
	}
	return "invalid entry: " + strings.Join(parts, "; ")
}

// Has reports whether field has an error.
func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Validate checks an entry for tab, builds the record to append, and returns
// nil FieldErrors when it can be submitted.
func Validate(tab Selection, in Input) (record.Record, FieldErrors) {
	errs := FieldErrors{}

	name, ok := tab.Name()
	if !ok {
		errs[FieldProjectTab] = "Select a project tab or enter a new tab name."
	}
	projectName := strings.TrimSpace(in.ProjectName)
	if projectName == "" {
		errs[FieldProjectName] = "Project Name is required."
	}
	lotNumber := strings.TrimSpace(in.LotNumber)
	if lotNumber == "" {
		errs[FieldLotNumber] = "Lot Number is required."
	}

	date := strings.TrimSpace(in.ExpectedInstallDate)
	if date == "" {
		date = record.Today()
	} else if t, err := time.Parse(record.DateLayout, date); err != nil {
		errs[FieldExpectedInstallDate] = "Expected Install Date must be YYYY-MM-DD."
	} else {
		date = t.Format(record.DateLayout)
	}

	if len(errs) > 0 {
		return record.Record{}, errs
	}
	return record.Record{
		ProjectTab:          name,
		ProjectName:         projectName,
		LotNumber:           lotNumber,
		ExpectedInstallDate: date,
		StatusUpdate:        strings.TrimSpace(in.StatusUpdate),
	}, nil
}
