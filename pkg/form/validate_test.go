package form

import (
	"strings"
	"testing"

	"forecastlog/pkg/record"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScenario(t *testing.T) {
	rec, errs := Validate(Selected("Project_A"), Input{
		ProjectName:         "  Acme ",
		LotNumber:           "L-42\t",
		ExpectedInstallDate: "2024-05-01",
		StatusUpdate:        " Framing done ",
	})
	require.Nil(t, errs)
	assert.Equal(t, record.Record{
		ProjectTab:          "Project_A",
		ProjectName:         "Acme",
		LotNumber:           "L-42",
		ExpectedInstallDate: "2024-05-01",
		StatusUpdate:        "Framing done",
	}, rec)
}

func TestValidateRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		tab   Selection
		in    Input
		field string
	}{
		{"no tab", NoSelection(), Input{ProjectName: "Acme", LotNumber: "1"}, FieldProjectTab},
		{"blank project", Selected("A"), Input{ProjectName: "   ", LotNumber: "1"}, FieldProjectName},
		{"empty project", Selected("A"), Input{LotNumber: "1"}, FieldProjectName},
		{"blank lot", Selected("A"), Input{ProjectName: "Acme", LotNumber: " \n"}, FieldLotNumber},
		{"bad date", Selected("A"), Input{ProjectName: "Acme", LotNumber: "1", ExpectedInstallDate: "05/01/2024"}, FieldExpectedInstallDate},
		{"impossible date", Selected("A"), Input{ProjectName: "Acme", LotNumber: "1", ExpectedInstallDate: "2024-02-30"}, FieldExpectedInstallDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, errs := Validate(tt.tab, tt.in)
			require.NotNil(t, errs)
			assert.True(t, errs.Has(tt.field), "expected error on %s, got %v", tt.field, errs)
			assert.Len(t, errs, 1)
			assert.Equal(t, record.Record{}, rec)
		})
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	_, errs := Validate(NoSelection(), Input{})
	assert.Len(t, errs, 3)
	assert.Equal(t,
		"invalid entry: lotNumber: Lot Number is required.; projectName: Project Name is required.; projectTab: Select a project tab or enter a new tab name.",
		errs.Error())
}

func TestValidateDefaultsDateToToday(t *testing.T) {
	rec, errs := Validate(Selected("A"), Input{ProjectName: "Acme", LotNumber: "1"})
	require.Nil(t, errs)
	assert.Equal(t, record.Today(), rec.ExpectedInstallDate)
}

func TestValidateGeneratedInputs(t *testing.T) {
	faker := gofakeit.New(42)
	for i := 0; i < 50; i++ {
		in := Input{
			ProjectName:         " " + faker.Company() + " ",
			LotNumber:           faker.Numerify("L-###"),
			ExpectedInstallDate: faker.Date().Format(record.DateLayout),
			StatusUpdate:        faker.Sentence(6),
		}
		tab := faker.Word()
		rec, errs := Validate(Selected(tab), in)
		require.Nil(t, errs, "input %+v", in)
		assert.Equal(t, strings.TrimSpace(in.ProjectName), rec.ProjectName)
		assert.Equal(t, in.LotNumber, rec.LotNumber)
		assert.Equal(t, in.ExpectedInstallDate, rec.ExpectedInstallDate)

		in.LotNumber = strings.Repeat(" ", i%4)
		_, errs = Validate(Selected(tab), in)
		assert.True(t, errs.Has(FieldLotNumber))
	}
}
