package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

func TestParseMultiHeader_DomainAllYears(t *testing.T) {
	rows := [][]string{
		{"Investeringsuitgaven per beleidsdomein"},
		{"", "", "2014", "2024", "2024", "2040"},
		{},
		{"", "", "0 Algemene financiering", "0 Algemene financiering", "Total", "0 Algemene financiering"},
		{"Grondgebied", "Bestuur", "", "", "", ""},
		{"Gemeente en OCMW Aalst", "Total", "10", "20", "30", "5"},
		{"Gemeente en OCMW Aalst", "Total", "99", "", "", ""},
		{"Gemeente en OCMW Gent", "OCMW", "1", "", "", ""},
	}
	res, err := ParseMultiHeader(rows, MultiHeaderOptions{
		LeadColumns:     2,
		AttributeColumn: 1,
		ReportYearRow:   -1,
		YearRow:         1,
		DomainRow:       3,
		MinYear:         2014,
		MaxYear:         2031,
		Entities:        resolve.Default,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.SkippedColumns)
	assert.Equal(t, 1, res.DuplicateEntities)
	require.Len(t, res.Records, 3)

	assert.Equal(t, Record{
		Entity: "aalst", EntityName: "Aalst", Code: "0", Label: "0 Algemene financiering",
		Amount: 10, Kind: KindDetail, Year: 2014,
	}, res.Records[0])
	assert.Equal(t, 2024, res.Records[1].Year)
	assert.Equal(t, KindTotal, res.Records[2].Kind)
	assert.InDelta(t, 30, res.Records[2].Amount, 1e-9)
}

func TestParseMultiHeader_CompositeHeaders(t *testing.T) {
	rows := [][]string{
		{"Grondgebied", "2024\n0 Algemene financiering", "2024\n1 Zich verplaatsen", "Opmerking"},
		{"Aalst", "1,5", "2", "x"},
	}
	res, err := ParseMultiHeader(rows, MultiHeaderOptions{ReportYearRow: -1, YearRow: -1, DomainRow: -1})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.SkippedColumns)
	assert.Equal(t, "0", res.Records[0].Code)
	assert.Equal(t, "1 Zich verplaatsen", res.Records[1].Label)
	assert.Equal(t, 2024, res.Records[1].Year)
}

func TestParseMultiHeader_PlansSkipForeignYears(t *testing.T) {
	rows := [][]string{
		{"Rapportjaar", "2020", "", "2026"},
		{"Boekjaar", "2021", "2026", "2026"},
		{"Rekening", "REK22 Gebouwen", "REK22 Gebouwen", "REK22 Gebouwen"},
		{"Bestuur", "", "", ""},
		{"Provincie Limburg", "1", "2", "3"},
	}
	res, err := ParseMultiHeader(rows, MultiHeaderOptions{
		EntityHeader:  "Bestuur",
		ReportYearRow: 0,
		YearRow:       1,
		DomainRow:     2,
		Entities:      resolve.ProvinceNames,
		Plans:         DefaultPlans(),
	})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.SkippedColumns)
	assert.Equal(t, "limburg", res.Records[0].Entity)
	assert.Equal(t, "2020-2025", res.Records[0].Period)
	assert.Equal(t, "2026-2031", res.Records[1].Period)
	assert.InDelta(t, 3, res.Records[1].Amount, 1e-9)
}

func TestParseMultiHeader_StructuralErrors(t *testing.T) {
	var se *StructuralError

	_, err := ParseMultiHeader([][]string{{"Naam", "1"}}, MultiHeaderOptions{YearRow: -1, ReportYearRow: -1, DomainRow: -1})
	require.True(t, errors.As(err, &se))

	_, err = ParseMultiHeader([][]string{{"Grondgebied", "2024"}}, MultiHeaderOptions{YearRow: 3, ReportYearRow: -1, DomainRow: -1})
	require.True(t, errors.As(err, &se))

	_, err = ParseMultiHeader([][]string{{"", "x"}, {"Grondgebied", ""}}, MultiHeaderOptions{YearRow: 0, ReportYearRow: -1, DomainRow: -1})
	require.True(t, errors.As(err, &se))
}

func TestPlans_Period(t *testing.T) {
	plans := DefaultPlans()

	p, ok := plans.Period(2020, 2021)
	require.True(t, ok)
	assert.Equal(t, "2020-2025", p)

	_, ok = plans.Period(2020, 2026)
	assert.False(t, ok)

	p, ok = plans.Period(0, 2026)
	require.True(t, ok)
	assert.Equal(t, "2026-2031", p)

	assert.Equal(t, []string{"2014-2019", "2020-2025", "2026-2031"}, plans.Names())
}
