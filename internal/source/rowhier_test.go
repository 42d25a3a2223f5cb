package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

func details(res *Result) []Record {
	var out []Record
	for _, r := range res.Records {
		if r.Kind == KindDetail && r.HasFact() {
			out = append(out, r)
		}
	}
	return out
}

func TestParseRowHierarchy_Pivot(t *testing.T) {
	rows := [][]string{
		{"Investeringsuitgaven per rekening"},
		{"Niveau 1", "Niveau 2", "Alg. rekening", "Gemeente en OCMW Aalst", "Gemeente en OCMW Gent", "Total"},
		{"I Investeringen", "", "", "", "", ""},
		{"", "I.1 Wegen", "", "", "", ""},
		{"", "", "REK100 Roads", "100,50", "0", "100,50"},
		{"", "", "REK200 Bridges", "", "20", "20"},
		{"Total", "", "", "100,50", "20", "120,50"},
	}

	res, err := ParseRowHierarchy(rows, RowHierarchyOptions{
		Name:             "test",
		FirstLevelHeader: "Niveau 1",
		Entities:         resolve.Default,
	})
	require.NoError(t, err)

	got := details(res)
	require.Len(t, got, 2)

	assert.Equal(t, "aalst", got[0].Entity)
	assert.Equal(t, "Aalst", got[0].EntityName)
	assert.Equal(t, "REK100", got[0].Code)
	assert.Equal(t, "REK100 Roads", got[0].Label)
	assert.Equal(t, 2, got[0].Depth)
	assert.Equal(t, []string{"I Investeringen", "I.1 Wegen"}, got[0].Path)
	assert.InDelta(t, 100.5, got[0].Amount, 1e-9)

	assert.Equal(t, "gent", got[1].Entity)
	assert.Equal(t, "REK200", got[1].Code)

	// The sibling total row is a total record and never a detail.
	var totals []Record
	for _, r := range res.Records {
		if r.Kind == KindTotal && r.HasFact() {
			totals = append(totals, r)
		}
	}
	require.Len(t, totals, 2)
	assert.Equal(t, "total:Total", totals[0].NodeKey())
	assert.Empty(t, totals[0].Path)

	// Zero amounts are never stored.
	for _, r := range res.Records {
		if r.Entity != "" {
			assert.NotZero(t, r.Amount)
		}
	}
	assert.Equal(t, []string{"aalst", "gent"}, res.Entities())
}

func TestParseRowHierarchy_GroupRowsAreMetadataOnly(t *testing.T) {
	rows := [][]string{
		{"Niveau 1", "Alg. rekening", "Aalst"},
		{"I Investeringen", "", ""},
		{"", "REK100 Roads", "5"},
	}
	res, err := ParseRowHierarchy(rows, RowHierarchyOptions{FirstLevelHeader: "Niveau 1"})
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	group := res.Records[0]
	assert.False(t, group.HasFact())
	assert.Equal(t, KindTotal, group.Kind)
	assert.Equal(t, "total:I Investeringen", group.NodeKey())
	assert.Equal(t, "REK100", res.Records[1].NodeKey())
}

func TestParseRowHierarchy_DimensionsAndPlans(t *testing.T) {
	rows := [][]string{
		{"Bestuur", "Rapportjaar", "Boekjaar", "Beleidsdomein", "Beleidsveld", "Provincie Antwerpen", "Provincie Limburg"},
		{"Meerjarenplan", "2020", "2021", "0 Algemene financiering", "0010 Algemene verrichtingen", "10", "5"},
		{"", "", "2026", "", "0010 Algemene verrichtingen", "7", ""},
		{"", "2026", "2026", "", "0010 Algemene verrichtingen", "3", "abc"},
		{"", "Total", "", "", "", "99", "99"},
		{"Jaarrekening", "2020", "2021", "", "0010 Algemene verrichtingen", "1000", ""},
	}

	res, err := ParseRowHierarchy(rows, RowHierarchyOptions{
		AccountHeader:    "Beleidsveld",
		FirstLevelHeader: "Beleidsdomein",
		YearHeader:       "Boekjaar",
		ReportYearHeader: "Rapportjaar",
		FilterHeader:     "Bestuur",
		FilterValue:      "Meerjarenplan",
		Entities:         resolve.ProvinceNames,
		Plans:            DefaultPlans(),
	})
	require.NoError(t, err)

	got := details(res)
	require.Len(t, got, 3)
	assert.Equal(t, Record{
		Entity: "antwerpen", EntityName: "Antwerpen", Code: "0010", Label: "0010 Algemene verrichtingen",
		Amount: 10, Kind: KindDetail, Depth: 1, Path: []string{"0 Algemene financiering"},
		Year: 2021, Period: "2020-2025",
	}, got[0])
	assert.Equal(t, "limburg", got[1].Entity)
	assert.Equal(t, 2026, got[2].Year)
	assert.Equal(t, "2026-2031", got[2].Period)
	assert.InDelta(t, 3, got[2].Amount, 1e-9)
	assert.Equal(t, 1, res.InvalidCells)
}

func TestParseRowHierarchy_StructuralErrors(t *testing.T) {
	_, err := ParseRowHierarchy([][]string{{"Grondgebied", "Aalst"}}, RowHierarchyOptions{Name: "rek"})
	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "rek", se.Source)
	assert.Contains(t, err.Error(), "Alg. rekening")

	_, err = ParseRowHierarchy([][]string{{"Alg. rekening", "Total"}}, RowHierarchyOptions{})
	assert.True(t, errors.As(err, &se))

	_, err = ParseRowHierarchy([][]string{{"Alg. rekening", "Aalst"}}, RowHierarchyOptions{YearHeader: "Boekjaar"})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.Row)
}

func TestParseRowHierarchy_SpelledOutLevelsIndependentOfOrder(t *testing.T) {
	header := []string{"Niveau 1", "Niveau 2", "Niveau 3", "Alg. rekening", "Aalst"}
	body := [][]string{
		{"I Investeringen", "I.1 Wegen", "I.1.a Lokaal", "REK100 Roads", "10"},
		{"I Investeringen", "I.2 Gebouwen", "", "REK200 Buildings", "20"},
		{"II Ontvangsten", "", "", "REK300 Grants", "30"},
	}
	want := map[string]struct {
		path  []string
		depth int
	}{
		"REK100": {[]string{"I Investeringen", "I.1 Wegen", "I.1.a Lokaal"}, 3},
		"REK200": {[]string{"I Investeringen", "I.2 Gebouwen"}, 2},
		"REK300": {[]string{"II Ontvangsten"}, 1},
	}

	orders := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, order := range orders {
		rows := [][]string{header}
		for _, i := range order {
			rows = append(rows, body[i])
		}
		res, err := ParseRowHierarchy(rows, RowHierarchyOptions{FirstLevelHeader: "Niveau 1"})
		require.NoError(t, err)

		got := details(res)
		require.Len(t, got, 3, "order %v", order)
		for _, r := range got {
			w := want[r.Code]
			assert.Equal(t, w.path, r.Path, "order %v code %s", order, r.Code)
			assert.Equal(t, w.depth, r.Depth, "order %v code %s", order, r.Code)
		}
	}
}
