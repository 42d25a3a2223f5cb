package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/geo"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/hierarchy"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

var (
	antwerpen = resolve.Province{Key: "antwerpen", Name: "Antwerpen"}
	limburg   = resolve.Province{Key: "limburg", Name: "Limburg"}
)

func TestEnrich_JoinsAndReportsUnmatched(t *testing.T) {
	records := []geo.Record{
		{Key: "aalst", Name: "Aalst", Province: antwerpen},
		{Key: "gent", Name: "Gent", Province: antwerpen},
	}
	var details []Top
	for i := 1; i <= 12; i++ {
		details = append(details, Top{Code: "REK" + string(rune('A'+i)), Amount: float64(i)})
	}
	details = append(details, Top{Code: "NEG", Amount: -20})

	res := Enrich(records, EnrichInput{
		Year: 2024,
		TopN: 10,
		Headline: map[string]map[int]float64{
			"aalst": {2024: 60},
			"gent":  {2024: 10},
		},
		Details: map[string][]Top{
			"aalst":   details,
			"unknown": {{Code: "X", Amount: 1}},
		},
		Domains: map[string][]Top{
			"gent": {{Code: "0100", Label: "Bestuur", Full: "0100 Bestuur", Amount: 4}, {Code: "0200", Amount: 5}},
		},
		DomainTotals: map[string]float64{},
	})

	require.Len(t, res.Features, 2)
	aalst := res.Features[0]
	require.NotNil(t, aalst.Detail)
	assert.InDelta(t, 58, aalst.Detail.TotalDetails, 1e-9)
	assert.Equal(t, 13, aalst.Detail.AccountCount)
	assert.InDelta(t, -2, aalst.Detail.DifferenceWithTotal, 1e-9)
	require.Len(t, aalst.Detail.TopAccounts, 10)
	assert.Equal(t, "NEG", aalst.Detail.TopAccounts[0].Code)
	assert.InDelta(t, 12, aalst.Detail.TopAccounts[1].Amount, 1e-9)
	assert.Nil(t, aalst.Domain)

	gent := res.Features[1]
	assert.Nil(t, gent.Detail)
	require.NotNil(t, gent.Domain)
	assert.InDelta(t, 9, gent.Domain.TotalDomains, 1e-9)
	assert.InDelta(t, -1, gent.Domain.DifferenceWithTotal, 1e-9)
	assert.Equal(t, "0200", gent.Domain.TopDomains[0].Code)

	assert.Equal(t, Join{Matched: 1, UnmatchedGeometry: []string{"gent"}, UnmatchedData: []string{"unknown"}}, res.Detail)
	assert.Equal(t, Join{Matched: 1, UnmatchedGeometry: []string{"aalst"}, UnmatchedData: []string{}}, res.Domain)
	assert.Equal(t, 2, res.Headline.Matched)
}

func TestEnrich_ReportedDomainTotalWins(t *testing.T) {
	res := Enrich([]geo.Record{{Key: "gent"}}, EnrichInput{
		Year:         2024,
		Domains:      map[string][]Top{"gent": {{Code: "0100", Amount: 4}}},
		DomainTotals: map[string]float64{"gent": 4.5},
	})
	assert.InDelta(t, 4.5, res.Features[0].Domain.TotalDomains, 1e-9)
}

func TestTopsFromTree(t *testing.T) {
	tree := hierarchy.New(nil)
	tree.Add(
		source.Record{Entity: "gent", Code: "0100", Label: "0100 Bestuur", Amount: 4, Kind: source.KindDetail},
		source.Record{Entity: "gent", Code: "REK1", Label: "REK1", Amount: 2, Kind: source.KindDetail},
		source.Record{Entity: "gent", Label: "Total", Amount: 6, Kind: source.KindTotal},
	)

	tops := TopsFromTree(tree, nil)
	require.Len(t, tops["gent"], 2)
	assert.Equal(t, Top{Code: "0100", Label: "Bestuur", Full: "0100 Bestuur", Amount: 4}, tops["gent"][0])
	assert.Equal(t, Top{Code: "REK1", Label: "REK1", Amount: 2}, tops["gent"][1])

	assert.Equal(t, map[string]float64{"gent": 6}, ReportedTotals(tree, "Total", nil))
	assert.Empty(t, TopsFromTree(nil, nil))
}
