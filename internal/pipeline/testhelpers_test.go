package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/config"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/reconcile"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeXLSX(t *testing.T, dir, name string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Export")
	require.NoError(t, err)
	for _, rowData := range rows {
		row := sheet.AddRow()
		for _, v := range rowData {
			row.AddCell().SetString(v)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.Save(path))
	return path
}

func testConfig(outDir string) *config.Config {
	return &config.Config{
		Input: config.InputConfig{
			Layer: config.GeometryConfig{IDColumn: "GISCO_ID", NameColumn: "LAU_NAME", Country: "BE"},
		},
		Output:    config.OutputConfig{Dir: outDir},
		Reporting: config.ReportingConfig{Year: 2024, MinYear: 2014, MaxYear: 2031, TopN: 10},
		Tolerance: reconcile.DefaultTolerances(),
	}
}

// newTestPipeline fuses A and B into AB.
func newTestPipeline(t *testing.T, cfg *config.Config) *Pipeline {
	t.Helper()
	resolver, err := resolve.NewResolver([]resolve.FusionGroup{
		{Name: "AB", Year: 2025, Members: []string{"A", "B"}},
	}, resolve.Default)
	require.NoError(t, err)
	provinces, err := resolve.DefaultProvinces()
	require.NoError(t, err)
	return New(cfg, resolver, provinces)
}
