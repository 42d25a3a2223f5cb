package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, 2024, cfg.Reporting.Year)
	assert.Equal(t, 2014, cfg.Reporting.MinYear)
	assert.Equal(t, 2031, cfg.Reporting.MaxYear)
	assert.Equal(t, 10, cfg.Reporting.TopN)
	assert.Equal(t, "GISCO_ID", cfg.Input.Layer.IDColumn)
	assert.Equal(t, "LAU_NAME", cfg.Input.Layer.NameColumn)
	assert.Equal(t, "BE", cfg.Input.Layer.Country)
	assert.InDelta(t, 0.01, cfg.Tolerance.Detail, 1e-9)
	assert.InDelta(t, 1.0, cfg.Tolerance.Domain, 1e-9)
	assert.InDelta(t, 0.01, cfg.Tolerance.Province, 1e-9)
	assert.InDelta(t, 1.0, cfg.Tolerance.SmallDifference, 1e-9)
	assert.InDelta(t, 10.0, cfg.Tolerance.Outlier, 1e-9)
	assert.Equal(t, 8000, cfg.Serve.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, source.DefaultPlans(), cfg.Reporting.ReportingPlans())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
input:
  geometry: data/lau.gpkg
  layer:
    layer: LAU_RG_01M_2021
output:
  dir: public/data
reporting:
  year: 2023
  plans:
    - name: 2020-2025
      report_year: 2020
      from: 2020
      to: 2025
tolerance:
  domain: 2.5
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/lau.gpkg", cfg.Input.Geometry)
	assert.Equal(t, "LAU_RG_01M_2021", cfg.Input.Layer.Layer)
	assert.Equal(t, "public/data", cfg.Output.Dir)
	assert.Equal(t, 2023, cfg.Reporting.Year)
	assert.Equal(t, source.Plans{{Name: "2020-2025", ReportYear: 2020, From: 2020, To: 2025}}, cfg.Reporting.ReportingPlans())
	assert.InDelta(t, 2.5, cfg.Tolerance.Domain, 1e-9)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.01, cfg.Tolerance.Detail, 1e-9)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0o644))
	t.Setenv("GEMEENTEN_LOG_LEVEL", "warn")
	t.Setenv("GEMEENTEN_INPUT_HEADLINE", "in/headline.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "in/headline.csv", cfg.Input.Headline)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)

	// Register cleanup, then clear so godotenv may set the variable.
	t.Setenv("GEMEENTEN_SERVE_PORT", "")
	require.NoError(t, os.Unsetenv("GEMEENTEN_SERVE_PORT"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMEENTEN_SERVE_PORT=3000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("GEMEENTEN_SERVE_PORT=4000\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Serve.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with every input set, for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Input = InputConfig{
		Geometry:         "lau.gpkg",
		Headline:         "headline.csv",
		Hierarchy:        "opgesplitst.csv",
		ProvinceTotals:   "totals.csv",
		ProvinceDomains:  "domains.xlsx",
		ProvinceAccounts: "accounts.xlsx",
	}
	cfg.Output.Dir = "out"
	cfg.Reporting = ReportingConfig{Year: 2024, MinYear: 2014, MaxYear: 2031, TopN: 10}
	cfg.Serve.Port = 8000
	return cfg
}

func TestValidate_AllPresent(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"build", "provinces", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidateBuild_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Input.Geometry = ""
	cfg.Input.Hierarchy = ""
	cfg.Output.Dir = ""
	cfg.Reporting.TopN = 0

	err := cfg.Validate("build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input.geometry is required")
	assert.Contains(t, err.Error(), "input.hierarchy or input.account_matrix is required")
	assert.Contains(t, err.Error(), "output.dir is required")
	assert.Contains(t, err.Error(), "top_n")

	cfg = validDefaults()
	cfg.Input.Hierarchy = ""
	cfg.Input.AccountMatrix = "rekeningen.csv"
	assert.NoError(t, cfg.Validate("build"))
}

func TestValidateBuild_YearRange(t *testing.T) {
	cfg := validDefaults()
	cfg.Reporting.MinYear = 2040
	err := cfg.Validate("build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_year")
}

func TestValidateProvinces(t *testing.T) {
	cfg := validDefaults()
	cfg.Input.ProvinceAccounts = ""
	cfg.Reporting.Plans = []source.Plan{{Name: "bad", From: 2026, To: 2020}}
	cfg.Tolerance.Province = -1

	err := cfg.Validate("provinces")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input.province_accounts is required")
	assert.Contains(t, err.Error(), `invalid plan "bad"`)
	assert.Contains(t, err.Error(), "tolerance values must be >= 0")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Serve.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "serve.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
