package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/reconcile"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

// Config holds the full application configuration.
type Config struct {
	Input     InputConfig          `yaml:"input" mapstructure:"input"`
	Output    OutputConfig         `yaml:"output" mapstructure:"output"`
	Reporting ReportingConfig      `yaml:"reporting" mapstructure:"reporting"`
	Tolerance reconcile.Tolerances `yaml:"tolerance" mapstructure:"tolerance"`
	Fusion    FusionConfig         `yaml:"fusion" mapstructure:"fusion"`
	Serve     ServeConfig          `yaml:"serve" mapstructure:"serve"`
	Log       LogConfig            `yaml:"log" mapstructure:"log"`
}

// InputConfig lists the source exports. Empty paths are skipped.
type InputConfig struct {
	Geometry         string         `yaml:"geometry" mapstructure:"geometry"`
	Layer            GeometryConfig `yaml:"layer" mapstructure:"layer"`
	Headline         string         `yaml:"headline" mapstructure:"headline"`
	Hierarchy        string         `yaml:"hierarchy" mapstructure:"hierarchy"`
	AccountMatrix    string         `yaml:"account_matrix" mapstructure:"account_matrix"`
	DomainMatrix     string         `yaml:"domain_matrix" mapstructure:"domain_matrix"`
	DomainYears      string         `yaml:"domain_years" mapstructure:"domain_years"`
	ProvinceDomains  string         `yaml:"province_domains" mapstructure:"province_domains"`
	ProvinceAccounts string         `yaml:"province_accounts" mapstructure:"province_accounts"`
	ProvinceTotals   string         `yaml:"province_totals" mapstructure:"province_totals"`
	Latin1           bool           `yaml:"latin1" mapstructure:"latin1"`
}

// GeometryConfig selects the layer and attribute columns of the geometry file.
type GeometryConfig struct {
	Layer          string `yaml:"layer" mapstructure:"layer"`
	IDColumn       string `yaml:"id_column" mapstructure:"id_column"`
	NameColumn     string `yaml:"name_column" mapstructure:"name_column"`
	CountryColumn  string `yaml:"country_column" mapstructure:"country_column"`
	Country        string `yaml:"country" mapstructure:"country"`
	ProvinceColumn string `yaml:"province_column" mapstructure:"province_column"`
}

// OutputConfig configures where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ReportingConfig configures the reported year range and plan windows.
type ReportingConfig struct {
	Year    int           `yaml:"year" mapstructure:"year"`
	MinYear int           `yaml:"min_year" mapstructure:"min_year"`
	MaxYear int           `yaml:"max_year" mapstructure:"max_year"`
	TopN    int           `yaml:"top_n" mapstructure:"top_n"`
	Plans   []source.Plan `yaml:"plans" mapstructure:"plans"`
}

// ReportingPlans returns the configured plan windows, or the standard
// multi-year plans when none are configured.
func (r ReportingConfig) ReportingPlans() source.Plans {
	if len(r.Plans) == 0 {
		return source.DefaultPlans()
	}
	return source.Plans(r.Plans)
}

// FusionConfig optionally replaces the built-in fusion table.
type FusionConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// ServeConfig configures the static artifact server.
type ServeConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the settings required by mode: "build", "provinces" or
// "serve". All problems are reported at once.
func (c *Config) Validate(mode string) error {
	var errs []string
	require := func(val, key string) {
		if val == "" {
			errs = append(errs, key+" is required")
		}
	}

	switch mode {
	case "build":
		require(c.Input.Geometry, "input.geometry")
		require(c.Input.Headline, "input.headline")
		if c.Input.Hierarchy == "" && c.Input.AccountMatrix == "" {
			errs = append(errs, "input.hierarchy or input.account_matrix is required")
		}
		if c.Reporting.MinYear > c.Reporting.MaxYear {
			errs = append(errs, fmt.Sprintf("reporting.min_year %d is after max_year %d", c.Reporting.MinYear, c.Reporting.MaxYear))
		}
		if c.Reporting.TopN < 1 {
			errs = append(errs, "reporting.top_n must be > 0")
		}
	case "provinces":
		require(c.Input.ProvinceTotals, "input.province_totals")
		require(c.Input.ProvinceDomains, "input.province_domains")
		require(c.Input.ProvinceAccounts, "input.province_accounts")
		for _, p := range c.Reporting.Plans {
			if p.Name == "" || p.From > p.To {
				errs = append(errs, fmt.Sprintf("reporting.plans: invalid plan %q", p.Name))
			}
		}
	case "serve":
		if c.Serve.Port <= 0 {
			errs = append(errs, "serve.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode != "serve" {
		require(c.Output.Dir, "output.dir")
		t := c.Tolerance
		if t.Detail < 0 || t.Domain < 0 || t.Province < 0 || t.SmallDifference < 0 || t.Outlier < 0 {
			errs = append(errs, "tolerance values must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from .env files, config.yaml and the environment.
func Load() (*Config, error) {
	// .env.local takes precedence: godotenv never overrides a variable
	// that is already set.
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GEMEENTEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"input.geometry", "input.headline", "input.hierarchy", "input.account_matrix",
		"input.domain_matrix", "input.domain_years", "input.province_domains",
		"input.province_accounts", "input.province_totals",
		"input.layer.layer", "input.layer.country_column", "input.layer.province_column",
		"fusion.file",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("input.latin1", false)
	v.SetDefault("input.layer.id_column", "GISCO_ID")
	v.SetDefault("input.layer.name_column", "LAU_NAME")
	v.SetDefault("input.layer.country", "BE")
	v.SetDefault("output.dir", "output")
	v.SetDefault("reporting.year", 2024)
	v.SetDefault("reporting.min_year", 2014)
	v.SetDefault("reporting.max_year", 2031)
	v.SetDefault("reporting.top_n", 10)

	tol := reconcile.DefaultTolerances()
	v.SetDefault("tolerance.detail", tol.Detail)
	v.SetDefault("tolerance.domain", tol.Domain)
	v.SetDefault("tolerance.province", tol.Province)
	v.SetDefault("tolerance.small_difference", tol.SmallDifference)
	v.SetDefault("tolerance.outlier", tol.Outlier)

	v.SetDefault("serve.port", 8000)
	v.SetDefault("serve.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
