package pipeline

import (
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/config"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/geo"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

const totalMarker = "Total"

// Municipal account export: Type;Boekjaar;Niveau 1..8;Alg. rekening;<entities>;Total.
func hierarchyLayout(name string) source.RowHierarchyOptions {
	return source.RowHierarchyOptions{
		Name:             name,
		AccountHeader:    "Alg. rekening",
		FirstLevelHeader: "Niveau 1",
		YearHeader:       "Boekjaar",
		TotalMarker:      totalMarker,
		Entities:         resolve.Default,
	}
}

// Account matrix: Grondgebied;<code label>...
func accountMatrixLayout(name string) source.MatrixOptions {
	return source.MatrixOptions{
		Name:         name,
		EntityHeader: "Grondgebied",
		TotalMarker:  totalMarker,
		Entities:     resolve.Default,
	}
}

// Policy-domain matrix: Grondgebied;Bestuur;<code label>...
func domainMatrixLayout(name string) source.MatrixOptions {
	return source.MatrixOptions{
		Name:            name,
		EntityHeader:    "Grondgebied",
		AttributeHeader: "Bestuur",
		TotalMarker:     totalMarker,
		Entities:        resolve.Default,
	}
}

// Headline matrix: Grondgebied;2014;...;2024.
func headlineLayout(name string) source.MatrixOptions {
	return source.MatrixOptions{
		Name:         name,
		EntityHeader: "Grondgebied",
		TotalMarker:  totalMarker,
		YearColumns:  true,
		Entities:     resolve.Default,
	}
}

// All-years policy-domain export: book-year row 1, sub-domain row 3,
// label row Grondgebied;Bestuur. Only Bestuur == Total rows are kept.
func domainYearsLayout(name string, r config.ReportingConfig) source.MultiHeaderOptions {
	return source.MultiHeaderOptions{
		Name:          name,
		EntityHeader:    "Grondgebied",
		LeadColumns:     2,
		AttributeColumn: 1,
		ReportYearRow:   -1,
		YearRow:         1,
		DomainRow:       3,
		MinYear:         r.MinYear,
		MaxYear:         r.MaxYear,
		Kind:            source.KindDetail,
		TotalMarker:     totalMarker,
		Entities:        resolve.Default,
	}
}

// Province policy-field workbook:
// Bestuur;Rapportjaar;Boekjaar;BV_domein;BV_subdomein;Beleidsveld;<provinces>;Total.
func provinceDomainsLayout(name string, plans source.Plans) source.RowHierarchyOptions {
	return source.RowHierarchyOptions{
		Name:             name,
		AccountHeader:    "Beleidsveld",
		FirstLevelHeader: "BV_domein",
		YearHeader:       "Boekjaar",
		ReportYearHeader: "Rapportjaar",
		FilterHeader:     "Bestuur",
		FilterValue:      "Meerjarenplan",
		TotalMarker:      totalMarker,
		Entities:         resolve.ProvinceNames,
		Plans:            plans,
	}
}

// Province account workbook: report-year row 0, book-year row 1, account
// row 2, label row Bestuur.
func provinceAccountsLayout(name string, plans source.Plans) source.MultiHeaderOptions {
	return source.MultiHeaderOptions{
		Name:          name,
		EntityHeader:  "Bestuur",
		ReportYearRow: 0,
		YearRow:       1,
		DomainRow:     2,
		Kind:          source.KindDetail,
		TotalMarker:   totalMarker,
		Entities:      resolve.ProvinceNames,
		Plans:         plans,
	}
}

// Province totals export: report-year row 1, book-year row 2, aggregate
// row 3, label row Grondgebied.
func provinceTotalsLayout(name string, plans source.Plans) source.MultiHeaderOptions {
	return source.MultiHeaderOptions{
		Name:          name,
		EntityHeader:  "Grondgebied",
		ReportYearRow: 1,
		YearRow:       2,
		DomainRow:     3,
		Kind:          source.KindTotal,
		TotalMarker:   totalMarker,
		Entities:      resolve.ProvinceNames,
		Plans:         plans,
	}
}

func layerOptions(c config.GeometryConfig) geo.LayerOptions {
	return geo.LayerOptions{
		Layer:          c.Layer,
		IDColumn:       c.IDColumn,
		NameColumn:     c.NameColumn,
		CountryColumn:  c.CountryColumn,
		Country:        c.Country,
		ProvinceColumn: c.ProvinceColumn,
	}
}
