package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/geo"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/hierarchy"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/reconcile"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

// Reconciliation path names.
const (
	PathHierarchy = "hierarchy"
	PathAccounts  = "accounts"
	PathDomains   = "domains"
	PathHeadline  = "headline"
)

// MunicipalResult holds everything the municipal pass produces.
type MunicipalResult struct {
	Year         int
	Features     []reconcile.Feature
	Join         reconcile.EnrichResult
	Report       reconcile.Report
	Averages     reconcile.Averages
	DomainTotals map[string]map[int]float64 // nil without the all-years export
	Hierarchy    *hierarchy.Tree            // nil without the account export
}

// Municipal runs the municipal pass: parse every configured source, dissolve
// the geometry per canonical entity, enrich it and reconcile the
// independent totals for the reporting year.
func (p *Pipeline) Municipal(ctx context.Context) (*MunicipalResult, error) {
	in, rep := p.cfg.Input, p.cfg.Reporting
	p.log.Info("pipeline: municipal pass starting", zap.Int("year", rep.Year), zap.Int("fusion_keys", p.resolver.Len()))

	headlineRes, err := p.load(ctx, in.Headline, func(rows [][]string) (*source.Result, error) {
		return source.ParseMatrix(rows, headlineLayout(in.Headline))
	})
	if err != nil {
		return nil, err
	}
	hierRes, err := p.load(ctx, in.Hierarchy, func(rows [][]string) (*source.Result, error) {
		return source.ParseRowHierarchy(rows, hierarchyLayout(in.Hierarchy))
	})
	if err != nil {
		return nil, err
	}
	accRes, err := p.load(ctx, in.AccountMatrix, func(rows [][]string) (*source.Result, error) {
		return source.ParseMatrix(rows, accountMatrixLayout(in.AccountMatrix))
	})
	if err != nil {
		return nil, err
	}
	domRes, err := p.load(ctx, in.DomainMatrix, func(rows [][]string) (*source.Result, error) {
		return source.ParseMatrix(rows, domainMatrixLayout(in.DomainMatrix))
	})
	if err != nil {
		return nil, err
	}
	yearsRes, err := p.load(ctx, in.DomainYears, func(rows [][]string) (*source.Result, error) {
		return source.ParseMultiHeader(rows, domainYearsLayout(in.DomainYears, rep))
	})
	if err != nil {
		return nil, err
	}

	headlineTree := p.tree(headlineRes, p.resolver)
	hierTree := p.tree(hierRes, p.resolver)
	accTree := p.tree(accRes, p.resolver)
	domTree := p.tree(domRes, p.resolver)
	yearsTree := p.tree(yearsRes, p.resolver)

	records, err := geo.Load(ctx, in.Geometry, layerOptions(in.Layer), p.provinces, resolve.Default)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load geometry")
	}
	dissolved, err := geo.Dissolve(records, p.resolver)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: dissolve geometry")
	}
	p.log.Info("pipeline: geometry dissolved",
		zap.Int("features", len(records)),
		zap.Int("entities", len(dissolved)),
	)

	keep := hierarchy.InYear(rep.Year)
	headline := headlineFigures(headlineTree)

	// The account matrix is the published per-entity breakdown; the
	// row-hierarchy export stands in when it is absent.
	detailTree := accTree
	if detailTree == nil {
		detailTree = hierTree
	}
	join := reconcile.Enrich(dissolved, reconcile.EnrichInput{
		Year:         rep.Year,
		TopN:         rep.TopN,
		Headline:     headline,
		Details:      reconcile.TopsFromTree(detailTree, keep),
		Domains:      reconcile.TopsFromTree(domTree, keep),
		DomainTotals: reconcile.ReportedTotals(domTree, totalMarker, keep),
	})
	for _, j := range []struct {
		name string
		reconcile.Join
	}{{"headline", join.Headline}, {"detail", join.Detail}, {"domain", join.Domain}} {
		p.log.Info("pipeline: join",
			zap.String("source", j.name),
			zap.Int("matched", j.Matched),
			zap.Int("unmatched_geometry", len(j.UnmatchedGeometry)),
			zap.Int("unmatched_data", len(j.UnmatchedData)),
		)
	}

	tol := p.cfg.Tolerance
	var paths []reconcile.Path
	if hierTree != nil {
		paths = append(paths, reconcile.Path{Name: PathHierarchy, Tolerance: tol.Detail, Totals: detailSums(hierTree, keep)})
	}
	if accTree != nil {
		paths = append(paths, reconcile.Path{Name: PathAccounts, Tolerance: tol.Detail, Totals: detailSums(accTree, keep)})
	}
	if domTree != nil {
		paths = append(paths, reconcile.Path{Name: PathDomains, Tolerance: tol.Domain, Totals: detailSums(domTree, keep)})
	}
	if headlineTree != nil {
		paths = append(paths, reconcile.Path{Name: PathHeadline, Tolerance: tol.Detail, Totals: headlineYear(headline, rep.Year)})
	}
	report := reconcile.Reconcile(paths, entityNames(dissolved, hierTree, accTree, domTree, headlineTree), tol)
	p.log.Info("pipeline: reconciliation complete",
		zap.Strings("paths", report.Paths),
		zap.Int("entities", report.Summary.Entities),
		zap.Int("matches", report.Summary.Matches),
		zap.Int("mismatches", report.Summary.Mismatches),
		zap.Int("missing", report.Summary.Missing),
		zap.Int("outliers", len(report.Outliers)),
	)

	res := &MunicipalResult{
		Year:      rep.Year,
		Features:  join.Features,
		Join:      join,
		Report:    report,
		Averages:  reconcile.ComputeAverages(dissolved, headline),
		Hierarchy: hierTree,
	}
	if yearsTree != nil {
		res.DomainTotals = reconcile.DomainTotals(yearsTree)
	}
	return res, nil
}

// headlineFigures returns the headline figure per entity and book year.
func headlineFigures(t *hierarchy.Tree) map[string]map[int]float64 {
	out := make(map[string]map[int]float64)
	if t == nil {
		return out
	}
	yearColumn := func(n *hierarchy.Node) bool { return n.Label != totalMarker }
	for _, e := range t.Entities() {
		byYear := t.YearTotals(e, "", yearColumn)
		delete(byYear, 0)
		if len(byYear) > 0 {
			out[e] = byYear
		}
	}
	return out
}

func headlineYear(headline map[string]map[int]float64, year int) map[string]float64 {
	out := make(map[string]float64)
	for k, byYear := range headline {
		if v, ok := byYear[year]; ok {
			out[k] = v
		}
	}
	return out
}

// detailSums is the bottom-up total of every entity with detail facts.
func detailSums(t *hierarchy.Tree, keep func(hierarchy.Slot) bool) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range t.Entities() {
		if len(t.DetailItems(e, keep)) == 0 {
			continue
		}
		out[e] = t.DetailSum(e, keep)
	}
	return out
}

// entityNames prefers the dissolved geometry name, then the first tree
// that knows the entity.
func entityNames(records []geo.Record, trees ...*hierarchy.Tree) func(string) string {
	names := make(map[string]string, len(records))
	for _, r := range records {
		names[r.Key] = r.Name
	}
	return func(key string) string {
		if n := names[key]; n != "" {
			return n
		}
		for _, t := range trees {
			if t == nil {
				continue
			}
			if n := t.EntityName(key); n != "" && n != key {
				return n
			}
		}
		return key
	}
}
