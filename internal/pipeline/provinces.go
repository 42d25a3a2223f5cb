package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/reconcile"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

// Provinces runs the province pass: the published totals are checked
// against the per-domain and the per-account exports, per plan window.
// Province keys are never fused.
func (p *Pipeline) Provinces(ctx context.Context) (*reconcile.ProvinceReport, error) {
	in := p.cfg.Input
	plans := p.cfg.Reporting.ReportingPlans()
	p.log.Info("pipeline: province pass starting", zap.Strings("plans", plans.Names()))

	totalsRes, err := p.load(ctx, in.ProvinceTotals, func(rows [][]string) (*source.Result, error) {
		return source.ParseMultiHeader(rows, provinceTotalsLayout(in.ProvinceTotals, plans))
	})
	if err != nil {
		return nil, err
	}
	domainsRes, err := p.load(ctx, in.ProvinceDomains, func(rows [][]string) (*source.Result, error) {
		return source.ParseRowHierarchy(rows, provinceDomainsLayout(in.ProvinceDomains, plans))
	})
	if err != nil {
		return nil, err
	}
	accountsRes, err := p.load(ctx, in.ProvinceAccounts, func(rows [][]string) (*source.Result, error) {
		return source.ParseMultiHeader(rows, provinceAccountsLayout(in.ProvinceAccounts, plans))
	})
	if err != nil {
		return nil, err
	}
	if totalsRes == nil && domainsRes == nil && accountsRes == nil {
		return nil, eris.New("pipeline: no province sources configured")
	}

	rep := reconcile.ReconcileProvinces(reconcile.ProvinceInput{
		Provinces:   p.provinces.All(),
		Plans:       plans,
		Correct:     p.tree(totalsRes, nil),
		Domains:     p.tree(domainsRes, nil),
		Accounts:    p.tree(accountsRes, nil),
		TotalMarker: totalMarker,
		Tolerance:   p.cfg.Tolerance.Province,
	})

	for _, m := range rep.Validation.Mismatches {
		p.log.Warn("pipeline: province accounts and domains disagree",
			zap.String("province", m.Province),
			zap.String("plan", m.Period),
			zap.Float64("accounts", m.Accounts),
			zap.Float64("domains", m.Domains),
			zap.Float64("difference", m.Difference),
		)
	}
	p.log.Info("pipeline: province pass complete",
		zap.Bool("all_match", rep.Validation.AllMatch),
		zap.Int("comparisons", rep.Validation.Summary.TotalComparisons),
		zap.Int("mismatches", rep.Validation.Summary.Mismatches),
	)
	return &rep, nil
}
