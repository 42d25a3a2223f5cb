package pipeline

import (
	"context"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/export"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/reconcile"
)

// Artifact file names.
const (
	FileEnriched       = "municipalities_enriched.geojson"
	FileJoinReport     = "join_report.json"
	FileReconciliation = "reconciliation_report.json"
	FileAverages       = "averages.json"
	FileDomainTotals   = "beleidsdomein_totals.json"

	FileProvinceTotals     = "provincie_totals.json"
	FileProvinceDetailed   = "provincie_detailed.json"
	FileProvinceAccounts   = "provincie_rekeningen.json"
	FileProvinceStats      = "provincie_stats.json"
	FileProvinceComparison = "provincie_comparison.json"
	FileProvinceValidation = "provincie_validation.json"
)

// grouped, details and totals documents of the account hierarchy.
func hierarchyFiles(year int) (grouped, details, totals string) {
	y := strconv.Itoa(year)
	return "rekeningen_" + y + "_grouped.json", "rekeningen_" + y + "_details.json", "rekeningen_" + y + "_totals.json"
}

// writer fans artifact writes out over an errgroup. Every artifact is a
// distinct file computed from read-only inputs.
type writer struct {
	g   *errgroup.Group
	dir string
	log *zap.Logger
}

func (p *Pipeline) newWriter(ctx context.Context) *writer {
	g, _ := errgroup.WithContext(ctx)
	return &writer{g: g, dir: p.cfg.Output.Dir, log: p.log}
}

func (w *writer) json(name string, v any) {
	w.do(name, func(path string) error { return export.WriteJSON(path, v) })
}

func (w *writer) do(name string, write func(path string) error) {
	path := filepath.Join(w.dir, name)
	w.g.Go(func() error {
		if err := write(path); err != nil {
			return err
		}
		w.log.Debug("pipeline: artifact written", zap.String("path", path))
		return nil
	})
}

func (w *writer) wait() error { return w.g.Wait() }

// WriteMunicipal writes every municipal artifact into the output directory.
func (p *Pipeline) WriteMunicipal(ctx context.Context, res *MunicipalResult) error {
	w := p.newWriter(ctx)
	w.do(FileEnriched, func(path string) error { return export.WriteFeatures(path, res.Features, res.Year) })
	w.json(FileJoinReport, res.Join)
	w.json(FileReconciliation, res.Report)
	w.json(FileAverages, res.Averages)
	if res.DomainTotals != nil {
		w.json(FileDomainTotals, res.DomainTotals)
	}
	if res.Hierarchy != nil {
		grouped, details, totals := hierarchyFiles(res.Year)
		w.json(grouped, res.Hierarchy.Document(res.Year))
		w.json(details, res.Hierarchy.DetailDocument(res.Year))
		w.json(totals, res.Hierarchy.TotalDocument(res.Year))
	}
	if err := w.wait(); err != nil {
		return err
	}
	p.log.Info("pipeline: municipal artifacts written", zap.String("dir", p.cfg.Output.Dir))
	return nil
}

// WriteProvinces writes every province artifact into the output directory.
func (p *Pipeline) WriteProvinces(ctx context.Context, rep *reconcile.ProvinceReport) error {
	w := p.newWriter(ctx)
	w.json(FileProvinceTotals, rep.Totals)
	w.json(FileProvinceDetailed, rep.Detailed)
	w.json(FileProvinceAccounts, rep.Accounts)
	w.json(FileProvinceStats, rep.Stats)
	w.json(FileProvinceComparison, rep.Comparison)
	w.json(FileProvinceValidation, rep.Validation)
	if err := w.wait(); err != nil {
		return err
	}
	p.log.Info("pipeline: province artifacts written", zap.String("dir", p.cfg.Output.Dir))
	return nil
}
