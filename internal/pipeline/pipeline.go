// Package pipeline runs the municipal and province reconciliation passes:
// read every source, build the account trees, dissolve the geometry, join
// and reconcile, then write the artifacts.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/config"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/fetcher"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/hierarchy"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/source"
)

// Pipeline holds the configuration and the static resolution tables of
// one run.
type Pipeline struct {
	cfg       *config.Config
	resolver  *resolve.Resolver
	provinces *resolve.Provinces
	runID     string
	log       *zap.Logger
}

// New creates a Pipeline. The fusion resolver and province table are
// loaded once by the caller and shared read-only by every step.
func New(cfg *config.Config, resolver *resolve.Resolver, provinces *resolve.Provinces) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		cfg:       cfg,
		resolver:  resolver,
		provinces: provinces,
		runID:     runID,
		log:       zap.L().With(zap.String("run_id", runID)),
	}
}

// RunID identifies the run in every log line.
func (p *Pipeline) RunID() string { return p.runID }

// load reads and parses one source. An empty path yields a nil result.
// Value errors are logged as counts; structural errors abort.
func (p *Pipeline) load(ctx context.Context, path string, parse func([][]string) (*source.Result, error)) (*source.Result, error) {
	if path == "" {
		return nil, nil
	}
	start := time.Now()
	rows, err := fetcher.ReadRows(ctx, path, fetcher.CSVOptions{Latin1: p.cfg.Input.Latin1}, fetcher.XLSXOptions{})
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read %s", path)
	}
	res, err := parse(rows)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: parse %s", path)
	}

	p.log.Info("pipeline: source parsed",
		zap.String("source", path),
		zap.Int("rows", len(rows)),
		zap.Int("facts", res.Facts()),
		zap.Int("entities", len(res.Entities())),
		zap.Int("invalid_cells", res.InvalidCells),
		zap.Int("skipped_columns", res.SkippedColumns),
		zap.Int("duplicate_entities", res.DuplicateEntities),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res, nil
}

// tree builds the account tree of a parsed source, resolving entity keys
// through resolver. A nil result yields a nil tree.
func (p *Pipeline) tree(res *source.Result, resolver *resolve.Resolver) *hierarchy.Tree {
	if res == nil {
		return nil
	}
	t := hierarchy.Build(resolver, res)
	for _, c := range t.Conflicts() {
		p.log.Warn("pipeline: node metadata differs from first occurrence",
			zap.String("source", res.Source),
			zap.String("node", c.Node),
			zap.String("field", c.Field),
			zap.String("first", c.First),
			zap.String("other", c.Other),
		)
	}
	return t
}
