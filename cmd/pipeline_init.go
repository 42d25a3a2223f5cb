package main

import (
	"github.com/rotisserie/eris"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/config"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/pipeline"
	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/resolve"
)

// initPipeline validates the config for mode and builds the pipeline with
// the fusion and province tables.
func initPipeline(c *config.Config, mode string) (*pipeline.Pipeline, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	resolver, err := resolve.DefaultResolver(c.Fusion.File)
	if err != nil {
		return nil, eris.Wrap(err, "load fusion table")
	}
	provinces, err := resolve.DefaultProvinces()
	if err != nil {
		return nil, eris.Wrap(err, "load province table")
	}

	return pipeline.New(c, resolver, provinces), nil
}
