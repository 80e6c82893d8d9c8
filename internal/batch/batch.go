// Package batch runs the density pipeline over a directory of photographs.
package batch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"rock-density/internal/logger"
	"rock-density/internal/pipeline"

	"golang.org/x/sync/errgroup"
)

const component = "Batch"

// Item is the outcome for one file. Exactly one of Density and Err is meaningful.
type Item struct {
	Path    string
	Density float64
	Err     error
}

type Options struct {
	Workers    int
	SaveMasks  bool
	DebugMasks bool
}

type Runner struct {
	pl   *pipeline.Pipeline
	opts Options
	log  logger.Logger

	processed atomic.Int64
}

func NewRunner(pl *pipeline.Pipeline, opts Options, log logger.Logger) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = pl.Config().Workers
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{pl: pl, opts: opts, log: log}
}

// Processed returns how many files have finished so far, failed or not.
func (r *Runner) Processed() int64 {
	return r.processed.Load()
}

// Run processes files with at most Options.Workers in flight. A failing file
// is recorded in its Item and never stops the others. Items come back in the
// order of files. The returned error is non-nil only when ctx was cancelled;
// items that never started then carry the context error.
func (r *Runner) Run(ctx context.Context, files []string) ([]Item, error) {
	items := make([]Item, len(files))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)

	start := time.Now()
	for i, path := range files {
		items[i].Path = path

		g.Go(func() error {
			defer r.processed.Add(1)

			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}

			d, err := r.processOne(ctx, path)
			if err != nil {
				items[i].Err = err
				r.log.Warning(component, "image failed", map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				})
				return nil
			}

			items[i].Density = d
			return nil
		})
	}
	_ = g.Wait()

	r.log.Info(component, "batch complete", map[string]interface{}{
		"files":    len(files),
		"workers":  r.opts.Workers,
		"duration": time.Since(start).String(),
	})

	return items, ctx.Err()
}

func (r *Runner) processOne(ctx context.Context, path string) (float64, error) {
	result, err := r.pl.ProcessFile(ctx, path)
	if err != nil {
		return 0, err
	}

	if r.opts.SaveMasks {
		if err := pipeline.SaveMask(pipeline.MaskPath(path), result.Rock); err != nil {
			return 0, fmt.Errorf("density computed but mask not saved: %w", err)
		}
	}

	if r.opts.DebugMasks {
		if err := pipeline.SaveTierMasks(path, result); err != nil {
			return 0, fmt.Errorf("density computed but tier masks not saved: %w", err)
		}
	}

	return result.Density, nil
}
