// Package preprocess conditions the hue, saturation and value planes before
// thresholding.
package preprocess

import (
	"context"
	"fmt"

	"rock-density/internal/config"
	"rock-density/internal/opencv/conversion"
	"rock-density/internal/opencv/safe"
	"rock-density/internal/processing/chain"
	"rock-density/internal/processing/filters"

	"golang.org/x/sync/errgroup"
)

// Channels holds conditioned planes in Hue, Saturation, Value order.
type Channels [config.NumChannels]*safe.Mat

// Close releases every plane.
func (c Channels) Close() {
	safe.CloseAll(c[:]...)
}

type Preprocessor struct {
	chains [config.NumChannels]*chain.ProcessingChain
}

// New builds one chain per channel from cfg. Shadow removal applies to Value,
// contrast boost to Saturation, and every channel ends with its own blur.
func New(cfg config.Config) *Preprocessor {
	p := &Preprocessor{}

	for _, ch := range config.Channels {
		pc := chain.NewProcessingChain()

		switch {
		case ch == config.Value && cfg.ShadowRemoval:
			pc.AddStep(filters.NewShadowRemovalFilter(cfg.ShadowKernel))
		case ch == config.Saturation && cfg.ContrastBoost:
			pc.AddStep(filters.NewMaxFilter(cfg.BoostKernel))
		}

		pc.AddStep(filters.NewGaussianFilter(cfg.BlurKernels.For(ch)))
		p.chains[ch] = pc
	}

	return p
}

// StepNames reports the filters that run on channel ch.
func (p *Preprocessor) StepNames(ch config.Channel) []string {
	return p.chains[ch].GetStepNames()
}

// Process splits an 8-bit HSV image and conditions each plane concurrently.
// The input is not modified; the caller owns the returned Channels.
func (p *Preprocessor) Process(ctx context.Context, hsv *safe.Mat) (Channels, error) {
	planes, err := conversion.SplitHSV(hsv)
	if err != nil {
		return Channels{}, fmt.Errorf("failed to split HSV image: %w", err)
	}
	defer safe.CloseAll(planes[:]...)

	var out Channels
	g, gctx := errgroup.WithContext(ctx)

	for _, ch := range config.Channels {
		g.Go(func() error {
			result, err := p.chains[ch].Execute(gctx, planes[ch])
			if err != nil {
				return fmt.Errorf("%s channel: %w", ch, err)
			}
			out[ch] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		out.Close()
		return Channels{}, err
	}

	return out, nil
}
