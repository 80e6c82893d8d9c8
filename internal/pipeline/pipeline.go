package pipeline

import (
	"context"
	"fmt"
	"time"

	"rock-density/internal/config"
	"rock-density/internal/logger"
	"rock-density/internal/mask"
	"rock-density/internal/opencv/safe"
	"rock-density/internal/processing/density"
	"rock-density/internal/processing/fusion"
	"rock-density/internal/processing/preprocess"
	"rock-density/internal/processing/threshold"
	"rock-density/internal/timing"
)

const component = "Pipeline"

// Stage names used for timing.
const (
	StagePreprocess = "preprocess"
	StageSegment    = "segment"
	StageFuse       = "fuse"
	StageDensity    = "density"
)

// Result is the outcome of one image.
type Result struct {
	Density float64
	Rock    *mask.Mask
	Profile *mask.Mask
	Masks   threshold.TierMasks
	Timings map[string]time.Duration
}

// Percent renders the density with two decimals.
func (r *Result) Percent() string {
	return density.Percent(r.Density)
}

// Pipeline runs preprocess → segment → fuse → density for one image at a time.
// It holds no per-image state and may be shared between goroutines.
type Pipeline struct {
	cfg          config.Config
	preprocessor *preprocess.Preprocessor
	segmenter    *threshold.Segmenter
	policy       fusion.Policy
	profile      ProfileDetector
	tracker      *timing.Tracker
	log          logger.Logger
}

type Option func(*Pipeline)

// WithPolicy overrides the fusion policy named in the configuration.
func WithPolicy(p fusion.Policy) Option {
	return func(pl *Pipeline) { pl.policy = p }
}

// WithProfileDetector replaces the full-frame profile placeholder.
func WithProfileDetector(d ProfileDetector) Option {
	return func(pl *Pipeline) { pl.profile = d }
}

// WithTracker shares a timing tracker, e.g. across batch workers.
func WithTracker(t *timing.Tracker) Option {
	return func(pl *Pipeline) { pl.tracker = t }
}

// New validates cfg and assembles the stages.
func New(cfg config.Config, log logger.Logger, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	pl := &Pipeline{
		cfg:          cfg,
		preprocessor: preprocess.New(cfg),
		segmenter:    threshold.NewSegmenter(cfg.Thresholds),
		profile:      FullFrame{},
		log:          log,
	}

	for _, opt := range opts {
		opt(pl)
	}

	if pl.policy == nil {
		policy, err := fusion.Lookup(cfg.Fusion)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		pl.policy = policy
	}

	if pl.tracker == nil {
		pl.tracker = timing.NewTracker()
	}

	return pl, nil
}

func (pl *Pipeline) Config() config.Config { return pl.cfg }

func (pl *Pipeline) Policy() fusion.Policy { return pl.policy }

func (pl *Pipeline) Tracker() *timing.Tracker { return pl.tracker }

// Run processes one 8-bit HSV image. hsv is not modified.
func (pl *Pipeline) Run(ctx context.Context, hsv *safe.Mat) (*Result, error) {
	if err := safe.ValidateColor8U(hsv, "rock density"); err != nil {
		return nil, err
	}

	result := &Result{Timings: make(map[string]time.Duration, 4)}

	stageCtx := pl.tracker.StartTiming(ctx, StagePreprocess)
	channels, err := pl.preprocessor.Process(ctx, hsv)
	result.Timings[StagePreprocess] = pl.tracker.EndTiming(stageCtx)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	defer channels.Close()

	stageCtx = pl.tracker.StartTiming(ctx, StageSegment)
	masks, err := pl.segmenter.Segment(ctx, channels)
	result.Timings[StageSegment] = pl.tracker.EndTiming(stageCtx)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	result.Masks = masks

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageCtx = pl.tracker.StartTiming(ctx, StageFuse)
	rock, err := fusion.Apply(pl.policy, masks)
	result.Timings[StageFuse] = pl.tracker.EndTiming(stageCtx)
	if err != nil {
		return nil, fmt.Errorf("fusion failed: %w", err)
	}
	result.Rock = rock

	stageCtx = pl.tracker.StartTiming(ctx, StageDensity)
	profile, err := pl.profile.Detect(hsv)
	if err != nil {
		return nil, fmt.Errorf("profile detection failed: %w", err)
	}
	result.Profile = profile

	d, err := density.Estimate(profile, rock)
	result.Timings[StageDensity] = pl.tracker.EndTiming(stageCtx)
	if err != nil {
		return nil, fmt.Errorf("density estimation failed: %w", err)
	}
	result.Density = d

	pl.log.Debug(component, "image processed", map[string]interface{}{
		"width":         hsv.Cols(),
		"height":        hsv.Rows(),
		"policy":        pl.policy.Name(),
		"density":       d,
		"preprocess_ms": result.Timings[StagePreprocess].Milliseconds(),
		"segment_ms":    result.Timings[StageSegment].Milliseconds(),
	})

	return result, nil
}

// ProcessFile loads path, converts it to HSV and runs the pipeline.
func (pl *Pipeline) ProcessFile(ctx context.Context, path string) (*Result, error) {
	hsv, err := LoadHSV(path)
	if err != nil {
		return nil, err
	}
	defer hsv.Close()

	return pl.Run(ctx, hsv)
}

// SaveTierMasks writes every tier/channel mask of r next to src for inspection.
func SaveTierMasks(src string, r *Result) error {
	for _, tier := range config.Tiers {
		for _, ch := range config.Channels {
			m, ok := r.Masks.Lookup(tier, ch)
			if !ok {
				continue
			}
			if err := SaveMask(TierMaskPath(src, tier, ch), m); err != nil {
				return err
			}
		}
	}
	return nil
}
