package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"rock-density/internal/config"
	"rock-density/internal/processing/fusion"
)

type options struct {
	configPath string
	dir        string
	maskOut    string
	reference  string
	saveMasks  bool
	debugMasks bool

	fusion        string
	shadowRemoval bool
	contrastBoost bool
	shadowKernel  int
	boostKernel   int
	blurHue       int
	blurSat       int
	blurVal       int
	workers       int
	ranges        rangeOverrides
}

type rangeOverride struct {
	tier    config.Tier
	channel config.Channel
	r       config.Range
}

// rangeOverrides collects repeated -range tier.channel=min:max flags.
type rangeOverrides []rangeOverride

func (ro *rangeOverrides) String() string {
	parts := make([]string, len(*ro))
	for i, o := range *ro {
		parts[i] = fmt.Sprintf("%s.%s=%d:%d", o.tier, o.channel, o.r.Min, o.r.Max)
	}
	return strings.Join(parts, ",")
}

func (ro *rangeOverrides) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected tier.channel=min:max, got %q", s)
	}
	tierName, channelName, ok := strings.Cut(key, ".")
	if !ok {
		return fmt.Errorf("expected tier.channel=min:max, got %q", s)
	}

	tier, err := config.ParseTier(tierName)
	if err != nil {
		return err
	}
	channel, err := config.ParseChannel(channelName)
	if err != nil {
		return err
	}
	r, err := config.ParseRange(value)
	if err != nil {
		return err
	}

	*ro = append(*ro, rangeOverride{tier: tier, channel: channel, r: r})
	return nil
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *options) {
	def := config.Default()
	o := &options{}

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags] <image>\n  %s [flags] -dir <directory>\n\nFlags:\n", appName, appName)
		fs.PrintDefaults()
	}

	fs.StringVar(&o.configPath, "config", "", "YAML configuration file; flags override its values")
	fs.StringVar(&o.dir, "dir", "", "process every .jpg under this directory")
	fs.StringVar(&o.maskOut, "mask", "", "single image: write the rock mask to this path")
	fs.StringVar(&o.reference, "reference", "", "single image: compare the rock mask with this hand-labelled mask")
	fs.BoolVar(&o.saveMasks, "save-masks", true, "batch: write <name>_mask.jpg next to each image")
	fs.BoolVar(&o.debugMasks, "debug-masks", false, "write every tier/channel mask as <name>_<tier>_<channel>.png")

	fs.StringVar(&o.fusion, "fusion", def.Fusion, "fusion policy: "+strings.Join(fusion.Names(), ", "))
	fs.BoolVar(&o.shadowRemoval, "shadow-removal", def.ShadowRemoval, "divide the value channel by its closed background")
	fs.BoolVar(&o.contrastBoost, "contrast-boost", def.ContrastBoost, "dilate and stretch the saturation channel")
	fs.IntVar(&o.shadowKernel, "shadow-kernel", def.ShadowKernel, "shadow removal structuring element size")
	fs.IntVar(&o.boostKernel, "boost-kernel", def.BoostKernel, "contrast boost structuring element size")
	fs.IntVar(&o.blurHue, "blur-hue", def.BlurKernels.Hue, "Gaussian kernel for the hue channel (odd)")
	fs.IntVar(&o.blurSat, "blur-saturation", def.BlurKernels.Saturation, "Gaussian kernel for the saturation channel (odd)")
	fs.IntVar(&o.blurVal, "blur-value", def.BlurKernels.Value, "Gaussian kernel for the value channel (odd)")
	fs.IntVar(&o.workers, "workers", def.Workers, "images processed in parallel in batch mode")
	fs.Var(&o.ranges, "range", "override one threshold, e.g. low.hue=0:30 (repeatable)")

	return fs, o
}

// buildConfig layers defaults, the optional YAML file and explicitly set flags.
func buildConfig(fs *flag.FlagSet, o *options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "fusion":
			cfg.Fusion = o.fusion
		case "shadow-removal":
			cfg.ShadowRemoval = o.shadowRemoval
		case "contrast-boost":
			cfg.ContrastBoost = o.contrastBoost
		case "shadow-kernel":
			cfg.ShadowKernel = o.shadowKernel
		case "boost-kernel":
			cfg.BoostKernel = o.boostKernel
		case "blur-hue":
			cfg.BlurKernels.Hue = o.blurHue
		case "blur-saturation":
			cfg.BlurKernels.Saturation = o.blurSat
		case "blur-value":
			cfg.BlurKernels.Value = o.blurVal
		case "workers":
			cfg.Workers = o.workers
		}
	})

	for _, ov := range o.ranges {
		cfg.Thresholds.Set(ov.tier, ov.channel, ov.r)
	}

	return cfg, cfg.Validate()
}
