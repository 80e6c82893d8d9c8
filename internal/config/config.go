package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Channel indexes one plane of an HSV image.
type Channel int

const (
	Hue Channel = iota
	Saturation
	Value
)

// NumChannels is the number of HSV planes.
const NumChannels = 3

// Channels lists the HSV planes in split order.
var Channels = [NumChannels]Channel{Hue, Saturation, Value}

func (c Channel) String() string {
	switch c {
	case Hue:
		return "hue"
	case Saturation:
		return "saturation"
	case Value:
		return "value"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Tier buckets rock fragments by how strongly they stand out from the soil matrix.
type Tier int

const (
	Low Tier = iota
	Medium
	High
)

// Tiers lists every contrast tier in ascending order.
var Tiers = [3]Tier{Low, Medium, High}

func (t Tier) String() string {
	switch t {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Range is an inclusive [Min, Max] interval of 8-bit sample values.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Empty reports whether no value can fall inside the range.
func (r Range) Empty() bool {
	return r.Min > r.Max
}

// Contains reports whether v lies within the range, bounds included.
func (r Range) Contains(v uint8) bool {
	return int(v) >= r.Min && int(v) <= r.Max
}

// ChannelRanges holds one range per HSV channel.
type ChannelRanges struct {
	Hue        Range `yaml:"hue"`
	Saturation Range `yaml:"saturation"`
	Value      Range `yaml:"value"`
}

// For returns the range configured for channel c.
func (cr ChannelRanges) For(c Channel) Range {
	switch c {
	case Hue:
		return cr.Hue
	case Saturation:
		return cr.Saturation
	default:
		return cr.Value
	}
}

// Thresholds is the static tier × channel range table.
type Thresholds struct {
	Low    ChannelRanges `yaml:"low"`
	Medium ChannelRanges `yaml:"medium"`
	High   ChannelRanges `yaml:"high"`
}

// For returns the ranges configured for tier t.
func (th Thresholds) For(t Tier) ChannelRanges {
	switch t {
	case Low:
		return th.Low
	case Medium:
		return th.Medium
	default:
		return th.High
	}
}

// BlurKernels holds the Gaussian kernel size applied to each channel.
type BlurKernels struct {
	Hue        int `yaml:"hue"`
	Saturation int `yaml:"saturation"`
	Value      int `yaml:"value"`
}

// For returns the kernel size for channel c.
func (bk BlurKernels) For(c Channel) int {
	switch c {
	case Hue:
		return bk.Hue
	case Saturation:
		return bk.Saturation
	default:
		return bk.Value
	}
}

// Config is passed by value into the pipeline; nothing in it is mutated after load.
type Config struct {
	ShadowRemoval bool        `yaml:"shadow_removal"`
	ContrastBoost bool        `yaml:"contrast_boost"`
	ShadowKernel  int         `yaml:"shadow_kernel"`
	BoostKernel   int         `yaml:"boost_kernel"`
	BlurKernels   BlurKernels `yaml:"blur_kernels"`
	Thresholds    Thresholds  `yaml:"thresholds"`
	Fusion        string      `yaml:"fusion"`
	Workers       int         `yaml:"workers"`
}

// Default returns the reference parameters.
func Default() Config {
	return Config{
		ShadowRemoval: true,
		ContrastBoost: false,
		ShadowKernel:  21,
		BoostKernel:   3,
		BlurKernels: BlurKernels{
			Hue:        2*7 + 1,
			Saturation: 2*2 + 1,
			Value:      2*10 + 1,
		},
		Thresholds: Thresholds{
			Low: ChannelRanges{
				Hue:        Range{0, 30},
				Saturation: Range{0, 200},
				Value:      Range{0, 220},
			},
			Medium: ChannelRanges{
				Hue:        Range{30, 120},
				Saturation: Range{0, 50},
				Value:      Range{0, 150},
			},
			High: ChannelRanges{
				Hue:        Range{120, 170},
				Saturation: Range{0, 150},
				Value:      Range{0, 130},
			},
		},
		Fusion:  "invert-low-hue",
		Workers: runtime.NumCPU(),
	}
}

// Load reads a YAML file on top of the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks kernel geometry and worker count. Inverted threshold ranges are
// accepted; they select nothing.
func (c Config) Validate() error {
	for _, ch := range Channels {
		k := c.BlurKernels.For(ch)
		if k <= 0 || k%2 == 0 {
			return fmt.Errorf("%w: %s blur kernel must be odd and positive, got %d", ErrInvalidConfig, ch, k)
		}
	}

	if c.ShadowKernel <= 0 {
		return fmt.Errorf("%w: shadow kernel must be positive, got %d", ErrInvalidConfig, c.ShadowKernel)
	}

	if c.BoostKernel <= 0 {
		return fmt.Errorf("%w: boost kernel must be positive, got %d", ErrInvalidConfig, c.BoostKernel)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}

	if c.Fusion == "" {
		return fmt.Errorf("%w: fusion policy name is empty", ErrInvalidConfig)
	}

	return nil
}
