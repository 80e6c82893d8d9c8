package config

import (
	"fmt"
	"strconv"
	"strings"
)

func ParseChannel(s string) (Channel, error) {
	for _, c := range Channels {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown channel %q", ErrInvalidConfig, s)
}

func ParseTier(s string) (Tier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown tier %q", ErrInvalidConfig, s)
}

// ParseRange reads "min:max". Bounds must lie in 0..255; min > max is allowed.
func ParseRange(s string) (Range, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return Range{}, fmt.Errorf("%w: range %q is not min:max", ErrInvalidConfig, s)
	}

	var r Range
	var err error
	if r.Min, err = parseSample(lo); err != nil {
		return Range{}, err
	}
	if r.Max, err = parseSample(hi); err != nil {
		return Range{}, err
	}
	return r, nil
}

func parseSample(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 || v > 255 {
		return 0, fmt.Errorf("%w: %q is not a sample value in 0..255", ErrInvalidConfig, s)
	}
	return v, nil
}

// Set replaces the range for channel c.
func (cr *ChannelRanges) Set(c Channel, r Range) {
	switch c {
	case Hue:
		cr.Hue = r
	case Saturation:
		cr.Saturation = r
	default:
		cr.Value = r
	}
}

// Set replaces the range for tier t and channel c.
func (th *Thresholds) Set(t Tier, c Channel, r Range) {
	switch t {
	case Low:
		th.Low.Set(c, r)
	case Medium:
		th.Medium.Set(c, r)
	default:
		th.High.Set(c, r)
	}
}
