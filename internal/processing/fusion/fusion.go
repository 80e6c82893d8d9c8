// Package fusion combines per-tier, per-channel threshold masks into a single
// rock-fragment mask. No policy here has been validated against field data;
// they are starting points meant to be replaced.
package fusion

import (
	"errors"
	"fmt"
	"sort"

	"rock-density/internal/config"
	"rock-density/internal/mask"
	"rock-density/internal/processing/threshold"
)

var (
	// ErrMissingMask means a policy needs a tier/channel mask the input lacks.
	ErrMissingMask = errors.New("required mask missing")
	// ErrUnknownPolicy means no policy is registered under the requested name.
	ErrUnknownPolicy = errors.New("unknown fusion policy")
)

// Key names one tier/channel mask.
type Key struct {
	Tier    config.Tier
	Channel config.Channel
}

func (k Key) String() string {
	return k.Tier.String() + "/" + k.Channel.String()
}

// Policy turns the tier × channel mask table into one rock mask.
type Policy interface {
	Name() string
	// Requires lists the masks Fuse reads. Apply checks them before fusing.
	Requires() []Key
	Fuse(masks threshold.TierMasks) (*mask.Mask, error)
}

// Func adapts a plain function into a Policy.
type Func struct {
	PolicyName string
	Needs      []Key
	Fn         func(masks threshold.TierMasks) (*mask.Mask, error)
}

func (f Func) Name() string    { return f.PolicyName }
func (f Func) Requires() []Key { return f.Needs }

func (f Func) Fuse(masks threshold.TierMasks) (*mask.Mask, error) {
	return f.Fn(masks)
}

// Validate reports the first required mask missing from masks.
func Validate(p Policy, masks threshold.TierMasks) error {
	for _, k := range p.Requires() {
		if _, ok := masks.Lookup(k.Tier, k.Channel); !ok {
			return fmt.Errorf("%w: policy %s needs %s", ErrMissingMask, p.Name(), k)
		}
	}
	return nil
}

// Apply validates requirements and runs the policy.
func Apply(p Policy, masks threshold.TierMasks) (*mask.Mask, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil policy", ErrUnknownPolicy)
	}
	if err := Validate(p, masks); err != nil {
		return nil, err
	}

	fused, err := p.Fuse(masks)
	if err != nil {
		return nil, fmt.Errorf("fusion policy %s: %w", p.Name(), err)
	}
	return fused, nil
}

// InvertLowHue marks everything outside the low-contrast hue band. It is the
// fallback used when no tuned rule is configured, not a validated classifier.
func InvertLowHue() Policy {
	return Func{
		PolicyName: "invert-low-hue",
		Needs:      []Key{{config.Low, config.Hue}},
		Fn: func(masks threshold.TierMasks) (*mask.Mask, error) {
			m, _ := masks.Lookup(config.Low, config.Hue)
			return m.Not(), nil
		},
	}
}

// ContrastUnion unions the hue mask at low contrast, the saturation mask at
// high contrast and the value mask at medium contrast. Results on real profiles
// have been inconclusive.
func ContrastUnion() Policy {
	keys := []Key{
		{config.Low, config.Hue},
		{config.High, config.Saturation},
		{config.Medium, config.Value},
	}
	return Func{
		PolicyName: "contrast-union",
		Needs:      keys,
		Fn: func(masks threshold.TierMasks) (*mask.Mask, error) {
			return union(masks, keys)
		},
	}
}

func union(masks threshold.TierMasks, keys []Key) (*mask.Mask, error) {
	first, _ := masks.Lookup(keys[0].Tier, keys[0].Channel)
	out := first.Clone()

	for _, k := range keys[1:] {
		m, _ := masks.Lookup(k.Tier, k.Channel)
		merged, err := out.Or(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out = merged
	}

	return out, nil
}

var registry = map[string]func() Policy{
	"invert-low-hue": InvertLowHue,
	"contrast-union": ContrastUnion,
}

// Lookup resolves a configured policy name.
func Lookup(name string) (Policy, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownPolicy, name, Names())
	}
	return ctor(), nil
}

// Names lists registered policies in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
