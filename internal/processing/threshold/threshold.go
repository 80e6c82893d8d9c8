package threshold

import (
	"context"
	"fmt"

	"rock-density/internal/config"
	"rock-density/internal/mask"
	"rock-density/internal/opencv/conversion"
	"rock-density/internal/opencv/safe"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// ChannelMasks holds one mask per channel in Hue, Saturation, Value order.
type ChannelMasks [config.NumChannels]*mask.Mask

// TierMasks maps each contrast tier to its per-channel masks.
type TierMasks map[config.Tier]ChannelMasks

// Lookup returns the mask for (tier, ch) if it is present.
func (tm TierMasks) Lookup(tier config.Tier, ch config.Channel) (*mask.Mask, bool) {
	cm, ok := tm[tier]
	if !ok || ch < 0 || int(ch) >= config.NumChannels {
		return nil, false
	}
	m := cm[ch]
	return m, m != nil
}

// RangeMask marks every sample of src inside r, bounds included. An inverted
// range yields an all-false mask.
func RangeMask(src *safe.Mat, r config.Range) (*mask.Mask, error) {
	if err := safe.ValidateChannel8U(src, "range threshold"); err != nil {
		return nil, err
	}

	if r.Empty() {
		return mask.New(src.Cols(), src.Rows()), nil
	}

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.InRangeWithScalar(src.GetMat(),
		gocv.NewScalar(float64(r.Min), 0, 0, 0),
		gocv.NewScalar(float64(r.Max), 0, 0, 0),
		&dst)

	binary, err := safe.NewMatFromMatWithTag(dst, "range_mask")
	if err != nil {
		return nil, fmt.Errorf("failed to wrap range mask: %w", err)
	}
	defer binary.Close()

	return conversion.MaskFromMat(binary)
}

type Segmenter struct {
	thresholds config.Thresholds
}

func NewSegmenter(thresholds config.Thresholds) *Segmenter {
	return &Segmenter{thresholds: thresholds}
}

// Segment thresholds every channel at every tier's range. Tiers run concurrently.
func (s *Segmenter) Segment(ctx context.Context, channels [config.NumChannels]*safe.Mat) (TierMasks, error) {
	for _, ch := range config.Channels {
		if err := safe.ValidateChannel8U(channels[ch], "segmentation"); err != nil {
			return nil, fmt.Errorf("%s channel: %w", ch, err)
		}
	}
	if err := safe.ValidateSameSize("segmentation", channels[:]...); err != nil {
		return nil, err
	}

	var results [len(config.Tiers)]ChannelMasks
	g, gctx := errgroup.WithContext(ctx)

	for i, tier := range config.Tiers {
		ranges := s.thresholds.For(tier)
		g.Go(func() error {
			for _, ch := range config.Channels {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				m, err := RangeMask(channels[ch], ranges.For(ch))
				if err != nil {
					return fmt.Errorf("%s tier, %s channel: %w", tier, ch, err)
				}
				results[i][ch] = m
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	masks := make(TierMasks, len(config.Tiers))
	for i, tier := range config.Tiers {
		masks[tier] = results[i]
	}

	return masks, nil
}
