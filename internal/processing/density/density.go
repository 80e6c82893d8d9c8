// Package density measures how much of a soil profile is covered by rock fragments.
package density

import (
	"errors"
	"fmt"

	"rock-density/internal/mask"
)

var (
	// ErrEmptyProfile means the profile mask selects no pixel.
	ErrEmptyProfile = errors.New("profile mask is empty")
	// ErrDimensionMismatch means profile and rock masks differ in shape.
	ErrDimensionMismatch = errors.New("profile and rock masks differ in size")
)

// Estimate returns |profile ∧ rock| / |profile|, a value in [0, 1].
func Estimate(profile, rock *mask.Mask) (float64, error) {
	if profile == nil || rock == nil {
		return 0, fmt.Errorf("%w: nil mask", ErrDimensionMismatch)
	}

	overlap, err := profile.And(rock)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	}

	total := profile.Count()
	if total == 0 {
		return 0, ErrEmptyProfile
	}

	return float64(overlap.Count()) / float64(total), nil
}

// Percent formats a density ratio with two decimals, e.g. "25.00%".
func Percent(d float64) string {
	return fmt.Sprintf("%.2f%%", d*100)
}
