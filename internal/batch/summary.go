package batch

import (
	"fmt"
	"io"
	"path/filepath"

	"rock-density/internal/processing/density"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Files  int
	Failed int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes statistics over the successful items. StdDev is the
// sample standard deviation and is zero with fewer than two successes.
func Summarize(items []Item) Summary {
	s := Summary{Files: len(items)}

	densities := make([]float64, 0, len(items))
	for _, it := range items {
		if it.Err != nil {
			s.Failed++
			continue
		}
		densities = append(densities, it.Density)
	}

	switch len(densities) {
	case 0:
		return s
	case 1:
		s.Mean = densities[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(densities, nil)
	}
	s.Min = floats.Min(densities)
	s.Max = floats.Max(densities)

	return s
}

func (s Summary) Succeeded() int {
	return s.Files - s.Failed
}

func (s Summary) String() string {
	if s.Succeeded() == 0 {
		return fmt.Sprintf("%d images, %d failed", s.Files, s.Failed)
	}
	return fmt.Sprintf("%d images, %d failed, mean %s ± %s, min %s, max %s",
		s.Files, s.Failed,
		density.Percent(s.Mean), density.Percent(s.StdDev),
		density.Percent(s.Min), density.Percent(s.Max))
}

// WriteReport prints one line per item followed by the summary.
func WriteReport(w io.Writer, items []Item) error {
	for _, it := range items {
		name := filepath.Base(it.Path)

		var err error
		if it.Err != nil {
			_, err = fmt.Fprintf(w, "%s : error: %v\n", name, it.Err)
		} else {
			_, err = fmt.Fprintf(w, "%s : %s\n", name, density.Percent(it.Density))
		}
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, Summarize(items))
	return err
}
