package pipeline

import (
	"fmt"

	"rock-density/internal/mask"
)

// SegmentationMetrics scores a predicted rock mask against a hand-labelled one.
// Used to compare fusion policies while the default rule remains unvalidated.
type SegmentationMetrics struct {
	IoU                    float64 // Intersection over Union
	DiceCoefficient        float64 // Dice Similarity Coefficient
	MisclassificationError float64 // Misclassification Error Rate
	Precision              float64
	Recall                 float64
}

// CompareMasks computes overlap metrics of predicted against reference.
func CompareMasks(predicted, reference *mask.Mask) (*SegmentationMetrics, error) {
	if predicted == nil || reference == nil {
		return nil, fmt.Errorf("predicted and reference masks cannot be nil")
	}

	if !predicted.SameSize(reference) {
		return nil, fmt.Errorf("%w: predicted %dx%d, reference %dx%d", mask.ErrDimensionMismatch,
			predicted.Width(), predicted.Height(), reference.Width(), reference.Height())
	}

	var truePositive, falsePositive, falseNegative, trueNegative int

	for y := 0; y < predicted.Height(); y++ {
		for x := 0; x < predicted.Width(); x++ {
			p := predicted.At(x, y)
			r := reference.At(x, y)

			switch {
			case p && r:
				truePositive++
			case p && !r:
				falsePositive++
			case !p && r:
				falseNegative++
			default:
				trueNegative++
			}
		}
	}

	metrics := &SegmentationMetrics{}
	totalPixels := truePositive + falsePositive + falseNegative + trueNegative

	intersection := float64(truePositive)
	union := float64(truePositive + falsePositive + falseNegative)
	if union > 0 {
		metrics.IoU = intersection / union
		metrics.DiceCoefficient = (2.0 * intersection) / float64(2*truePositive+falsePositive+falseNegative)
	} else {
		// Both masks empty: perfect agreement.
		metrics.IoU = 1.0
		metrics.DiceCoefficient = 1.0
	}

	if totalPixels > 0 {
		metrics.MisclassificationError = float64(falsePositive+falseNegative) / float64(totalPixels)
	}

	if truePositive+falsePositive > 0 {
		metrics.Precision = intersection / float64(truePositive+falsePositive)
	}
	if truePositive+falseNegative > 0 {
		metrics.Recall = intersection / float64(truePositive+falseNegative)
	}

	return metrics, nil
}
