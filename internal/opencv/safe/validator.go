package safe

import (
	"fmt"

	"gocv.io/x/gocv"
)

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

// ValidateChannel8U checks for a single-plane 8-bit Mat.
func ValidateChannel8U(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("operation %s requires an 8-bit single-channel Mat, got type %d",
			operation, int(mat.Type()))
	}

	return nil
}

// ValidateColor8U checks for a three-plane 8-bit Mat.
func ValidateColor8U(mat *Mat, operation string) error {
	if err := ValidateMatForOperation(mat, operation); err != nil {
		return err
	}

	if mat.Type() != gocv.MatTypeCV8UC3 {
		return fmt.Errorf("operation %s requires an 8-bit 3-channel Mat, got %d channels of type %d",
			operation, mat.Channels(), int(mat.Type()))
	}

	return nil
}

// ValidateSameSize checks that every Mat shares the first Mat's dimensions.
func ValidateSameSize(operation string, mats ...*Mat) error {
	if len(mats) == 0 {
		return nil
	}

	rows, cols := mats[0].Rows(), mats[0].Cols()
	for i, m := range mats[1:] {
		if m.Rows() != rows || m.Cols() != cols {
			return fmt.Errorf("Mat %d is %dx%d, expected %dx%d for operation: %s",
				i+1, m.Cols(), m.Rows(), cols, rows, operation)
		}
	}

	return nil
}

// ValidateKernelSize checks a structuring element or blur kernel dimension.
func ValidateKernelSize(size int, requireOdd bool, operation string) error {
	if size <= 0 {
		return fmt.Errorf("kernel size %d must be positive for operation: %s", size, operation)
	}

	if requireOdd && size%2 == 0 {
		return fmt.Errorf("kernel size %d must be odd for operation: %s", size, operation)
	}

	return nil
}
