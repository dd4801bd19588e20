package numberutil

import (
	"errors"
	"math"
)

// Settlement amounts are unsigned minor units. None of the arithmetic here is
// allowed to wrap silently, a failed check must abort the whole operation.
var ErrOverflow = errors.New("arithmetic overflow")

func CheckedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}

	return a + b, nil
}

func CheckedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}

	return a - b, nil
}

func CheckedMul(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, ErrOverflow
	}

	return a * b, nil
}

func CheckedDiv(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, ErrOverflow
	}

	return a / b, nil
}

func CheckedAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, ErrOverflow
	}

	return a + b, nil
}
