package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// AlignDown rounds n down to the nearest multiple of width. width must be a power of two.
func AlignDown(n, width int) int {
	return n &^ (width - 1)
}

// AlignUp rounds n up to the nearest multiple of width. width must be a power of two.
func AlignUp(n, width int) int {
	return (n + width - 1) &^ (width - 1)
}

// CeilDiv returns the number of width-sized chunks needed to cover n items.
func CeilDiv(n, width int) int {
	if width <= 0 {
		return 0
	}
	return (n + width - 1) / width
}
