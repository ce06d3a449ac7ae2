package table

import "strconv"

// Float is a cell rendered with two decimals and aligned right.
type Float float64

func (f Float) String() string {
	return FormatFloat(float64(f))
}

// Percentage is a Float rendered with a trailing percent sign.
type Percentage float64

func (p Percentage) String() string {
	return FormatPercentage(float64(p))
}

// FormatFloat renders x with exactly two decimals, rounding the exact binary
// value to nearest. Non-finite values render as "+Inf", "-Inf" and "NaN".
func FormatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func FormatPercentage(x float64) string {
	return FormatFloat(x) + "%"
}
