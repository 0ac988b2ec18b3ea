package calculator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrorDisplay is the text FormatResult gives for NaN and infinite values.
const ErrorDisplay = "Error"

// FormatResult renders a result for display. Whole numbers are written
// without a fractional part, so 4.0 is "4". NaN and infinities are
// ErrorDisplay.
func FormatResult(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrorDisplay
	}
	// float64(math.MaxInt64) is 2^63, which is itself out of range.
	if v == math.Trunc(v) && v >= math.MinInt64 && v < math.MaxInt64 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var (
	numberRE  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	zeroRE    = regexp.MustCompile(`^0+(\.0+)?$`)
	integerRE = regexp.MustCompile(`^-?\d+$`)
)

// IsValidNumber reports whether s, ignoring surrounding whitespace, is a
// plain decimal number with an optional sign and fractional part.
func IsValidNumber(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && numberRE.MatchString(s)
}

// IsZeroOnly reports whether s is some spelling of zero, like "00" or "0.00".
func IsZeroOnly(s string) bool {
	return zeroRE.MatchString(strings.TrimSpace(s))
}

// IsInteger reports whether s is an optionally signed run of digits.
func IsInteger(s string) bool {
	return integerRE.MatchString(strings.TrimSpace(s))
}
