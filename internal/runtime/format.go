package runtime

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// DisplayWidth is the number of characters a formatted result may use before it is shortened.
const DisplayWidth = 12

const (
	maxFixedMagnitude = 999999999999
	minFixedMagnitude = 0.000000000001
	exponentDigits    = 6

	// exactFractionDigits covers the longest fractional expansion of a float64 (2^-1074).
	exactFractionDigits = 1100
)

// FormatResult renders a computed value for the display.
// Values whose plain form fits in DisplayWidth characters are returned as is.
// Very large or very small magnitudes switch to exponential notation with six
// fractional digits; everything else is rounded to fit the width.
func FormatResult(result float64) string {
	plain := FormatNumber(result)
	if len(plain) <= DisplayWidth {
		return plain
	}

	abs := math.Abs(result)
	if abs > maxFixedMagnitude || abs < minFixedMagnitude {
		return formatExponential(result, exponentDigits)
	}

	// The sign of a negative value counts towards the integer part.
	integerDigits := len(FormatNumber(math.Floor(result)))
	decimalDigits := DisplayWidth - integerDigits
	if decimalDigits > 0 {
		return formatFixed(result, decimalDigits)
	}
	return FormatNumber(math.Floor(result + 0.5))
}

// formatFixed renders a finite v with the given number of decimals.
// Ties round away from zero on the exact binary value; strconv rounds them to even.
func formatFixed(v float64, decimals int) string {
	intPart, frac := exactDecimal(math.Abs(v))
	digits, _ := roundDigits(intPart+frac, len(intPart)+decimals)
	split := len(digits) - decimals

	s := digits[:split]
	if decimals > 0 {
		s += "." + digits[split:]
	}
	if v < 0 {
		s = "-" + s
	}
	return s
}

// formatExponential renders a finite v as d.ddddddde±x with the given number
// of fractional digits, rounding ties away from zero like formatFixed.
func formatExponential(v float64, fractionDigits int) string {
	intPart, frac := exactDecimal(math.Abs(v))
	all := intPart + frac
	significant := strings.TrimLeft(all, "0")

	exp := 0
	if significant == "" {
		significant = "0"
	} else {
		exp = len(intPart) - 1 - (len(all) - len(significant))
	}

	digits, carried := roundDigits(significant, fractionDigits+1)
	if carried {
		digits = digits[:fractionDigits+1]
		exp++
	}

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	b.WriteString(digits[:1])
	if fractionDigits > 0 {
		b.WriteByte('.')
		b.WriteString(digits[1:])
	}
	b.WriteByte('e')
	if exp < 0 {
		b.WriteByte('-')
		exp = -exp
	} else {
		b.WriteByte('+')
	}
	b.WriteString(strconv.Itoa(exp))
	return b.String()
}

// exactDecimal splits the exact decimal expansion of a finite, non-negative
// float64 into integer and fractional digits.
func exactDecimal(abs float64) (intPart, frac string) {
	s := new(big.Float).SetFloat64(abs).Text('f', exactFractionDigits)
	intPart, frac, _ = strings.Cut(s, ".")
	return intPart, frac
}

// roundDigits keeps the first n digits, rounding half up on the digit after them.
// It reports whether the carry grew the result by one leading digit.
func roundDigits(digits string, n int) (string, bool) {
	if n >= len(digits) {
		return digits + strings.Repeat("0", n-len(digits)), false
	}

	out := []byte(digits[:n])
	if digits[n] < '5' {
		return string(out), false
	}
	for i := n - 1; i >= 0; i-- {
		if out[i] != '9' {
			out[i]++
			return string(out), false
		}
		out[i] = '0'
	}
	return "1" + string(out), true
}

// FormatNullable is FormatResult for an optional value; nil renders as "0".
func FormatNullable(result *float64) string {
	if result == nil {
		return "0"
	}
	return FormatResult(*result)
}

// FormatNumber returns the shortest round-tripping numeral for v.
// Magnitudes in [1e-6, 1e21) use plain decimal notation, others use
// exponential notation without exponent padding ("1e+21", "1.5e-7").
// Negative zero prints as "0".
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(v, 'e', -1, 64))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// trimExponent drops the leading zeros Go pads exponents with ("e-07" -> "e-7").
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 > len(s)-1 {
		return s
	}
	exp := strings.TrimLeft(s[i+2:], "0")
	if exp == "" {
		exp = "0"
	}
	return s[:i+2] + exp
}

// ParseOperand reads the numeric prefix of an operand.
// It reports false when no number can be read, including the empty string
// and "NaN". Trailing garbage after a valid prefix is ignored, so "12." and
// "1.5e+" both parse.
func ParseOperand(s string) (float64, bool) {
	prefix := numericPrefix(s)
	if prefix == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN(), false
	}
	return v, true
}

// ValidOperand reports whether s is something the calculator can hold as an
// operand: empty, a complete numeral (entry forms like "12." included), or one
// of the non-finite results NaN and ±Infinity.
func ValidOperand(s string) bool {
	switch s {
	case "", "NaN":
		return true
	}
	return numericPrefix(s) == s
}

func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return ""
	}

	// Only accept an exponent that carries at least one digit.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}
	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
