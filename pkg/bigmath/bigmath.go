// Package bigmath provides overflow-free helpers for arbitrary-precision integers:
// safe division into float64, decimal magnitude, powers of ten, log10 and
// mantissa/exponent extraction for numbers far beyond float64 range.
package bigmath

import (
	"errors"
	"math"
	"math/big"
	"strings"
)

var (
	// ErrDivisionByZero is returned when a denominator is zero.
	ErrDivisionByZero = errors.New("bigmath: division by zero")

	// ErrNonPositive is returned when a strictly positive magnitude is required.
	ErrNonPositive = errors.New("bigmath: value must be non-zero")
)

// log10Digits is the number of leading digits kept when computing Log10 of a huge integer.
const log10Digits = 17

var bigTen = big.NewInt(10)

// Number is the result of a safe division. It holds a float64 whenever the
// quotient fits in float64 range, otherwise the truncated integer quotient.
type Number struct {
	integer *big.Int
	float   float64
}

// FloatNumber wraps a float64.
func FloatNumber(f float64) Number {
	return Number{float: f}
}

// IntNumber wraps a copy of an integer.
func IntNumber(x *big.Int) Number {
	return Number{integer: new(big.Int).Set(x)}
}

// IsInt reports whether the number is stored as an exact integer.
func (n Number) IsInt() bool {
	return n.integer != nil
}

// Int returns the integer value, truncating floats toward zero.
func (n Number) Int() *big.Int {
	if n.integer != nil {
		return new(big.Int).Set(n.integer)
	}

	i, _ := big.NewFloat(n.float).Int(nil)

	return i
}

// Float64 returns the value as float64. Integers outside float range become ±Inf.
func (n Number) Float64() float64 {
	if n.integer == nil {
		return n.float
	}

	f, _ := new(big.Float).SetInt(n.integer).Float64()

	return f
}

// String renders the number in Go's shortest float form, or as a plain integer.
func (n Number) String() string {
	if n.integer != nil {
		return n.integer.String()
	}

	return big.NewFloat(n.float).Text('g', -1)
}

// Div divides num by den using exact rational arithmetic. The quotient is
// returned as float64 when it is finite, otherwise as the integer quotient
// truncated toward zero.
func Div(num, den *big.Int) (Number, error) {
	if den.Sign() == 0 {
		return Number{}, ErrDivisionByZero
	}

	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	if !math.IsInf(f, 0) {
		return Number{float: f}, nil
	}

	return Number{integer: new(big.Int).Quo(num, den)}, nil
}

// Magnitude returns floor(log10(|x|)).
func Magnitude(x *big.Int) (int, error) {
	if x.Sign() == 0 {
		return 0, ErrNonPositive
	}

	return len(digits(x)) - 1, nil
}

// MustMagnitude is Magnitude for values known to be non-zero. Panics on zero.
func MustMagnitude(x *big.Int) int {
	m, err := Magnitude(x)
	if err != nil {
		panic(err)
	}

	return m
}

// Pow10 returns 10^n as a fresh integer. Negative n yields 1.
func Pow10(n int) *big.Int {
	if n <= 0 {
		return big.NewInt(1)
	}

	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

// TruncationFactor returns 10^max(0, Magnitude(x)-keepDigits). Dividing x by the
// factor leaves roughly keepDigits+1 significant digits. Zero x yields 1.
func TruncationFactor(x *big.Int, keepDigits int) *big.Int {
	if x.Sign() == 0 {
		return big.NewInt(1)
	}

	return Pow10(MustMagnitude(x) - keepDigits)
}

// Log10 returns log10(x) for positive x without converting x to float64.
// Returns -Inf for zero and NaN for negative input.
func Log10(x *big.Int) float64 {
	switch x.Sign() {
	case 0:
		return math.Inf(-1)
	case -1:
		return math.NaN()
	}

	mantissa, exp := MantissaExponent(x, log10Digits)

	f, _, err := big.ParseFloat(mantissa, 10, 64, big.ToNearestEven)
	if err != nil {
		return math.NaN()
	}

	m, _ := f.Float64()

	return math.Log10(m) + float64(exp)
}

// MantissaExponent splits |x| into a mantissa string d.ddd with at most
// digitCount significant digits (truncated) and its decimal exponent.
// Zero yields ("0", 0).
func MantissaExponent(x *big.Int, digitCount int) (string, int) {
	if x.Sign() == 0 {
		return "0", 0
	}

	ds := digits(x)
	exp := len(ds) - 1

	digitCount = max(digitCount, 1)
	if len(ds) > digitCount {
		ds = ds[:digitCount]
	}

	if len(ds) == 1 {
		return ds, exp
	}

	var sb strings.Builder

	sb.WriteByte(ds[0])
	sb.WriteByte('.')
	sb.WriteString(ds[1:])

	return sb.String(), exp
}

// Digits returns the decimal digits of |x| without sign.
func Digits(x *big.Int) string {
	return digits(x)
}

func digits(x *big.Int) string {
	return new(big.Int).Abs(x).Text(10)
}
