// Package numfmt renders integers and floats of any magnitude as fixed-point,
// comma-grouped or scientific text.
//
// Rounding is always done on the decimal digits of a value: floats use their
// shortest round-trip representation, so a float that prints as 2.675 rounds
// to 2.68 rather than to the 2.67 its binary expansion would suggest. Integers
// use their exact digit string, which keeps scientific notation working for
// values far beyond float64 range.
package numfmt

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/dicetables/pkg/bigmath"
)

// Default formatter settings.
const (
	DefaultShownDigits   = 4
	DefaultMaxCommaExp   = 6
	DefaultMinFixedPtExp = -3
)

var (
	// ErrInvalidDigits is returned when ShownDigits is less than one.
	ErrInvalidDigits = errors.New("numfmt: shown digits must be at least 1")

	// ErrInvalidExponents is returned when the comma and fixed-point thresholds are inverted.
	ErrInvalidExponents = errors.New("numfmt: max comma exponent must be >= 0 and min fixed point exponent must be <= 0")
)

// Formatter chooses a notation by decimal exponent. Exponents above
// MaxCommaExp or below MinFixedPtExp are written in scientific notation with
// ShownDigits significant digits; everything else is written out.
type Formatter struct {
	ShownDigits   int
	MaxCommaExp   int
	MinFixedPtExp int
}

// Default returns the formatter used throughout dicetables: 4 digits, commas up to 10^6,
// fixed point down to 10^-3.
func Default() Formatter {
	return Formatter{
		ShownDigits:   DefaultShownDigits,
		MaxCommaExp:   DefaultMaxCommaExp,
		MinFixedPtExp: DefaultMinFixedPtExp,
	}
}

// New returns a validated Formatter.
func New(shownDigits, maxCommaExp, minFixedPtExp int) (Formatter, error) {
	f := Formatter{
		ShownDigits:   shownDigits,
		MaxCommaExp:   maxCommaExp,
		MinFixedPtExp: minFixedPtExp,
	}

	err := f.Validate()
	if err != nil {
		return Formatter{}, err
	}

	return f, nil
}

// Validate checks the formatter settings.
func (f Formatter) Validate() error {
	if f.ShownDigits < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidDigits, f.ShownDigits)
	}

	if f.MaxCommaExp < 0 || f.MinFixedPtExp > 0 {
		return fmt.Errorf("%w: max=%d min=%d", ErrInvalidExponents, f.MaxCommaExp, f.MinFixedPtExp)
	}

	return nil
}

// Format renders a safe-division result.
func (f Formatter) Format(n bigmath.Number) string {
	if n.IsInt() {
		return f.FormatInt(n.Int())
	}

	return f.FormatFloat(n.Float64())
}

// FormatInt renders an integer of any size.
func (f Formatter) FormatInt(x *big.Int) string {
	if x.Sign() == 0 {
		return "0"
	}

	d := decimalFromInt(x)
	if d.exp > f.MaxCommaExp {
		return f.scientific(d)
	}

	// BigComma takes the absolute value of its argument in place.
	return humanize.BigComma(new(big.Int).Set(x))
}

// FormatFloat renders a float64.
func (f Formatter) FormatFloat(x float64) string {
	switch {
	case x == 0:
		return "0"
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}

	d := decimalFromFloat(x)

	switch {
	case d.exp > f.MaxCommaExp || d.exp < f.MinFixedPtExp:
		return f.scientific(d)
	case d.exp >= f.ShownDigits-1:
		return commaInteger(d)
	default:
		return f.fixedPoint(d)
	}
}

func (f Formatter) scientific(d decimal) string {
	r := d.round(f.ShownDigits)

	var sb strings.Builder

	if r.neg {
		sb.WriteByte('-')
	}

	sb.WriteByte(r.digits[0])

	if len(r.digits) > 1 {
		sb.WriteByte('.')
		sb.WriteString(r.digits[1:])
	}

	sb.WriteByte('e')

	if r.exp >= 0 {
		sb.WriteByte('+')
	}

	sb.WriteString(strconv.Itoa(r.exp))

	return sb.String()
}

func (f Formatter) fixedPoint(d decimal) string {
	r := d.round(f.ShownDigits)

	var sb strings.Builder

	if r.neg {
		sb.WriteByte('-')
	}

	if r.exp < 0 {
		sb.WriteString("0.")
		sb.WriteString(strings.Repeat("0", -r.exp-1))
		sb.WriteString(r.digits)

		return sb.String()
	}

	intDigits := r.digits
	fracDigits := ""

	if len(r.digits) > r.exp+1 {
		intDigits = r.digits[:r.exp+1]
		fracDigits = r.digits[r.exp+1:]
	} else {
		intDigits += strings.Repeat("0", r.exp+1-len(r.digits))
	}

	intPart, _ := new(big.Int).SetString(intDigits, 10)
	sb.WriteString(humanize.BigComma(intPart))

	if fracDigits != "" {
		sb.WriteByte('.')
		sb.WriteString(fracDigits)
	}

	return sb.String()
}

func commaInteger(d decimal) string {
	r := d.round(d.exp + 1)

	intPart, _ := new(big.Int).SetString(r.digits+strings.Repeat("0", max(0, r.exp+1-len(r.digits))), 10)
	if r.neg {
		intPart.Neg(intPart)
	}

	return humanize.BigComma(intPart)
}

// decimal is the value ±d.ddd × 10^exp where digits holds the d's.
type decimal struct {
	digits string
	exp    int
	neg    bool
}

func decimalFromInt(x *big.Int) decimal {
	ds := bigmath.Digits(x)

	return decimal{digits: ds, exp: len(ds) - 1, neg: x.Sign() < 0}
}

func decimalFromFloat(x float64) decimal {
	s := strconv.FormatFloat(math.Abs(x), 'e', -1, 64)
	mantissa, expStr, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(expStr)

	return decimal{
		digits: strings.Replace(mantissa, ".", "", 1),
		exp:    exp,
		neg:    x < 0,
	}
}

// round returns d rounded half-up to exactly sig significant digits.
func (d decimal) round(sig int) decimal {
	sig = max(sig, 1)

	if len(d.digits) <= sig {
		return decimal{digits: d.digits + strings.Repeat("0", sig-len(d.digits)), exp: d.exp, neg: d.neg}
	}

	kept := []byte(d.digits[:sig])
	if d.digits[sig] < '5' {
		return decimal{digits: string(kept), exp: d.exp, neg: d.neg}
	}

	for i := len(kept) - 1; i >= 0; i-- {
		if kept[i] != '9' {
			kept[i]++

			return decimal{digits: string(kept), exp: d.exp, neg: d.neg}
		}

		kept[i] = '0'
	}

	return decimal{digits: "1" + string(kept[:sig-1]), exp: d.exp + 1, neg: d.neg}
}
