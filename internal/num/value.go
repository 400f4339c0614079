package num

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DivisionPrecision is the number of fractional digits kept by Div.
// Results are rounded half-up at that digit.
const DivisionPrecision int32 = 40

// MaxExponent bounds the magnitude of Pow exponents.
const MaxExponent = 1024

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrInvalidNumber  = errors.New("invalid number")
	ErrExponentRange  = errors.New("exponent out of range")
)

// Value is a decimal that is either known or unknown. Unknown stands for
// "data not yet available" and absorbs every arithmetic operation.
// The zero Value is unknown.
type Value struct {
	d     decimal.Decimal
	known bool
}

func Unknown() Value {
	return Value{}
}

func Zero() Value {
	return Value{d: decimal.Zero, known: true}
}

func One() Value {
	return New(1)
}

func New(i int64) Value {
	return Value{d: decimal.NewFromInt(i), known: true}
}

func NewFromDecimal(d decimal.Decimal) Value {
	return Value{d: d, known: true}
}

// NewFromBigInt returns a known Value for a raw integer amount. A nil
// pointer yields unknown.
func NewFromBigInt(i *big.Int) Value {
	if i == nil {
		return Unknown()
	}
	return Value{d: decimal.NewFromBigInt(i, 0), known: true}
}

// Parse converts a decimal string. "NaN" parses to unknown.
func Parse(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if s == "NaN" {
		return Unknown(), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Unknown(), fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return Value{d: d, known: true}, nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsNaN reports whether v is unknown.
func (v Value) IsNaN() bool {
	return !v.known
}

func (v Value) IsZero() bool {
	return v.known && v.d.IsZero()
}

func (v Value) IsNegative() bool {
	return v.known && v.d.IsNegative()
}

// Decimal returns the underlying decimal and whether it is known.
func (v Value) Decimal() (decimal.Decimal, bool) {
	return v.d, v.known
}

func (v Value) Add(o Value) Value {
	if !v.known || !o.known {
		return Unknown()
	}
	return Value{d: v.d.Add(o.d), known: true}
}

func (v Value) Sub(o Value) Value {
	if !v.known || !o.known {
		return Unknown()
	}
	return Value{d: v.d.Sub(o.d), known: true}
}

func (v Value) Mul(o Value) Value {
	if !v.known || !o.known {
		return Unknown()
	}
	return Value{d: v.d.Mul(o.d), known: true}
}

// Div divides v by o. An unknown operand yields unknown without error, so a
// missing divisor never surfaces as ErrDivisionByZero.
func (v Value) Div(o Value) (Value, error) {
	if !v.known || !o.known {
		return Unknown(), nil
	}
	if o.d.IsZero() {
		return Unknown(), ErrDivisionByZero
	}
	return Value{d: v.d.DivRound(o.d, DivisionPrecision), known: true}, nil
}

// Pow raises v to an integer power with |n| <= MaxExponent. Non-negative
// exponents are exact; negative exponents divide and may fail with
// ErrDivisionByZero.
func (v Value) Pow(n int64) (Value, error) {
	if n > MaxExponent || n < -MaxExponent {
		return Unknown(), fmt.Errorf("%w: %d", ErrExponentRange, n)
	}
	if !v.known {
		return Unknown(), nil
	}
	if n == 0 {
		return One(), nil
	}
	exp := int32(n)
	if exp < 0 {
		exp = -exp
	}
	out, err := v.d.PowInt32(exp)
	if err != nil {
		return Unknown(), err
	}
	if n > 0 {
		return Value{d: out, known: true}, nil
	}
	return One().Div(Value{d: out, known: true})
}

// Shift multiplies v by 10^exp.
func (v Value) Shift(exp int32) Value {
	if !v.known {
		return Unknown()
	}
	return Value{d: v.d.Shift(exp), known: true}
}

// Truncate drops fractional digits past places without rounding.
func (v Value) Truncate(places int32) Value {
	if !v.known {
		return Unknown()
	}
	return Value{d: v.d.Truncate(places), known: true}
}

// Cmp orders values. Unknown sorts before every known value and compares
// equal to another unknown.
func (v Value) Cmp(o Value) int {
	switch {
	case !v.known && !o.known:
		return 0
	case !v.known:
		return -1
	case !o.known:
		return 1
	default:
		return v.d.Cmp(o.d)
	}
}

func (v Value) Equal(o Value) bool {
	return v.Cmp(o) == 0
}

func (v Value) IsLessThan(o Value) bool {
	return v.Cmp(o) < 0
}

// Float64 returns an approximation for display. Unknown reports false.
func (v Value) Float64() (float64, bool) {
	if !v.known {
		return 0, false
	}
	f, _ := v.d.Float64()
	return f, true
}

func (v Value) String() string {
	if !v.known {
		return "NaN"
	}
	return v.d.String()
}
