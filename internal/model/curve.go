package model

import (
	"errors"
	"fmt"
	"strings"

	"liquidityEngine/internal/num"
)

var ErrInvalidCurve = errors.New("invalid curve config")

// CurveKind selects the bonding-curve variant of a pool.
type CurveKind int

const (
	CurveNormal CurveKind = iota
	CurveStable
)

func (k CurveKind) String() string {
	switch k {
	case CurveNormal:
		return "normal"
	case CurveStable:
		return "stable"
	default:
		return fmt.Sprintf("curve(%d)", int(k))
	}
}

// ParseCurveKind accepts "normal" or "stable", case-insensitive.
func ParseCurveKind(input string) (CurveKind, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "normal", "":
		return CurveNormal, nil
	case "stable":
		return CurveStable, nil
	default:
		return CurveNormal, fmt.Errorf("%w: unknown kind %q", ErrInvalidCurve, input)
	}
}

// Multiplier tells the pricer which side of the pool is authoritative.
type Multiplier int

const (
	MultiplierOne Multiplier = iota
	MultiplierAboveOne
	MultiplierBelowOne
)

func (m Multiplier) String() string {
	switch m {
	case MultiplierOne:
		return "one"
	case MultiplierAboveOne:
		return "above_one"
	case MultiplierBelowOne:
		return "below_one"
	default:
		return fmt.Sprintf("multiplier(%d)", int(m))
	}
}

// CurveConfig holds the curve variant and its parameters. Slope lies in
// [0, 1]; 0 prices purely at the oracle and 1 purely on the curve.
type CurveConfig struct {
	Kind                     CurveKind `json:"kind"`
	Slope                    num.Value `json:"slope"`
	VirtualReservePercentage num.Value `json:"virtual_reserve_percentage"`
}

func (c CurveConfig) Validate() error {
	if c.Kind != CurveNormal && c.Kind != CurveStable {
		return fmt.Errorf("%w: %s", ErrInvalidCurve, c.Kind)
	}
	if c.Slope.IsNaN() {
		return fmt.Errorf("%w: slope is required", ErrInvalidCurve)
	}
	if c.Slope.IsNegative() || num.One().IsLessThan(c.Slope) {
		return fmt.Errorf("%w: slope %s outside [0, 1]", ErrInvalidCurve, c.Slope)
	}
	if c.VirtualReservePercentage.IsNegative() {
		return fmt.Errorf("%w: negative virtual reserve percentage", ErrInvalidCurve)
	}
	return nil
}

func (k CurveKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CurveKind) UnmarshalText(text []byte) error {
	parsed, err := ParseCurveKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
