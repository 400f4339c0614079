package curve

import (
	"fmt"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
)

// GetPrice returns the spot price of the base token implied by the curve.
// The multiplier selects which side's target ratio drives the correction:
// on a normal curve below one it is the quote side, otherwise the base side.
//
//	m     = (target/reserve)^2 * slope + (1 - slope)
//	price = m * marketPrice
func GetPrice(pool model.PoolState, cfg model.CurveConfig, multiplier model.Multiplier) (num.Value, error) {
	target, reserve := pool.TargetBaseReserve, pool.BaseReserve
	if cfg.Kind == model.CurveNormal && multiplier == model.MultiplierBelowOne {
		target, reserve = pool.TargetQuoteReserve, pool.QuoteReserve
	}

	m, err := correction(target, reserve, cfg.Slope)
	if err != nil {
		return num.Unknown(), err
	}
	return m.Mul(pool.MarketPrice), nil
}

func correction(target, reserve, slope num.Value) (num.Value, error) {
	ratio, err := target.Div(reserve)
	if err != nil {
		return num.Unknown(), fmt.Errorf("target/reserve ratio: %w", err)
	}
	squared, err := ratio.Pow(2)
	if err != nil {
		return num.Unknown(), err
	}
	return squared.Mul(slope).Add(num.One().Sub(slope)), nil
}

// MultiplierOf derives the side selector from reserve/target comparisons.
// A quote side below target is BelowOne; a base side below target is AboveOne.
// Unknown reserves report One.
func MultiplierOf(pool model.PoolState) model.Multiplier {
	switch {
	case pool.QuoteReserve.IsNaN() || pool.BaseReserve.IsNaN():
		return model.MultiplierOne
	case pool.QuoteReserve.IsLessThan(pool.TargetQuoteReserve):
		return model.MultiplierBelowOne
	case pool.BaseReserve.IsLessThan(pool.TargetBaseReserve):
		return model.MultiplierAboveOne
	default:
		return model.MultiplierOne
	}
}
