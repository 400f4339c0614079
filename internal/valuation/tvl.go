// Package valuation computes total value locked and farm yield figures from
// pool, farm and price snapshots. Missing snapshot data yields unknown values
// rather than errors so that partial data never understates a total.
package valuation

import (
	"fmt"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
	"liquidityEngine/internal/token"
)

// TotalValueLocked sums PoolTVL over the configured pools. It returns zero
// when no pool is configured or no pool state has been loaded yet, and
// unknown when only some states or prices are available.
func TotalValueLocked(pools []model.PoolConfig, tokens *token.Registry, states map[string]*model.PoolState, prices map[string]num.Value) (num.Value, error) {
	if len(pools) == 0 || !anyState(pools, states) {
		return num.Zero(), nil
	}

	total := num.Zero()
	for _, pool := range pools {
		base, quote, err := tokens.Pair(pool)
		if err != nil {
			return num.Unknown(), err
		}
		state := states[pool.Key]
		if state == nil {
			total = num.Unknown()
			continue
		}
		total = total.Add(PoolTVL(*state, base, quote, prices))
	}
	return total, nil
}

// PoolTVL values both reserves of one pool at the given prices, keyed by
// token symbol.
func PoolTVL(state model.PoolState, base, quote model.TokenConfig, prices map[string]num.Value) num.Value {
	baseValue := sideValue(state.BaseReserve, base, prices)
	quoteValue := sideValue(state.QuoteReserve, quote, prices)
	return baseValue.Add(quoteValue)
}

func sideValue(raw num.Value, tok model.TokenConfig, prices map[string]num.Value) num.Value {
	return num.ToUnits(raw, tok.Decimals).Mul(priceOf(prices, tok.Symbol))
}

func priceOf(prices map[string]num.Value, symbol string) num.Value {
	price, ok := prices[symbol]
	if !ok {
		return num.Unknown()
	}
	return price
}

func anyState(pools []model.PoolConfig, states map[string]*model.PoolState) bool {
	for _, pool := range pools {
		if states[pool.Key] != nil {
			return true
		}
	}
	return false
}

// shareValue projects shares onto the reserve pro-rata and values the result.
func shareValue(shares, supply, reserve num.Value, tok model.TokenConfig, prices map[string]num.Value) (num.Value, error) {
	amount, err := reserve.Mul(shares).Div(supply)
	if err != nil {
		return num.Unknown(), fmt.Errorf("%s share value: %w", tok.Symbol, err)
	}
	return sideValue(amount, tok, prices), nil
}
