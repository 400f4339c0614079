package model

import "liquidityEngine/internal/num"

// PoolState is a read-only snapshot of a pool's reserves and share supply,
// in raw integer-scaled token units.
type PoolState struct {
	BaseReserve        num.Value `json:"base_reserve"`
	QuoteReserve       num.Value `json:"quote_reserve"`
	BaseSupply         num.Value `json:"base_supply"`
	QuoteSupply        num.Value `json:"quote_supply"`
	TargetBaseReserve  num.Value `json:"target_base_reserve"`
	TargetQuoteReserve num.Value `json:"target_quote_reserve"`
	MarketPrice        num.Value `json:"market_price"`
}

// PoolConfig describes a configured pool. Tokens are referenced by symbol.
type PoolConfig struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	BaseSymbol  string      `json:"base"`
	QuoteSymbol string      `json:"quote"`
	Curve       CurveConfig `json:"curve"`
	FarmKey     string      `json:"farm,omitempty"`
}
