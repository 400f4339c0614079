package model

import "liquidityEngine/internal/num"

// FarmConfig carries per-side reward rates as numerator/denominator pairs.
type FarmConfig struct {
	BaseAprNumerator    num.Value `json:"base_apr_numerator"`
	BaseAprDenominator  num.Value `json:"base_apr_denominator"`
	QuoteAprNumerator   num.Value `json:"quote_apr_numerator"`
	QuoteAprDenominator num.Value `json:"quote_apr_denominator"`
}

// FarmState is the staked share totals of a farm.
type FarmState struct {
	StakedBaseShare  num.Value  `json:"staked_base_share"`
	StakedQuoteShare num.Value  `json:"staked_quote_share"`
	Config           FarmConfig `json:"config"`
}

// FarmUserState is one wallet's position in a farm. In a map keyed by farm,
// an absent key means not loaded yet and a nil entry means no position.
type FarmUserState struct {
	StakedBaseShare  num.Value `json:"staked_base_share"`
	StakedQuoteShare num.Value `json:"staked_quote_share"`
}
