package withdraw

import (
	"fmt"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
)

// Request is a withdrawal of base and quote shares from one pool.
type Request struct {
	BaseShare  num.Value
	QuoteShare num.Value
	BaseToken  model.TokenConfig
	QuoteToken model.TokenConfig
	BasePrice  num.Value
	QuotePrice num.Value
	Pool       model.PoolState
}

// Result carries withdrawal amounts in token units, truncated to each
// token's decimals.
type Result struct {
	BaseWithdrawalAmount  string `json:"base_withdrawal_amount"`
	QuoteWithdrawalAmount string `json:"quote_withdrawal_amount"`
}

// RawResult carries withdrawal amounts in raw units.
type RawResult struct {
	Base  num.Value
	Quote num.Value
}

// FromShares computes the formatted withdrawal for a request.
func FromShares(req Request) (Result, error) {
	raw, err := FromSharesRaw(req)
	if err != nil {
		return Result{}, err
	}
	return Result{
		BaseWithdrawalAmount:  num.FormatUnits(raw.Base, req.BaseToken.Decimals),
		QuoteWithdrawalAmount: num.FormatUnits(raw.Quote, req.QuoteToken.Decimals),
	}, nil
}

// FromSharesRaw routes the request through FromSharesAndBalances with the
// lower reserve/target side as low. Base is low on a tie.
func FromSharesRaw(req Request) (RawResult, error) {
	base, quote := Sides(req)

	baseLow, err := IsBaseLow(base, quote)
	if err != nil {
		return RawResult{}, err
	}

	if baseLow {
		amounts, err := FromSharesAndBalances(base, quote)
		if err != nil {
			return RawResult{}, err
		}
		return RawResult{Base: amounts.LowTokenAmount, Quote: amounts.HighTokenAmount}, nil
	}

	amounts, err := FromSharesAndBalances(quote, base)
	if err != nil {
		return RawResult{}, err
	}
	return RawResult{Base: amounts.HighTokenAmount, Quote: amounts.LowTokenAmount}, nil
}

// Sides projects the request onto a ShareInfo per side.
func Sides(req Request) (base, quote model.ShareInfo) {
	base = model.ShareInfo{
		Price:         req.BasePrice,
		Share:         req.BaseShare,
		ShareSupply:   req.Pool.BaseSupply,
		Reserve:       req.Pool.BaseReserve,
		TargetReserve: req.Pool.TargetBaseReserve,
	}
	quote = model.ShareInfo{
		Price:         req.QuotePrice,
		Share:         req.QuoteShare,
		ShareSupply:   req.Pool.QuoteSupply,
		Reserve:       req.Pool.QuoteReserve,
		TargetReserve: req.Pool.TargetQuoteReserve,
	}
	return base, quote
}

// IsBaseLow reports whether the base side's reserve/target ratio is not
// greater than the quote side's. Each side is measured against its own target.
func IsBaseLow(base, quote model.ShareInfo) (bool, error) {
	baseRatio, err := base.Reserve.Div(base.TargetReserve)
	if err != nil {
		return false, fmt.Errorf("base reserve/target ratio: %w", err)
	}
	quoteRatio, err := quote.Reserve.Div(quote.TargetReserve)
	if err != nil {
		return false, fmt.Errorf("quote reserve/target ratio: %w", err)
	}
	return !quoteRatio.IsLessThan(baseRatio), nil
}
