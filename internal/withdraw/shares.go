// Package withdraw splits a liquidity provider's share claim into token
// amounts when the two sides of a pool sit at different reserve/target ratios.
package withdraw

import (
	"fmt"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
)

// Amounts holds raw withdrawal amounts for the low and high ratio sides.
type Amounts struct {
	LowTokenAmount  num.Value
	HighTokenAmount num.Value
}

// FromSharesAndBalances computes the withdrawal for a pool whose low side has
// the smaller reserve/target ratio. The low side is paid pro-rata. The high
// side is paid pro-rata on the reserve it would hold at the low side's ratio,
// plus the withdrawer's share of pool value applied to the excess above that.
func FromSharesAndBalances(low, high model.ShareInfo) (Amounts, error) {
	lowAmount, err := proRata(low.Reserve, low.Share, low.ShareSupply)
	if err != nil {
		return Amounts{}, fmt.Errorf("low amount: %w", err)
	}

	balancedHigh, err := low.Reserve.Mul(high.TargetReserve).Div(low.TargetReserve)
	if err != nil {
		return Amounts{}, fmt.Errorf("balanced high reserve: %w", err)
	}

	highBase, err := proRata(balancedHigh, high.Share, high.ShareSupply)
	if err != nil {
		return Amounts{}, fmt.Errorf("high amount: %w", err)
	}

	ratio, err := shareValueRatio(low, high)
	if err != nil {
		return Amounts{}, err
	}
	residual := high.Reserve.Sub(balancedHigh).Mul(ratio)

	return Amounts{
		LowTokenAmount:  lowAmount,
		HighTokenAmount: highBase.Add(residual),
	}, nil
}

func proRata(reserve, share, supply num.Value) (num.Value, error) {
	return reserve.Mul(share).Div(supply)
}

// shareValueRatio is the withdrawer's fraction of total share value.
func shareValueRatio(low, high model.ShareInfo) (num.Value, error) {
	owned := low.Share.Mul(low.Price).Add(high.Share.Mul(high.Price))
	total := low.ShareSupply.Mul(low.Price).Add(high.ShareSupply.Mul(high.Price))
	ratio, err := owned.Div(total)
	if err != nil {
		return num.Unknown(), fmt.Errorf("share value ratio: %w", err)
	}
	return ratio, nil
}
