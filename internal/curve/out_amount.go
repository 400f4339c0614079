package curve

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
)

var ErrInvalidMintPair = errors.New("invalid mint pair")

var hundred = num.New(100)

// SwapRequest describes a hypothetical swap. Amount is in token units of the
// input mint. Slippage is in percentage points.
type SwapRequest struct {
	FromMint solana.PublicKey
	ToMint   solana.PublicKey
	Amount   num.Value
	Slippage num.Value
}

// ExchangeRate returns quote tokens per base token from raw reserves,
// adjusted for the tokens' decimals.
func ExchangeRate(pool model.PoolState, base, quote model.TokenConfig) (num.Value, error) {
	rate, err := pool.QuoteReserve.Div(pool.BaseReserve)
	if err != nil {
		return num.Unknown(), fmt.Errorf("exchange rate: %w", err)
	}
	return rate.Shift(int32(base.Decimals) - int32(quote.Decimals)), nil
}

// GetOutAmount returns the maximum acceptable output of a swap under adverse
// slippage, in token units of the output mint. It bounds approvals and
// display; settlement is computed by the swap program.
func GetOutAmount(pool model.PoolState, base, quote model.TokenConfig, req SwapRequest) (num.Value, error) {
	if base.Mint.IsZero() || quote.Mint.IsZero() || base.Mint.Equals(quote.Mint) {
		return num.Unknown(), fmt.Errorf("%w: pool mints %s/%s are not distinct", ErrInvalidMintPair, base.Symbol, quote.Symbol)
	}
	baseToQuote := req.FromMint.Equals(base.Mint) && req.ToMint.Equals(quote.Mint)
	quoteToBase := req.FromMint.Equals(quote.Mint) && req.ToMint.Equals(base.Mint)
	if !baseToQuote && !quoteToBase {
		return num.Unknown(), fmt.Errorf("%w: %s -> %s for %s/%s", ErrInvalidMintPair, req.FromMint, req.ToMint, base.Symbol, quote.Symbol)
	}

	price, err := ExchangeRate(pool, base, quote)
	if err != nil {
		return num.Unknown(), err
	}

	var out num.Value
	if baseToQuote {
		out = req.Amount.Mul(price)
	} else {
		out, err = req.Amount.Div(price)
		if err != nil {
			return num.Unknown(), fmt.Errorf("quote to base: %w", err)
		}
	}

	bound, err := hundred.Add(req.Slippage).Div(hundred)
	if err != nil {
		return num.Unknown(), err
	}
	return out.Mul(bound), nil
}
