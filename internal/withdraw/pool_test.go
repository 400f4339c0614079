package withdraw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
)

func scenarioRequest() Request {
	return Request{
		BaseShare:  num.New(100),
		QuoteShare: num.New(200),
		BaseToken:  model.TokenConfig{Symbol: "BASE", Decimals: 6},
		QuoteToken: model.TokenConfig{Symbol: "QUOTE", Decimals: 6},
		BasePrice:  num.New(1),
		QuotePrice: num.New(4),
		Pool: model.PoolState{
			BaseReserve:        num.New(1000),
			TargetBaseReserve:  num.New(4000),
			BaseSupply:         num.New(1000),
			QuoteReserve:       num.New(1000),
			TargetQuoteReserve: num.New(2000),
			QuoteSupply:        num.New(1000),
		},
	}
}

func TestFromShares(t *testing.T) {
	got, err := FromShares(scenarioRequest())
	require.NoError(t, err)
	assert.Equal(t, Result{BaseWithdrawalAmount: "0.0001", QuoteWithdrawalAmount: "0.00019"}, got)
}

func TestFromSharesQuoteLow(t *testing.T) {
	req := Request{
		BaseShare:  num.New(200),
		QuoteShare: num.New(100),
		BaseToken:  model.TokenConfig{Symbol: "BASE", Decimals: 0},
		QuoteToken: model.TokenConfig{Symbol: "QUOTE", Decimals: 0},
		BasePrice:  num.New(4),
		QuotePrice: num.New(1),
		Pool: model.PoolState{
			BaseReserve:        num.New(1000),
			TargetBaseReserve:  num.New(2000),
			BaseSupply:         num.New(1000),
			QuoteReserve:       num.New(1000),
			TargetQuoteReserve: num.New(4000),
			QuoteSupply:        num.New(1000),
		},
	}

	raw, err := FromSharesRaw(req)
	require.NoError(t, err)
	assert.True(t, raw.Base.Equal(num.New(190)), "base %s", raw.Base)
	assert.True(t, raw.Quote.Equal(num.New(100)), "quote %s", raw.Quote)
}

func TestFromSharesUsesOwnTargets(t *testing.T) {
	// Base ratio 1000/4000 is lower than quote ratio 1000/2000. Dividing the
	// quote reserve by the base target would flip the routing.
	base, quote := Sides(scenarioRequest())
	baseLow, err := IsBaseLow(base, quote)
	require.NoError(t, err)
	assert.True(t, baseLow)
}

func TestIsBaseLowTie(t *testing.T) {
	side := model.ShareInfo{Reserve: num.New(10), TargetReserve: num.New(20)}
	baseLow, err := IsBaseLow(side, side)
	require.NoError(t, err)
	assert.True(t, baseLow)
}

func TestFromSharesTruncates(t *testing.T) {
	req := scenarioRequest()
	req.BaseShare = num.New(333)
	req.BaseToken.Decimals = 2
	req.QuoteToken.Decimals = 2

	got, err := FromShares(req)
	require.NoError(t, err)
	// 1000 * 333 / 1000 = 333 raw -> 3.33
	assert.Equal(t, "3.33", got.BaseWithdrawalAmount)
}

func TestFromSharesMissingPrice(t *testing.T) {
	req := scenarioRequest()
	req.QuotePrice = num.Unknown()

	got, err := FromShares(req)
	require.NoError(t, err)
	assert.Equal(t, "0.0001", got.BaseWithdrawalAmount)
	assert.Equal(t, "NaN", got.QuoteWithdrawalAmount)
}

func TestFromSharesZeroTarget(t *testing.T) {
	req := scenarioRequest()
	req.Pool.TargetQuoteReserve = num.Zero()
	_, err := FromShares(req)
	require.ErrorIs(t, err, num.ErrDivisionByZero)
}
