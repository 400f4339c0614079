package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
	"liquidityEngine/internal/token"
)

func testRegistry(t *testing.T) *token.Registry {
	t.Helper()
	reg, err := token.NewRegistry(
		model.TokenConfig{Symbol: "SOL", Decimals: 9},
		model.TokenConfig{Symbol: "USDC", Decimals: 6},
		model.TokenConfig{Symbol: "USDT", Decimals: 6},
		model.TokenConfig{Symbol: "DELFI", Decimals: 6},
	)
	require.NoError(t, err)
	return reg
}

func testPools() []model.PoolConfig {
	return []model.PoolConfig{
		{Key: "sol-usdc", BaseSymbol: "SOL", QuoteSymbol: "USDC", FarmKey: "farm-sol-usdc"},
		{Key: "usdt-usdc", BaseSymbol: "USDT", QuoteSymbol: "USDC"},
	}
}

func testStates() map[string]*model.PoolState {
	return map[string]*model.PoolState{
		"sol-usdc": {
			BaseReserve:  num.New(2_000_000_000),
			QuoteReserve: num.New(300_000_000),
			BaseSupply:   num.New(4_000_000_000),
			QuoteSupply:  num.New(600_000_000),
		},
		"usdt-usdc": {
			BaseReserve:  num.New(1_000_000),
			QuoteReserve: num.New(2_000_000),
			BaseSupply:   num.New(1_000_000),
			QuoteSupply:  num.New(2_000_000),
		},
	}
}

func testPrices() map[string]num.Value {
	return map[string]num.Value{
		"SOL":   num.New(150),
		"USDC":  num.One(),
		"USDT":  num.One(),
		"DELFI": num.MustParse("0.5"),
	}
}

func TestTotalValueLocked(t *testing.T) {
	tvl, err := TotalValueLocked(testPools(), testRegistry(t), testStates(), testPrices())
	require.NoError(t, err)
	assert.True(t, tvl.Equal(num.New(603)), "tvl %s", tvl)
}

func TestTotalValueLockedZeroState(t *testing.T) {
	tvl, err := TotalValueLocked(nil, nil, map[string]*model.PoolState{}, map[string]num.Value{})
	require.NoError(t, err)
	assert.True(t, tvl.IsZero())

	tvl, err = TotalValueLocked(testPools(), testRegistry(t), map[string]*model.PoolState{}, testPrices())
	require.NoError(t, err)
	assert.True(t, tvl.IsZero())
}

func TestTotalValueLockedPartial(t *testing.T) {
	states := testStates()
	delete(states, "usdt-usdc")
	tvl, err := TotalValueLocked(testPools(), testRegistry(t), states, testPrices())
	require.NoError(t, err)
	assert.True(t, tvl.IsNaN())

	prices := testPrices()
	delete(prices, "SOL")
	tvl, err = TotalValueLocked(testPools(), testRegistry(t), testStates(), prices)
	require.NoError(t, err)
	assert.True(t, tvl.IsNaN())
}

func TestTotalValueLockedUnknownSymbol(t *testing.T) {
	pools := append(testPools(), model.PoolConfig{Key: "eth-usdc", BaseSymbol: "ETH", QuoteSymbol: "USDC"})
	_, err := TotalValueLocked(pools, testRegistry(t), testStates(), testPrices())
	require.ErrorIs(t, err, token.ErrUnknownSymbol)
}

func farmInputs(t *testing.T) FarmInputs {
	return FarmInputs{
		Pools:  testPools(),
		Tokens: testRegistry(t),
		States: testStates(),
		Farms: map[string]*model.FarmState{
			"farm-sol-usdc": {
				StakedBaseShare:  num.New(1_000_000_000),
				StakedQuoteShare: num.New(150_000_000),
				Config: model.FarmConfig{
					BaseAprNumerator:    num.New(3),
					BaseAprDenominator:  num.New(4),
					QuoteAprNumerator:   num.New(1),
					QuoteAprDenominator: num.New(4),
				},
			},
		},
		FarmUsers: map[string]*model.FarmUserState{
			"farm-sol-usdc": {
				StakedBaseShare:  num.New(400_000_000),
				StakedQuoteShare: num.Zero(),
			},
		},
		Prices:       testPrices(),
		RewardSymbol: "DELFI",
	}
}

func TestFarmPoolsStakeInfo(t *testing.T) {
	rows, err := FarmPoolsStakeInfo(farmInputs(t))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "sol-usdc", row.PoolKey)
	assert.Equal(t, "farm-sol-usdc", row.FarmKey)
	assert.True(t, row.TotalStaked.Equal(num.New(150)), "total staked %s", row.TotalStaked)
	assert.True(t, row.UserStaked.Equal(num.New(30)), "user staked %s", row.UserStaked)
	assert.True(t, row.APR.Equal(num.MustParse("12.75")), "apr %s", row.APR)
}

func TestFarmUserNullVersusMissing(t *testing.T) {
	in := farmInputs(t)
	in.FarmUsers = map[string]*model.FarmUserState{"farm-sol-usdc": nil}
	rows, err := FarmPoolsStakeInfo(in)
	require.NoError(t, err)
	assert.True(t, rows[0].UserStaked.IsZero())
	assert.False(t, rows[0].APR.IsNaN())

	in.FarmUsers = map[string]*model.FarmUserState{}
	rows, err = FarmPoolsStakeInfo(in)
	require.NoError(t, err)
	assert.True(t, rows[0].UserStaked.IsNaN())
	assert.True(t, rows[0].TotalStaked.IsNaN())
	assert.True(t, rows[0].APR.IsNaN())
}

func TestFarmMissingInputs(t *testing.T) {
	in := farmInputs(t)
	in.Farms = map[string]*model.FarmState{}
	rows, err := FarmPoolsStakeInfo(in)
	require.NoError(t, err)
	assert.True(t, rows[0].TotalStaked.IsNaN())

	in = farmInputs(t)
	delete(in.Prices, "DELFI")
	rows, err = FarmPoolsStakeInfo(in)
	require.NoError(t, err)
	assert.False(t, rows[0].TotalStaked.IsNaN())
	assert.True(t, rows[0].APR.IsNaN())

	in = farmInputs(t)
	delete(in.Prices, "SOL")
	rows, err = FarmPoolsStakeInfo(in)
	require.NoError(t, err)
	assert.True(t, rows[0].TotalStaked.IsNaN())
	assert.True(t, rows[0].UserStaked.IsNaN())
	assert.True(t, rows[0].APR.IsNaN())
}

func TestFarmArithmeticErrors(t *testing.T) {
	in := farmInputs(t)
	in.Farms["farm-sol-usdc"].Config.QuoteAprDenominator = num.Zero()
	_, err := FarmPoolsStakeInfo(in)
	require.ErrorIs(t, err, num.ErrDivisionByZero)
}
