package valuation

import (
	"fmt"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
	"liquidityEngine/internal/token"
)

var hundred = num.New(100)

// FarmInputs bundles the snapshots needed for farm figures.
//
// FarmUsers follows a three-way convention per farm key: an absent key means
// the wallet's farm account is not loaded yet, a nil entry means the wallet
// holds no position.
type FarmInputs struct {
	Pools        []model.PoolConfig
	Tokens       *token.Registry
	States       map[string]*model.PoolState
	Farms        map[string]*model.FarmState
	FarmUsers    map[string]*model.FarmUserState
	Prices       map[string]num.Value
	RewardSymbol string
}

// StakeInfo is the farm figures of one pool.
type StakeInfo struct {
	PoolKey     string
	FarmKey     string
	TotalStaked num.Value
	UserStaked  num.Value
	APR         num.Value
}

// FarmPoolsStakeInfo computes StakeInfo for every pool that has a farm.
func FarmPoolsStakeInfo(in FarmInputs) ([]StakeInfo, error) {
	rows := make([]StakeInfo, 0, len(in.Pools))
	for _, pool := range in.Pools {
		if pool.FarmKey == "" {
			continue
		}
		row, err := PoolStakeInfo(pool, in)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// PoolStakeInfo computes StakeInfo for one pool-farm pair.
func PoolStakeInfo(pool model.PoolConfig, in FarmInputs) (StakeInfo, error) {
	base, quote, err := in.Tokens.Pair(pool)
	if err != nil {
		return StakeInfo{}, err
	}

	row := unknownRow(pool)
	state := in.States[pool.Key]
	farm := in.Farms[pool.FarmKey]
	user, loaded := in.FarmUsers[pool.FarmKey]
	if state == nil || farm == nil || !loaded {
		return row, nil
	}

	row.TotalStaked, err = stakedValue(farm.StakedBaseShare, farm.StakedQuoteShare, *state, base, quote, in.Prices)
	if err != nil {
		return StakeInfo{}, fmt.Errorf("pool %s total staked: %w", pool.Key, err)
	}

	row.UserStaked = num.Zero()
	if user != nil {
		row.UserStaked, err = stakedValue(user.StakedBaseShare, user.StakedQuoteShare, *state, base, quote, in.Prices)
		if err != nil {
			return StakeInfo{}, fmt.Errorf("pool %s user staked: %w", pool.Key, err)
		}
	}

	row.APR, err = farmAPR(*state, farm.Config, base, quote, in.Prices, priceOf(in.Prices, in.RewardSymbol))
	if err != nil {
		return StakeInfo{}, fmt.Errorf("pool %s apr: %w", pool.Key, err)
	}
	return row, nil
}

func unknownRow(pool model.PoolConfig) StakeInfo {
	return StakeInfo{
		PoolKey:     pool.Key,
		FarmKey:     pool.FarmKey,
		TotalStaked: num.Unknown(),
		UserStaked:  num.Unknown(),
		APR:         num.Unknown(),
	}
}

func stakedValue(baseShares, quoteShares num.Value, state model.PoolState, base, quote model.TokenConfig, prices map[string]num.Value) (num.Value, error) {
	baseValue, err := shareValue(baseShares, state.BaseSupply, state.BaseReserve, base, prices)
	if err != nil {
		return num.Unknown(), err
	}
	quoteValue, err := shareValue(quoteShares, state.QuoteSupply, state.QuoteReserve, quote, prices)
	if err != nil {
		return num.Unknown(), err
	}
	return baseValue.Add(quoteValue), nil
}

// farmAPR is the yearly reward value over pool TVL, in percent. A side's
// yearly reward is its share supply in token units times its rate times the
// reward token price.
func farmAPR(state model.PoolState, cfg model.FarmConfig, base, quote model.TokenConfig, prices map[string]num.Value, rewardPrice num.Value) (num.Value, error) {
	baseReward, err := annualReward(state.BaseSupply, base, cfg.BaseAprNumerator, cfg.BaseAprDenominator, rewardPrice)
	if err != nil {
		return num.Unknown(), err
	}
	quoteReward, err := annualReward(state.QuoteSupply, quote, cfg.QuoteAprNumerator, cfg.QuoteAprDenominator, rewardPrice)
	if err != nil {
		return num.Unknown(), err
	}

	ratio, err := baseReward.Add(quoteReward).Div(PoolTVL(state, base, quote, prices))
	if err != nil {
		return num.Unknown(), fmt.Errorf("reward over tvl: %w", err)
	}
	return ratio.Mul(hundred), nil
}

func annualReward(supply num.Value, tok model.TokenConfig, numerator, denominator, rewardPrice num.Value) (num.Value, error) {
	rate, err := numerator.Div(denominator)
	if err != nil {
		return num.Unknown(), fmt.Errorf("%s reward rate: %w", tok.Symbol, err)
	}
	return num.ToUnits(supply, tok.Decimals).Mul(rate).Mul(rewardPrice), nil
}
