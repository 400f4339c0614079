// Package snapshot decodes pool, farm and price snapshots from JSON documents
// and keeps them in a session cache.
package snapshot

import (
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/tidwall/gjson"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
	"liquidityEngine/internal/token"
)

var (
	ErrInvalidDocument = errors.New("invalid snapshot document")
	ErrUnknownPool     = errors.New("unknown pool")
)

// MaxTokenDecimals is the largest token precision a snapshot may declare.
const MaxTokenDecimals = 38

// Snapshot is a self-consistent view of pools, farms and prices at a slot.
// A nil entry in States or Farms means the account is not loaded. FarmUsers
// keeps the distinction between an absent key (not loaded) and a nil entry
// (no position).
type Snapshot struct {
	Slot         uint64
	Wallet       string
	RewardSymbol string
	Tokens       *token.Registry
	Pools        []model.PoolConfig
	States       map[string]*model.PoolState
	Farms        map[string]*model.FarmState
	FarmUsers    map[string]*model.FarmUserState
	Prices       map[string]num.Value
}

// Decode parses a snapshot document. Without a wallet every farm is treated
// as holding no user position.
func Decode(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidDocument
	}
	doc := gjson.ParseBytes(data)

	snap := &Snapshot{
		Slot:         doc.Get("slot").Uint(),
		Wallet:       doc.Get("wallet").String(),
		RewardSymbol: doc.Get("reward_symbol").String(),
		States:       make(map[string]*model.PoolState),
		Farms:        make(map[string]*model.FarmState),
		FarmUsers:    make(map[string]*model.FarmUserState),
		Prices:       make(map[string]num.Value),
	}

	var err error
	if snap.Tokens, err = decodeTokens(doc.Get("tokens")); err != nil {
		return nil, err
	}
	if snap.Pools, err = decodePools(doc.Get("pools")); err != nil {
		return nil, err
	}
	if err := decodeStates(doc.Get("states"), snap.States); err != nil {
		return nil, err
	}
	if err := decodeFarms(doc.Get("farms"), snap.Farms); err != nil {
		return nil, err
	}
	if err := decodePrices(doc.Get("prices"), snap.Prices); err != nil {
		return nil, err
	}

	if snap.Wallet == "" {
		for _, pool := range snap.Pools {
			if pool.FarmKey != "" {
				snap.FarmUsers[pool.FarmKey] = nil
			}
		}
	} else if err := decodeFarmUsers(doc.Get("farm_users"), snap.FarmUsers); err != nil {
		return nil, err
	}

	return snap, nil
}

// Pool returns the configured pool with the given key.
func (s *Snapshot) Pool(key string) (model.PoolConfig, bool) {
	for _, pool := range s.Pools {
		if pool.Key == key {
			return pool, true
		}
	}
	return model.PoolConfig{}, false
}

// Select returns a view limited to the pools named by keys, in key order.
// The view shares tokens, states, farms and prices with s. No keys returns s.
func (s *Snapshot) Select(keys []string) (*Snapshot, error) {
	if len(keys) == 0 {
		return s, nil
	}
	pools := make([]model.PoolConfig, 0, len(keys))
	for _, key := range keys {
		pool, ok := s.Pool(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPool, key)
		}
		pools = append(pools, pool)
	}
	view := *s
	view.Pools = pools
	return &view, nil
}

func decodeTokens(list gjson.Result) (*token.Registry, error) {
	reg, _ := token.NewRegistry()
	var err error
	list.ForEach(func(_, item gjson.Result) bool {
		tok := model.TokenConfig{Symbol: item.Get("symbol").String()}
		tok.Decimals, err = decodeDecimals(item.Get("decimals"))
		if err != nil {
			err = fmt.Errorf("%w: token %s: %v", ErrInvalidDocument, tok.Symbol, err)
			return false
		}
		if mint := item.Get("mint").String(); mint != "" {
			tok.Mint, err = solana.PublicKeyFromBase58(mint)
			if err != nil {
				err = fmt.Errorf("%w: token %s mint: %v", ErrInvalidDocument, tok.Symbol, err)
				return false
			}
		}
		if addErr := reg.Add(tok); addErr != nil {
			err = fmt.Errorf("%w: %w", ErrInvalidDocument, addErr)
			return false
		}
		return true
	})
	return reg, err
}

// decodeDecimals accepts a missing field as zero, otherwise an integer in
// [0, MaxTokenDecimals].
func decodeDecimals(r gjson.Result) (uint8, error) {
	if !r.Exists() {
		return 0, nil
	}
	if r.Type != gjson.Number {
		return 0, fmt.Errorf("decimals %s is not a number", r.Raw)
	}
	if r.Num != math.Trunc(r.Num) || r.Num < 0 || r.Num > MaxTokenDecimals {
		return 0, fmt.Errorf("decimals %s out of range [0, %d]", r.Raw, MaxTokenDecimals)
	}
	return uint8(r.Num), nil
}

func decodePools(list gjson.Result) ([]model.PoolConfig, error) {
	pools := make([]model.PoolConfig, 0)
	var err error
	list.ForEach(func(_, item gjson.Result) bool {
		pool := model.PoolConfig{
			Key:         item.Get("key").String(),
			Name:        item.Get("name").String(),
			BaseSymbol:  item.Get("base").String(),
			QuoteSymbol: item.Get("quote").String(),
			FarmKey:     item.Get("farm").String(),
		}
		if pool.Key == "" {
			err = fmt.Errorf("%w: pool key is required", ErrInvalidDocument)
			return false
		}
		pool.Curve, err = decodeCurve(item.Get("curve"))
		if err != nil {
			err = fmt.Errorf("pool %s: %w", pool.Key, err)
			return false
		}
		pools = append(pools, pool)
		return true
	})
	return pools, err
}

func decodeCurve(item gjson.Result) (model.CurveConfig, error) {
	kind, err := model.ParseCurveKind(item.Get("kind").String())
	if err != nil {
		return model.CurveConfig{}, err
	}
	cfg := model.CurveConfig{Kind: kind}
	if cfg.Slope, err = value(item, "slope"); err != nil {
		return model.CurveConfig{}, err
	}
	if cfg.VirtualReservePercentage, err = value(item, "virtual_reserve_percentage"); err != nil {
		return model.CurveConfig{}, err
	}
	return cfg, nil
}

func decodeStates(obj gjson.Result, out map[string]*model.PoolState) error {
	var err error
	obj.ForEach(func(key, item gjson.Result) bool {
		if item.Type == gjson.Null {
			out[key.String()] = nil
			return true
		}
		state := &model.PoolState{}
		err = values(item, map[string]*num.Value{
			"base_reserve":         &state.BaseReserve,
			"quote_reserve":        &state.QuoteReserve,
			"base_supply":          &state.BaseSupply,
			"quote_supply":         &state.QuoteSupply,
			"target_base_reserve":  &state.TargetBaseReserve,
			"target_quote_reserve": &state.TargetQuoteReserve,
			"market_price":         &state.MarketPrice,
		})
		if err != nil {
			err = fmt.Errorf("state %s: %w", key.String(), err)
			return false
		}
		out[key.String()] = state
		return true
	})
	return err
}

func decodeFarms(obj gjson.Result, out map[string]*model.FarmState) error {
	var err error
	obj.ForEach(func(key, item gjson.Result) bool {
		if item.Type == gjson.Null {
			out[key.String()] = nil
			return true
		}
		farm := &model.FarmState{}
		err = values(item, map[string]*num.Value{
			"staked_base_share":            &farm.StakedBaseShare,
			"staked_quote_share":           &farm.StakedQuoteShare,
			"config.base_apr_numerator":    &farm.Config.BaseAprNumerator,
			"config.base_apr_denominator":  &farm.Config.BaseAprDenominator,
			"config.quote_apr_numerator":   &farm.Config.QuoteAprNumerator,
			"config.quote_apr_denominator": &farm.Config.QuoteAprDenominator,
		})
		if err != nil {
			err = fmt.Errorf("farm %s: %w", key.String(), err)
			return false
		}
		out[key.String()] = farm
		return true
	})
	return err
}

func decodeFarmUsers(obj gjson.Result, out map[string]*model.FarmUserState) error {
	var err error
	obj.ForEach(func(key, item gjson.Result) bool {
		if item.Type == gjson.Null {
			out[key.String()] = nil
			return true
		}
		user := &model.FarmUserState{}
		err = values(item, map[string]*num.Value{
			"staked_base_share":  &user.StakedBaseShare,
			"staked_quote_share": &user.StakedQuoteShare,
		})
		if err != nil {
			err = fmt.Errorf("farm user %s: %w", key.String(), err)
			return false
		}
		out[key.String()] = user
		return true
	})
	return err
}

func decodePrices(obj gjson.Result, out map[string]num.Value) error {
	var err error
	obj.ForEach(func(key, item gjson.Result) bool {
		var v num.Value
		v, err = parseResult(item)
		if err != nil {
			err = fmt.Errorf("price %s: %w", key.String(), err)
			return false
		}
		out[key.String()] = v
		return true
	})
	return err
}

func values(item gjson.Result, fields map[string]*num.Value) error {
	for path, dst := range fields {
		v, err := value(item, path)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func value(item gjson.Result, path string) (num.Value, error) {
	v, err := parseResult(item.Get(path))
	if err != nil {
		return num.Unknown(), fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// parseResult maps a missing or null field to unknown. Numbers are parsed
// from their raw text so large integers keep full precision.
func parseResult(r gjson.Result) (num.Value, error) {
	switch r.Type {
	case gjson.Null:
		return num.Unknown(), nil
	case gjson.Number:
		return num.Parse(r.Raw)
	case gjson.String:
		return num.Parse(r.Str)
	default:
		return num.Unknown(), fmt.Errorf("%w: unexpected %s", num.ErrInvalidNumber, r.Type)
	}
}
