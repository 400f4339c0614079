package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
)

func testPool() model.PoolState {
	return model.PoolState{
		BaseReserve:        num.New(2000),
		QuoteReserve:       num.New(500),
		BaseSupply:         num.New(1000),
		QuoteSupply:        num.New(1000),
		TargetBaseReserve:  num.New(1000),
		TargetQuoteReserve: num.New(1000),
		MarketPrice:        num.New(2),
	}
}

func curveCfg(kind model.CurveKind, slope string) model.CurveConfig {
	return model.CurveConfig{Kind: kind, Slope: num.MustParse(slope), VirtualReservePercentage: num.Zero()}
}

func TestGetPrice(t *testing.T) {
	tests := []struct {
		name       string
		cfg        model.CurveConfig
		multiplier model.Multiplier
		want       string
	}{
		{"normal below one uses quote side", curveCfg(model.CurveNormal, "0.5"), model.MultiplierBelowOne, "5"},
		{"normal above one uses base side", curveCfg(model.CurveNormal, "0.5"), model.MultiplierAboveOne, "1.25"},
		{"normal at one uses base side", curveCfg(model.CurveNormal, "0.5"), model.MultiplierOne, "1.25"},
		{"stable ignores below one", curveCfg(model.CurveStable, "0.5"), model.MultiplierBelowOne, "1.25"},
		{"zero slope is the oracle price", curveCfg(model.CurveNormal, "0"), model.MultiplierBelowOne, "2"},
		{"full slope is the curve price", curveCfg(model.CurveStable, "1"), model.MultiplierOne, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetPrice(testPool(), tt.cfg, tt.multiplier)
			require.NoError(t, err)
			assert.True(t, got.Equal(num.MustParse(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestGetPriceEdges(t *testing.T) {
	pool := testPool()
	pool.BaseReserve = num.Zero()
	_, err := GetPrice(pool, curveCfg(model.CurveStable, "0.5"), model.MultiplierOne)
	require.ErrorIs(t, err, num.ErrDivisionByZero)

	pool = testPool()
	pool.MarketPrice = num.Unknown()
	price, err := GetPrice(pool, curveCfg(model.CurveNormal, "0.5"), model.MultiplierBelowOne)
	require.NoError(t, err)
	assert.True(t, price.IsNaN())

	pool = testPool()
	pool.QuoteReserve = num.Unknown()
	price, err = GetPrice(pool, curveCfg(model.CurveNormal, "0.5"), model.MultiplierBelowOne)
	require.NoError(t, err)
	assert.True(t, price.IsNaN())
}

func TestMultiplierOf(t *testing.T) {
	pool := testPool()
	assert.Equal(t, model.MultiplierBelowOne, MultiplierOf(pool))

	pool.BaseReserve, pool.QuoteReserve = num.New(500), num.New(2000)
	assert.Equal(t, model.MultiplierAboveOne, MultiplierOf(pool))

	pool.BaseReserve, pool.QuoteReserve = num.New(1000), num.New(1000)
	assert.Equal(t, model.MultiplierOne, MultiplierOf(pool))

	pool.BaseReserve = num.Unknown()
	assert.Equal(t, model.MultiplierOne, MultiplierOf(pool))
}
