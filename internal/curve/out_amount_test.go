package curve

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
)

var (
	solToken  = model.TokenConfig{Mint: solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"), Symbol: "SOL", Decimals: 9}
	usdcToken = model.TokenConfig{Mint: solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"), Symbol: "USDC", Decimals: 6}
)

func solUsdcPool() model.PoolState {
	return model.PoolState{
		BaseReserve:  num.New(2_000_000_000),
		QuoteReserve: num.New(300_000_000),
	}
}

func TestExchangeRate(t *testing.T) {
	rate, err := ExchangeRate(solUsdcPool(), solToken, usdcToken)
	require.NoError(t, err)
	assert.True(t, rate.Equal(num.New(150)), "rate %s", rate)
}

func TestGetOutAmount(t *testing.T) {
	pool := solUsdcPool()

	out, err := GetOutAmount(pool, solToken, usdcToken, SwapRequest{
		FromMint: solToken.Mint,
		ToMint:   usdcToken.Mint,
		Amount:   num.One(),
		Slippage: num.One(),
	})
	require.NoError(t, err)
	assert.True(t, out.Equal(num.MustParse("151.5")), "base to quote %s", out)

	out, err = GetOutAmount(pool, solToken, usdcToken, SwapRequest{
		FromMint: usdcToken.Mint,
		ToMint:   solToken.Mint,
		Amount:   num.New(150),
		Slippage: num.One(),
	})
	require.NoError(t, err)
	assert.True(t, out.Equal(num.MustParse("1.01")), "quote to base %s", out)

	out, err = GetOutAmount(pool, solToken, usdcToken, SwapRequest{
		FromMint: usdcToken.Mint,
		ToMint:   solToken.Mint,
		Amount:   num.New(150),
		Slippage: num.Zero(),
	})
	require.NoError(t, err)
	assert.True(t, out.Equal(num.One()))
}

func TestGetOutAmountInvalidPair(t *testing.T) {
	other := solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
	_, err := GetOutAmount(solUsdcPool(), solToken, usdcToken, SwapRequest{
		FromMint: other,
		ToMint:   usdcToken.Mint,
		Amount:   num.One(),
		Slippage: num.Zero(),
	})
	require.ErrorIs(t, err, ErrInvalidMintPair)

	_, err = GetOutAmount(solUsdcPool(), solToken, usdcToken, SwapRequest{
		FromMint: solToken.Mint,
		ToMint:   solToken.Mint,
		Amount:   num.One(),
		Slippage: num.Zero(),
	})
	require.ErrorIs(t, err, ErrInvalidMintPair)
}

func TestGetOutAmountRequiresDistinctMints(t *testing.T) {
	pool := model.PoolState{
		BaseReserve:  num.New(1_000_000_000),
		QuoteReserve: num.New(4_000_000),
	}
	sol := model.TokenConfig{Symbol: "SOL", Decimals: 9}
	usdc := model.TokenConfig{Symbol: "USDC", Decimals: 6}

	_, err := GetOutAmount(pool, sol, usdc, SwapRequest{
		FromMint: usdc.Mint,
		ToMint:   sol.Mint,
		Amount:   num.New(4),
		Slippage: num.Zero(),
	})
	require.ErrorIs(t, err, ErrInvalidMintPair)

	sol.Mint = solToken.Mint
	_, err = GetOutAmount(pool, sol, usdc, SwapRequest{
		FromMint: usdc.Mint,
		ToMint:   sol.Mint,
		Amount:   num.New(4),
		Slippage: num.Zero(),
	})
	require.ErrorIs(t, err, ErrInvalidMintPair)

	usdc.Mint = solToken.Mint
	_, err = GetOutAmount(pool, sol, usdc, SwapRequest{
		FromMint: sol.Mint,
		ToMint:   usdc.Mint,
		Amount:   num.New(4),
		Slippage: num.Zero(),
	})
	require.ErrorIs(t, err, ErrInvalidMintPair)

	usdc.Mint = usdcToken.Mint
	out, err := GetOutAmount(pool, sol, usdc, SwapRequest{
		FromMint: usdc.Mint,
		ToMint:   sol.Mint,
		Amount:   num.New(4),
		Slippage: num.Zero(),
	})
	require.NoError(t, err)
	assert.True(t, out.Equal(num.One()), "quote to base %s", out)
}

func TestGetOutAmountEmptyPool(t *testing.T) {
	pool := solUsdcPool()
	pool.BaseReserve = num.Zero()
	_, err := GetOutAmount(pool, solToken, usdcToken, SwapRequest{
		FromMint: solToken.Mint,
		ToMint:   usdcToken.Mint,
		Amount:   num.One(),
		Slippage: num.Zero(),
	})
	require.ErrorIs(t, err, num.ErrDivisionByZero)

	pool = solUsdcPool()
	pool.QuoteReserve = num.Zero()
	_, err = GetOutAmount(pool, solToken, usdcToken, SwapRequest{
		FromMint: usdcToken.Mint,
		ToMint:   solToken.Mint,
		Amount:   num.One(),
		Slippage: num.Zero(),
	})
	require.ErrorIs(t, err, num.ErrDivisionByZero)
}
