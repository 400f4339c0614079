package main

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityEngine/internal/curve"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/num"
	"liquidityEngine/internal/snapshot"
	"liquidityEngine/internal/valuation"
	"liquidityEngine/internal/withdraw"
)

type priceRow struct {
	Pool       string    `json:"pool"`
	Multiplier string    `json:"multiplier"`
	Price      num.Value `json:"price"`
}

func newPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price",
		Short: "Print the curve price of each pool",
		RunE:  runPrice,
	}
}

func runPrice(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pools, err := s.pools()
	if err != nil {
		return err
	}

	rows := make([]priceRow, 0, len(pools))
	for _, pool := range pools {
		row := priceRow{Pool: pool.Key, Price: num.Unknown()}
		state := s.snap.States[pool.Key]
		if state == nil {
			s.logger.Warn("pool state not loaded", zap.String("pool", pool.Key))
			rows = append(rows, row)
			continue
		}
		if err := pool.Curve.Validate(); err != nil {
			return fmt.Errorf("pool %s: %w", pool.Key, err)
		}
		multiplier := curve.MultiplierOf(*state)
		row.Multiplier = multiplier.String()
		row.Price, err = curve.GetPrice(*state, pool.Curve, multiplier)
		if err != nil {
			return fmt.Errorf("pool %s: %w", pool.Key, err)
		}
		rows = append(rows, row)
	}
	return writeJSON(cmd.OutOrStdout(), rows)
}

type quoteResult struct {
	Pool      string    `json:"pool"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    num.Value `json:"amount"`
	Slippage  num.Value `json:"slippage"`
	OutAmount num.Value `json:"out_amount"`
}

func newQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote the maximum output of a swap under slippage",
		RunE:  runQuote,
	}
	cmd.Flags().String("from", "", "input token mint or symbol")
	cmd.Flags().String("to", "", "output token mint or symbol")
	cmd.Flags().String("amount", "", "input amount in token units")
	cmd.Flags().String("slippage", "0.5", "slippage in percent")
	return cmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pool, err := s.pool()
	if err != nil {
		return err
	}
	state := s.snap.States[pool.Key]
	if state == nil {
		return fmt.Errorf("pool %s state not loaded", pool.Key)
	}
	base, quote, err := s.snap.Tokens.Pair(pool)
	if err != nil {
		return err
	}

	fromArg, _ := cmd.Flags().GetString("from")
	toArg, _ := cmd.Flags().GetString("to")
	amountArg, _ := cmd.Flags().GetString("amount")
	slippageArg, _ := cmd.Flags().GetString("slippage")

	from, err := resolveMint(s.snap, fromArg)
	if err != nil {
		return err
	}
	to, err := resolveMint(s.snap, toArg)
	if err != nil {
		return err
	}
	amount, err := num.Parse(amountArg)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	slippage, err := num.Parse(slippageArg)
	if err != nil {
		return fmt.Errorf("slippage: %w", err)
	}

	out, err := curve.GetOutAmount(*state, base, quote, curve.SwapRequest{
		FromMint: from,
		ToMint:   to,
		Amount:   amount,
		Slippage: slippage,
	})
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), quoteResult{
		Pool:      pool.Key,
		From:      from.String(),
		To:        to.String(),
		Amount:    amount,
		Slippage:  slippage,
		OutAmount: out,
	})
}

// resolveMint accepts a base58 mint or a registered symbol.
func resolveMint(snap *snapshot.Snapshot, arg string) (solana.PublicKey, error) {
	if arg == "" {
		return solana.PublicKey{}, fmt.Errorf("token is required")
	}
	if mint, err := solana.PublicKeyFromBase58(arg); err == nil {
		return mint, nil
	}
	tok, err := snap.Tokens.BySymbol(arg)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return tok.Mint, nil
}

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Compute token amounts returned for burning pool shares",
		RunE:  runWithdraw,
	}
	cmd.Flags().String("base-share", "0", "base shares to burn (raw units)")
	cmd.Flags().String("quote-share", "0", "quote shares to burn (raw units)")
	return cmd
}

func runWithdraw(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pool, err := s.pool()
	if err != nil {
		return err
	}
	state := s.snap.States[pool.Key]
	if state == nil {
		return fmt.Errorf("pool %s state not loaded", pool.Key)
	}
	base, quote, err := s.snap.Tokens.Pair(pool)
	if err != nil {
		return err
	}

	baseArg, _ := cmd.Flags().GetString("base-share")
	quoteArg, _ := cmd.Flags().GetString("quote-share")
	baseShare, err := num.Parse(baseArg)
	if err != nil {
		return fmt.Errorf("base-share: %w", err)
	}
	quoteShare, err := num.Parse(quoteArg)
	if err != nil {
		return fmt.Errorf("quote-share: %w", err)
	}

	result, err := withdraw.FromShares(withdraw.Request{
		BaseShare:  baseShare,
		QuoteShare: quoteShare,
		BaseToken:  base,
		QuoteToken: quote,
		BasePrice:  s.snap.Prices[base.Symbol],
		QuotePrice: s.snap.Prices[quote.Symbol],
		Pool:       *state,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

type tvlResult struct {
	Total num.Value `json:"total"`
	Pools []tvlRow  `json:"pools"`
}

type tvlRow struct {
	Pool string    `json:"pool"`
	TVL  num.Value `json:"tvl"`
}

func newTVLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tvl",
		Short: "Print the total value locked across pools",
		RunE:  runTVL,
	}
}

func runTVL(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pools, err := s.pools()
	if err != nil {
		return err
	}

	total, err := valuation.TotalValueLocked(pools, s.snap.Tokens, s.snap.States, s.snap.Prices)
	if err != nil {
		return err
	}

	out := tvlResult{Total: total, Pools: make([]tvlRow, 0, len(pools))}
	for _, pool := range pools {
		out.Pools = append(out.Pools, tvlRow{Pool: pool.Key, TVL: poolTVL(s.snap, pool)})
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func poolTVL(snap *snapshot.Snapshot, pool model.PoolConfig) num.Value {
	state := snap.States[pool.Key]
	if state == nil {
		return num.Unknown()
	}
	base, quote, err := snap.Tokens.Pair(pool)
	if err != nil {
		return num.Unknown()
	}
	return valuation.PoolTVL(*state, base, quote, snap.Prices)
}

type farmRow struct {
	Pool        string    `json:"pool"`
	Farm        string    `json:"farm"`
	TotalStaked num.Value `json:"total_staked"`
	UserStaked  num.Value `json:"user_staked"`
	APR         num.Value `json:"apr"`
}

func newFarmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "farms",
		Short: "Print staked value and APR of each farmed pool",
		RunE:  runFarms,
	}
}

func runFarms(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	pools, err := s.pools()
	if err != nil {
		return err
	}

	infos, err := valuation.FarmPoolsStakeInfo(valuation.FarmInputs{
		Pools:        pools,
		Tokens:       s.snap.Tokens,
		States:       s.snap.States,
		Farms:        s.snap.Farms,
		FarmUsers:    s.snap.FarmUsers,
		Prices:       s.snap.Prices,
		RewardSymbol: s.snap.RewardSymbol,
	})
	if err != nil {
		return err
	}

	rows := make([]farmRow, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, farmRow{
			Pool:        info.PoolKey,
			Farm:        info.FarmKey,
			TotalStaked: info.TotalStaked,
			UserStaked:  info.UserStaked,
			APR:         info.APR,
		})
	}
	return writeJSON(cmd.OutOrStdout(), rows)
}
