package model

import (
	"time"

	"liquidityEngine/internal/num"
)

// PoolValuation stores computed figures for one pool at a snapshot slot.
// Unknown figures are kept unknown, never zeroed.
type PoolValuation struct {
	Slot        uint64    `json:"slot"`
	PoolKey     string    `json:"pool_key"`
	PoolName    string    `json:"pool_name"`
	Multiplier  string    `json:"multiplier"`
	Price       num.Value `json:"price"`
	TVL         num.Value `json:"tvl"`
	TotalStaked num.Value `json:"total_staked"`
	UserStaked  num.Value `json:"user_staked"`
	APR         num.Value `json:"apr"`
	ComputedAt  time.Time `json:"computed_at"`
}

// ValuationBatch is the output of one valuation round.
type ValuationBatch struct {
	Slot       uint64          `json:"slot"`
	TotalTVL   num.Value       `json:"total_tvl"`
	Pools      []PoolValuation `json:"pools"`
	ComputedAt time.Time       `json:"computed_at"`
}

// Checkpoint summarizes the last batch written by a valuation loop.
type Checkpoint struct {
	Slot       uint64    `json:"slot"`
	TotalTVL   num.Value `json:"total_tvl"`
	Pools      int       `json:"pools"`
	ComputedAt time.Time `json:"computed_at"`
}

func (b ValuationBatch) Checkpoint() Checkpoint {
	return Checkpoint{
		Slot:       b.Slot,
		TotalTVL:   b.TotalTVL,
		Pools:      len(b.Pools),
		ComputedAt: b.ComputedAt,
	}
}
