package model

import "liquidityEngine/internal/num"

// ShareInfo projects one side of a pool for a withdrawal request.
type ShareInfo struct {
	Price         num.Value
	Share         num.Value
	ShareSupply   num.Value
	Reserve       num.Value
	TargetReserve num.Value
}
