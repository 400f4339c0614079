package model

import "github.com/gagliardetto/solana-go"

// TokenConfig captures SPL token scaling metadata.
type TokenConfig struct {
	Mint     solana.PublicKey `json:"mint"`
	Symbol   string           `json:"symbol"`
	Decimals uint8            `json:"decimals"`
}
