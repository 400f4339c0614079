package token

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gagliardetto/solana-go"

	"liquidityEngine/internal/model"
)

var (
	ErrUnknownSymbol = errors.New("unknown token symbol")
	ErrUnknownMint   = errors.New("unknown token mint")
	ErrDuplicate     = errors.New("duplicate token")
)

// Registry resolves token configs by symbol and by mint.
type Registry struct {
	mu       sync.RWMutex
	bySymbol map[string]model.TokenConfig
	byMint   map[solana.PublicKey]model.TokenConfig
}

func NewRegistry(tokens ...model.TokenConfig) (*Registry, error) {
	r := &Registry{
		bySymbol: make(map[string]model.TokenConfig),
		byMint:   make(map[solana.PublicKey]model.TokenConfig),
	}
	for _, t := range tokens {
		if err := r.Add(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a token. Symbols are matched case-insensitively.
func (r *Registry) Add(t model.TokenConfig) error {
	key := symbolKey(t.Symbol)
	if key == "" {
		return fmt.Errorf("token symbol is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySymbol[key]; ok {
		return fmt.Errorf("%w: symbol %s", ErrDuplicate, t.Symbol)
	}
	if !t.Mint.IsZero() {
		if _, ok := r.byMint[t.Mint]; ok {
			return fmt.Errorf("%w: mint %s", ErrDuplicate, t.Mint)
		}
		r.byMint[t.Mint] = t
	}
	r.bySymbol[key] = t
	return nil
}

func (r *Registry) BySymbol(symbol string) (model.TokenConfig, error) {
	if r == nil {
		return model.TokenConfig{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	r.mu.RLock()
	t, ok := r.bySymbol[symbolKey(symbol)]
	r.mu.RUnlock()
	if !ok {
		return model.TokenConfig{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return t, nil
}

func (r *Registry) ByMint(mint solana.PublicKey) (model.TokenConfig, error) {
	if r == nil {
		return model.TokenConfig{}, fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	r.mu.RLock()
	t, ok := r.byMint[mint]
	r.mu.RUnlock()
	if !ok {
		return model.TokenConfig{}, fmt.Errorf("%w: %s", ErrUnknownMint, mint)
	}
	return t, nil
}

// Pair resolves the base and quote tokens of a pool.
func (r *Registry) Pair(pool model.PoolConfig) (model.TokenConfig, model.TokenConfig, error) {
	base, err := r.BySymbol(pool.BaseSymbol)
	if err != nil {
		return model.TokenConfig{}, model.TokenConfig{}, fmt.Errorf("pool %s base: %w", pool.Key, err)
	}
	quote, err := r.BySymbol(pool.QuoteSymbol)
	if err != nil {
		return model.TokenConfig{}, model.TokenConfig{}, fmt.Errorf("pool %s quote: %w", pool.Key, err)
	}
	return base, quote, nil
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySymbol)
}

func symbolKey(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
