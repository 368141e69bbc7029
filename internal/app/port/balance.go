package port

import (
	"context"

	"wallet_connector/internal/domain/entity"
)

// BalanceClient resolves balances and transaction parameters for chain-agnostic accounts.
type BalanceClient interface {
	// GetAccountBalance returns an empty-field entry (not an error) for unsupported chains.
	GetAccountBalance(ctx context.Context, address, chainID string) (entity.AccountBalance, error)

	// GetAccountNonce returns the transaction count of the address.
	GetAccountNonce(ctx context.Context, address, chainID string) (uint64, error)

	// GetGasPrice returns the raw hex gas price reported by the chain.
	GetGasPrice(ctx context.Context, chainID string) (string, error)
}

// ChainBalanceAdapter fetches balances for a namespace that needs bespoke handling.
type ChainBalanceAdapter interface {
	GetAccountBalance(ctx context.Context, address, networkID string) (entity.AccountBalance, error)
}

// RPCProviderRegistry maps numeric chain ids to their RPC endpoint descriptors.
type RPCProviderRegistry interface {
	Lookup(chainID uint64) (entity.RPCProvider, bool)
	All() map[uint64]entity.RPCProvider
}
