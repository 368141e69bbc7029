package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"
	"wallet_connector/internal/pkg/metrics"
)

const (
	// NamespaceEIP155 is the account-model namespace served over JSON-RPC.
	NamespaceEIP155 = "eip155"
	// NamespaceKadena is the multi-shard namespace served by the Kadena adapter.
	NamespaceKadena = "kadena"
)

// ErrUnsupportedChain is returned when no RPC provider is known for a chain id.
var ErrUnsupportedChain = errors.New("unsupported chain")

// RPCBalanceClient implements port.BalanceClient over JSON-RPC providers.
type RPCBalanceClient struct {
	registry port.RPCProviderRegistry
	clients  *RPCClientProvider
	adapters map[string]port.ChainBalanceAdapter
	logger   port.Logger
	metrics  *metrics.Metrics
}

// NewRPCBalanceClient creates a balance client. adapters are keyed by chain namespace.
func NewRPCBalanceClient(
	registry port.RPCProviderRegistry,
	clients *RPCClientProvider,
	adapters map[string]port.ChainBalanceAdapter,
	logger port.Logger,
	m *metrics.Metrics,
) port.BalanceClient {
	if m == nil {
		m = metrics.New(nil)
	}
	return &RPCBalanceClient{
		registry: registry,
		clients:  clients,
		adapters: adapters,
		logger:   logger,
		metrics:  m,
	}
}

// GetAccountBalance fetches the native balance of address on chainID.
func (c *RPCBalanceClient) GetAccountBalance(ctx context.Context, address, chainID string) (entity.AccountBalance, error) {
	namespace, networkID := entity.SplitChainID(chainID)

	if adapter, ok := c.adapters[namespace]; ok {
		return adapter.GetAccountBalance(ctx, address, networkID)
	}
	if namespace != NamespaceEIP155 {
		return entity.AccountBalance{}, nil
	}

	provider, ok := c.lookup(networkID)
	if !ok {
		c.logger.Debug("No RPC provider for chain", "chain_id", chainID)
		return entity.AccountBalance{}, nil
	}

	var result string
	if err := c.call(ctx, provider, &result, "eth_getBalance", address, "latest"); err != nil {
		return entity.AccountBalance{}, fmt.Errorf("eth_getBalance for %s on %s: %w", address, chainID, err)
	}
	balance, err := parseHexBig(result)
	if err != nil {
		return entity.AccountBalance{}, fmt.Errorf("eth_getBalance for %s on %s: %w", address, chainID, err)
	}

	return entity.AccountBalance{
		Balance: balance.String(),
		Symbol:  provider.Token.Symbol,
		Name:    provider.Token.Name,
	}, nil
}

// GetAccountNonce fetches the transaction count of address on chainID.
func (c *RPCBalanceClient) GetAccountNonce(ctx context.Context, address, chainID string) (uint64, error) {
	provider, err := c.mustLookup(chainID)
	if err != nil {
		return 0, err
	}

	var result string
	if err := c.call(ctx, provider, &result, "eth_getTransactionCount", address, "latest"); err != nil {
		return 0, fmt.Errorf("eth_getTransactionCount for %s on %s: %w", address, chainID, err)
	}
	nonce, err := parseHexBig(result)
	if err != nil {
		return 0, fmt.Errorf("eth_getTransactionCount for %s on %s: %w", address, chainID, err)
	}
	if !nonce.IsUint64() {
		return 0, fmt.Errorf("nonce %s out of range", nonce)
	}
	return nonce.Uint64(), nil
}

// GetGasPrice returns the raw hex gas price of chainID.
func (c *RPCBalanceClient) GetGasPrice(ctx context.Context, chainID string) (string, error) {
	provider, err := c.mustLookup(chainID)
	if err != nil {
		return "", err
	}

	var result string
	if err := c.call(ctx, provider, &result, "eth_gasPrice"); err != nil {
		return "", fmt.Errorf("eth_gasPrice on %s: %w", chainID, err)
	}
	return result, nil
}

func (c *RPCBalanceClient) lookup(networkID string) (entity.RPCProvider, bool) {
	id, err := strconv.ParseUint(networkID, 10, 64)
	if err != nil {
		return entity.RPCProvider{}, false
	}
	return c.registry.Lookup(id)
}

func (c *RPCBalanceClient) mustLookup(chainID string) (entity.RPCProvider, error) {
	_, networkID := entity.SplitChainID(chainID)
	provider, ok := c.lookup(networkID)
	if !ok {
		return entity.RPCProvider{}, fmt.Errorf("%w: %s", ErrUnsupportedChain, chainID)
	}
	return provider, nil
}

func (c *RPCBalanceClient) call(ctx context.Context, provider entity.RPCProvider, result any, method string, args ...any) error {
	client, err := c.clients.getClient(ctx, provider.BaseURL)
	if err != nil {
		return err
	}
	if err := client.limiter.Wait(ctx); err != nil {
		return err
	}

	err = client.rpc.CallContext(ctx, result, method, args...)
	c.metrics.RPCRequests.WithLabelValues(method, metrics.Outcome(err)).Inc()
	if err != nil {
		c.logger.Warn("RPC call failed", "method", method, "provider", provider.Name, "error", err)
	}
	return err
}

// parseHexBig parses a 0x-prefixed hex quantity, tolerating leading zeros.
func parseHexBig(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if digits == "" {
		return nil, fmt.Errorf("empty hex quantity %q", s)
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return n, nil
}
