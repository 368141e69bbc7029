package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wallet_connector/internal/app/port"

	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

const (
	defaultRPCRequestTimeout = 10 * time.Second
)

// limitedRPCClient pairs a JSON-RPC client with the limiter guarding its endpoint.
type limitedRPCClient struct {
	rpc     *rpc.Client
	limiter *rate.Limiter
}

// RPCClientProvider hands out one JSON-RPC client per endpoint URL.
type RPCClientProvider struct {
	clients           map[string]*limitedRPCClient
	mu                sync.Mutex
	httpClient        *http.Client
	requestsPerSecond float64
	logger            port.Logger
}

// NewRPCClientProvider creates a provider whose clients share one HTTP client with the given timeout.
// requestsPerSecond <= 0 disables throttling.
func NewRPCClientProvider(timeout time.Duration, requestsPerSecond float64, logger port.Logger) *RPCClientProvider {
	if timeout <= 0 {
		timeout = defaultRPCRequestTimeout
	}
	return &RPCClientProvider{
		clients:           make(map[string]*limitedRPCClient),
		httpClient:        &http.Client{Timeout: timeout},
		requestsPerSecond: requestsPerSecond,
		logger:            logger,
	}
}

// getClient retrieves the client for baseURL, creating and caching it on first use.
func (p *RPCClientProvider) getClient(ctx context.Context, baseURL string) (*limitedRPCClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, exists := p.clients[baseURL]; exists {
		return c, nil
	}

	rpcClient, err := rpc.DialOptions(ctx, baseURL, rpc.WithHTTPClient(p.httpClient))
	if err != nil {
		p.logger.Error("Failed to create RPC client", "url", baseURL, "error", err)
		return nil, fmt.Errorf("failed to create RPC client for %s: %w", baseURL, err)
	}

	limit := rate.Inf
	if p.requestsPerSecond > 0 {
		limit = rate.Limit(p.requestsPerSecond)
	}
	c := &limitedRPCClient{rpc: rpcClient, limiter: rate.NewLimiter(limit, 1)}
	p.clients[baseURL] = c
	p.logger.Debug("Created RPC client", "url", baseURL)
	return c, nil
}

// Close closes every cached client.
func (p *RPCClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for url, c := range p.clients {
		c.rpc.Close()
		delete(p.clients, url)
	}
}
