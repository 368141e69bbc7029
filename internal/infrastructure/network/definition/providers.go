package networkdefinition

import (
	"fmt"
	"strings"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"
)

var (
	ether = entity.TokenDescriptor{Name: "Ether", Symbol: "ETH"}
	matic = entity.TokenDescriptor{Name: "Matic", Symbol: "MATIC"}
	celo  = entity.TokenDescriptor{Name: "CELO", Symbol: "CELO"}
)

// Registry implements port.RPCProviderRegistry over a fixed map.
type Registry struct {
	providers map[uint64]entity.RPCProvider
}

// NewRegistry creates a registry over the given descriptors. The map is copied.
func NewRegistry(providers map[uint64]entity.RPCProvider) port.RPCProviderRegistry {
	copied := make(map[uint64]entity.RPCProvider, len(providers))
	for id, p := range providers {
		copied[id] = p
	}
	return &Registry{providers: copied}
}

// NewDefaultRegistry builds the descriptors served through the WalletConnect RPC gateway
// plus the few chains that need their own endpoint.
func NewDefaultRegistry(rpcBaseURL, projectID string) port.RPCProviderRegistry {
	rpcBaseURL = strings.TrimRight(rpcBaseURL, "/")
	gateway := func(chainID uint64) string {
		return fmt.Sprintf("%s?projectId=%s&chainId=eip155:%d", rpcBaseURL, projectID, chainID)
	}

	return NewRegistry(map[uint64]entity.RPCProvider{
		1:      {Name: "Ethereum Mainnet", BaseURL: gateway(1), Token: ether},
		5:      {Name: "Ethereum Goerli", BaseURL: gateway(5), Token: ether},
		137:    {Name: "Polygon Mainnet", BaseURL: gateway(137), Token: matic},
		280:    {Name: "zkSync Era Testnet", BaseURL: gateway(280), Token: ether},
		324:    {Name: "zkSync Era", BaseURL: gateway(324), Token: ether},
		80001:  {Name: "Polygon Mumbai", BaseURL: gateway(80001), Token: matic},
		10:     {Name: "Optimism", BaseURL: gateway(10), Token: ether},
		420:    {Name: "Optimism Goerli", BaseURL: gateway(420), Token: ether},
		42161:  {Name: "Arbitrum", BaseURL: gateway(42161), Token: ether},
		421611: {Name: "Arbitrum Rinkeby", BaseURL: "https://rinkeby.arbitrum.io/rpc", Token: ether},
		100:    {Name: "xDAI", BaseURL: "https://xdai-archive.blockscout.com", Token: entity.TokenDescriptor{Name: "xDAI", Symbol: "xDAI"}},
		42220:  {Name: "Celo", BaseURL: rpcBaseURL, Token: celo},
		44787:  {Name: "Celo Alfajores", BaseURL: "https://alfajores-forno.celo-testnet.org", Token: celo},
	})
}

// Lookup returns the descriptor for a numeric chain id.
func (r *Registry) Lookup(chainID uint64) (entity.RPCProvider, bool) {
	if r == nil {
		return entity.RPCProvider{}, false
	}
	p, ok := r.providers[chainID]
	return p, ok
}

// All returns a copy of every descriptor.
func (r *Registry) All() map[uint64]entity.RPCProvider {
	if r == nil {
		return map[uint64]entity.RPCProvider{}
	}
	copied := make(map[uint64]entity.RPCProvider, len(r.providers))
	for id, p := range r.providers {
		copied[id] = p
	}
	return copied
}
