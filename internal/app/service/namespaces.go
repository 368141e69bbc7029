package service

import (
	"wallet_connector/internal/domain/entity"
)

// Methods and events proposed per namespace.
var (
	requiredMethods = map[string][]string{
		"eip155": {"eth_sendTransaction", "personal_sign"},
		"tron":   {"tron_signTransaction", "tron_signMessage"},
		"kadena": {"kadena_getAccounts_v1", "kadena_sign_v1", "kadena_quicksign_v1"},
		"solana": {"solana_signTransaction", "solana_signMessage"},
	}
	optionalMethods = map[string][]string{
		"eip155": {"eth_signTransaction", "eth_sign", "eth_signTypedData", "eth_signTypedData_v4"},
	}
	namespaceEvents = map[string][]string{
		"eip155": {"chainChanged", "accountsChanged"},
		"kadena": {"kadena_transaction_updated"},
	}
)

// GetRequiredNamespaces groups chains by namespace with the methods every wallet must support.
func GetRequiredNamespaces(chains []string) entity.ProposalNamespaces {
	return buildNamespaces(chains, requiredMethods, namespaceEvents)
}

// GetOptionalNamespaces groups chains by namespace with the methods a wallet may support.
// Namespaces without optional methods are left out.
func GetOptionalNamespaces(chains []string) entity.ProposalNamespaces {
	namespaces := buildNamespaces(chains, optionalMethods, nil)
	for key, ns := range namespaces {
		if len(ns.Methods) == 0 {
			delete(namespaces, key)
		}
	}
	return namespaces
}

func buildNamespaces(chains []string, methods, events map[string][]string) entity.ProposalNamespaces {
	namespaces := make(entity.ProposalNamespaces)
	for _, chainID := range chains {
		namespace, reference := entity.SplitChainID(chainID)
		if namespace == "" || reference == "" {
			continue
		}
		ns, ok := namespaces[namespace]
		if !ok {
			ns = entity.ProposalNamespace{
				Chains:  []string{},
				Methods: append([]string{}, methods[namespace]...),
				Events:  append([]string{}, events[namespace]...),
			}
		}
		ns.Chains = append(ns.Chains, chainID)
		namespaces[namespace] = ns
	}
	return namespaces
}
