package entity

import (
	"fmt"
	"sort"
	"strings"
)

// AccountID is a chain-agnostic account identifier of the form namespace:reference:address.
type AccountID struct {
	Namespace string
	Reference string
	Address   string
}

// ParseAccountID splits an account identifier into its parts.
func ParseAccountID(account string) (AccountID, error) {
	parts := strings.SplitN(account, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return AccountID{}, fmt.Errorf("invalid account identifier %q", account)
	}
	return AccountID{Namespace: parts[0], Reference: parts[1], Address: parts[2]}, nil
}

// ChainID returns the namespace:reference part of the account.
func (a AccountID) ChainID() string {
	return a.Namespace + ":" + a.Reference
}

func (a AccountID) String() string {
	return a.ChainID() + ":" + a.Address
}

// SplitChainID splits namespace:reference. A missing reference yields an empty string.
func SplitChainID(chainID string) (namespace, reference string) {
	namespace, reference, _ = strings.Cut(chainID, ":")
	return namespace, reference
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
