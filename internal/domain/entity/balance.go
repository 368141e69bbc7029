package entity

// AccountBalance is the normalized balance reply for one account.
// An empty Symbol means the chain is unsupported, not that the lookup failed.
type AccountBalance struct {
	Balance string `json:"balance"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// Supported reports whether the balance came from a known chain.
func (b AccountBalance) Supported() bool {
	return b.Symbol != ""
}

// AccountBalances is keyed by account identifier.
type AccountBalances map[string]AccountBalance
