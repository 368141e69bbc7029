package entity

// TokenDescriptor names the native token of a network.
type TokenDescriptor struct {
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

// RPCProvider describes the JSON-RPC endpoint serving one numeric chain id.
type RPCProvider struct {
	Name    string          `json:"name" yaml:"name"`
	BaseURL string          `json:"baseURL" yaml:"baseURL"`
	Token   TokenDescriptor `json:"token" yaml:"token"`
}
