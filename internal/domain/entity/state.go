package entity

// SessionStatus is the lifecycle state of the session context.
type SessionStatus string

const (
	StatusUninitialized SessionStatus = "uninitialized"
	StatusInitializing  SessionStatus = "initializing"
	StatusReady         SessionStatus = "ready"
	StatusConnecting    SessionStatus = "connecting"
	StatusConnected     SessionStatus = "connected"
	StatusDisconnecting SessionStatus = "disconnecting"
	StatusDisconnected  SessionStatus = "disconnected"
)

// SessionState is an immutable snapshot of the connection state.
type SessionState struct {
	Status               SessionStatus   `json:"status"`
	IsInitializing       bool            `json:"isInitializing"`
	IsFetchingBalances   bool            `json:"isFetchingBalances"`
	Session              *Session        `json:"session,omitempty"`
	Pairings             []Pairing       `json:"pairings"`
	Accounts             []string        `json:"accounts"`
	Chains               []string        `json:"chains"`
	Balances             AccountBalances `json:"balances"`
	RelayerRegion        string          `json:"relayerRegion"`
	Origin               string          `json:"origin"`
	ConnectedBlockchains []string        `json:"connectedBlockchains"`
}
