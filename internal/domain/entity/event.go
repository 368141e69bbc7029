package entity

// ClientEvent names an event emitted by the sign client.
type ClientEvent string

const (
	EventSessionPing   ClientEvent = "session_ping"
	EventSessionEvent  ClientEvent = "session_event"
	EventSessionUpdate ClientEvent = "session_update"
	EventSessionDelete ClientEvent = "session_delete"
)

// RelayerEvent names a transport state change of the sign client relayer.
type RelayerEvent string

const (
	RelayerConnect    RelayerEvent = "relayer_connect"
	RelayerDisconnect RelayerEvent = "relayer_disconnect"
)

// SessionEventParams carries the payload of a session_update event.
type SessionEventParams struct {
	Namespaces map[string]SessionNamespace `json:"namespaces,omitempty"`
	Event      *WalletEvent                `json:"event,omitempty"`
	ChainID    string                      `json:"chainId,omitempty"`
}

// WalletEvent is a chain event forwarded by the wallet through session_event.
type WalletEvent struct {
	Name string `json:"name"`
	Data any    `json:"data"`
}

// ClientEventPayload is what the sign client hands to event handlers.
type ClientEventPayload struct {
	ID     int64              `json:"id,omitempty"`
	Topic  string             `json:"topic"`
	Params SessionEventParams `json:"params"`
}
