package signbridge

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Bridge methods. Each maps to one call on the SDK instance hosted by the sidecar.
const (
	methodInit             = "init"
	methodConnect          = "connect"
	methodApproval         = "approval"
	methodDisconnect       = "disconnect"
	methodSessionGet       = "session_get"
	methodSessionKeys      = "session_keys"
	methodPairingGetAll    = "pairing_getAll"
	methodGetClientID      = "getClientId"
	methodRestartTransport = "restartTransport"
)

// request is sent by the connector. The sidecar answers with a response carrying the same id.
type request struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// inbound is either a response (ID set) or a pushed event (Event set).
type inbound struct {
	ID      string              `json:"id,omitempty"`
	Result  jsoniter.RawMessage `json:"result,omitempty"`
	Error   *RemoteError        `json:"error,omitempty"`
	Event   string              `json:"event,omitempty"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

// RemoteError is an error reported by the SDK through the bridge.
type RemoteError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("sign client error %d: %s", e.Code, e.Message)
}

type initResult struct {
	Metadata struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		URL         string   `json:"url"`
		Icons       []string `json:"icons"`
		VerifyURL   string   `json:"verifyUrl"`
	} `json:"metadata"`
}

type connectResult struct {
	URI        string `json:"uri,omitempty"`
	ApprovalID string `json:"approvalId"`
}

type approvalParams struct {
	ApprovalID string `json:"approvalId"`
}

type topicParams struct {
	Topic string `json:"topic"`
}

type pairingParams struct {
	ActiveOnly bool `json:"activeOnly"`
}

type relayParams struct {
	RelayURL string `json:"relayUrl"`
}
