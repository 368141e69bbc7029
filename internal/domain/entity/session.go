package entity

// AppMetadata describes a dApp or wallet peer taking part in a session.
type AppMetadata struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	URL         string   `json:"url" yaml:"url"`
	Icons       []string `json:"icons" yaml:"icons"`
	VerifyURL   string   `json:"verifyUrl,omitempty" yaml:"verifyUrl,omitempty"`
}

// SessionNamespace is the part of a session agreed for one chain namespace (e.g. "eip155").
type SessionNamespace struct {
	Accounts []string `json:"accounts"`
	Chains   []string `json:"chains,omitempty"`
	Methods  []string `json:"methods"`
	Events   []string `json:"events"`
}

// Session is an established set of namespaces/accounts agreed between this application and a wallet.
type Session struct {
	Topic        string                      `json:"topic"`
	PairingTopic string                      `json:"pairingTopic,omitempty"`
	Expiry       int64                       `json:"expiry,omitempty"`
	Namespaces   map[string]SessionNamespace `json:"namespaces"`
	Peer         AppMetadata                 `json:"peer"`
}

// Accounts flattens the accounts of every namespace, namespaces taken in sorted key order.
func (s *Session) Accounts() []string {
	if s == nil {
		return nil
	}
	accounts := make([]string, 0)
	for _, key := range s.NamespaceKeys() {
		accounts = append(accounts, s.Namespaces[key].Accounts...)
	}
	return accounts
}

// NamespaceKeys returns the namespace names of the session in sorted order.
func (s *Session) NamespaceKeys() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Namespaces)
}

// WithNamespaces returns a shallow copy of the session carrying the given namespaces.
func (s Session) WithNamespaces(namespaces map[string]SessionNamespace) Session {
	s.Namespaces = namespaces
	return s
}

// Pairing is a reusable transport-level handshake record.
type Pairing struct {
	Topic        string       `json:"topic"`
	Expiry       int64        `json:"expiry,omitempty"`
	Active       bool         `json:"active"`
	PeerMetadata *AppMetadata `json:"peerMetadata,omitempty"`
}

// ProposalNamespace is one namespace entry of a session proposal.
type ProposalNamespace struct {
	Chains  []string `json:"chains"`
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// ProposalNamespaces maps a chain namespace to the proposal for it.
type ProposalNamespaces map[string]ProposalNamespace

// Chains flattens the chains of every namespace, namespaces taken in sorted key order.
func (p ProposalNamespaces) Chains() []string {
	chains := make([]string, 0)
	for _, key := range sortedKeys(p) {
		chains = append(chains, p[key].Chains...)
	}
	return chains
}

// ConnectParams is the proposal handed to the sign client.
type ConnectParams struct {
	PairingTopic       string             `json:"pairingTopic,omitempty"`
	RequiredNamespaces ProposalNamespaces `json:"requiredNamespaces"`
	OptionalNamespaces ProposalNamespaces `json:"optionalNamespaces"`
}

// SdkError is the reason attached to a session termination.
type SdkError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// UserDisconnected is the standard reason sent when the user ends a session.
var UserDisconnected = SdkError{Code: 6000, Message: "User disconnected."}

// DisconnectParams identifies the session to terminate.
type DisconnectParams struct {
	Topic  string   `json:"topic"`
	Reason SdkError `json:"reason"`
}

// ClientOptions configures a new sign client.
type ClientOptions struct {
	ProjectID string      `json:"projectId"`
	RelayURL  string      `json:"relayUrl"`
	Metadata  AppMetadata `json:"metadata"`
}
