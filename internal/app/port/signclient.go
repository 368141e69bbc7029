package port

import (
	"context"

	"wallet_connector/internal/domain/entity"
)

// SignClientFactory creates wallet-session protocol clients.
type SignClientFactory interface {
	Init(ctx context.Context, opts entity.ClientOptions) (SignClient, error)
}

// PendingSession is returned by a connect request. URI is empty when an existing pairing is reused.
type PendingSession struct {
	URI      string
	Approval func(ctx context.Context) (*entity.Session, error)
}

// SignClient is the capability boundary around the external wallet-session SDK.
type SignClient interface {
	Connect(ctx context.Context, params entity.ConnectParams) (*PendingSession, error)
	Disconnect(ctx context.Context, params entity.DisconnectParams) error
	On(event entity.ClientEvent, handler func(entity.ClientEventPayload))

	Session() SessionStore
	Pairing() PairingStore
	Relayer() Relayer
	Crypto() Crypto

	// Metadata returns the metadata the client was initialized with.
	Metadata() entity.AppMetadata
}

// SessionStore exposes the sessions persisted by the SDK.
type SessionStore interface {
	Get(ctx context.Context, topic string) (*entity.Session, error)
	Keys(ctx context.Context) ([]string, error)
}

// PairingStore exposes the pairings persisted by the SDK.
type PairingStore interface {
	GetAll(ctx context.Context, activeOnly bool) ([]entity.Pairing, error)
}

// Relayer controls the SDK transport.
type Relayer interface {
	RestartTransport(ctx context.Context, relayURL string) error
	On(event entity.RelayerEvent, handler func())
}

// Crypto exposes the SDK keychain.
type Crypto interface {
	ClientID(ctx context.Context) (string, error)
}

// Modal displays a pairing URI to the user.
type Modal interface {
	OpenModal(uri string, chains []string) error
	CloseModal()
}

// KeyValueStore is the local persisted state of the front end.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
