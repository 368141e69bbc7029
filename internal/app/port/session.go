package port

import (
	"context"
	"math/big"

	"wallet_connector/internal/domain/entity"
)

// SessionService is the connect/disconnect surface offered to the UI.
type SessionService interface {
	Connect(ctx context.Context, pairing *entity.Pairing) error
	Disconnect(ctx context.Context) error
	IsInitializing() bool
	Snapshot() entity.SessionState
}

// TransactionFormatter builds unsigned transfer payloads for a session account.
type TransactionFormatter interface {
	FormatTransaction(ctx context.Context, account, to string, value *big.Int, token string) (entity.TransactionPayload, error)
}
