package service

import (
	"context"
	"errors"
	"testing"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"
	"wallet_connector/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultRelay = "wss://relay.walletconnect.com"

type sessionFixture struct {
	ctx      *SessionContext
	client   *fakeSignClient
	factory  *fakeFactory
	modal    *fakeModal
	store    *memoryStore
	balances *fakeBalances
	metrics  *metrics.Metrics
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	client := newFakeSignClient()
	f := &sessionFixture{
		client:   client,
		factory:  &fakeFactory{client: client},
		modal:    &fakeModal{},
		store:    newMemoryStore(),
		balances: &fakeBalances{},
		metrics:  metrics.New(nil),
	}
	f.ctx = NewSessionContext(f.factory, f.modal, f.store, f.balances, nopLogger{}, f.metrics, SessionContextConfig{
		ProjectID:       "pid",
		DefaultRelayURL: defaultRelay,
		DefaultChains:   []string{"eip155:1", "kadena:mainnet01"},
		Metadata: entity.AppMetadata{
			Name:      "Crypto Onramp",
			URL:       "https://walletconnect.com/",
			VerifyURL: "https://verify.walletconnect.com",
		},
	})
	return f
}

func twoByTwoSession() *entity.Session {
	return &entity.Session{
		Topic: "session-1",
		Namespaces: map[string]entity.SessionNamespace{
			"eip155": {Accounts: []string{"eip155:1:0xaaa", "eip155:137:0xbbb"}},
			"kadena": {Accounts: []string{"kadena:mainnet01:k1", "kadena:mainnet01:k2"}},
		},
	}
}

func (f *sessionFixture) aggregations(outcome string) float64 {
	return testutil.ToFloat64(f.metrics.BalanceAggregations.WithLabelValues(outcome))
}

func (f *sessionFixture) connectWith(t *testing.T, session *entity.Session, uri string) {
	t.Helper()
	f.client.pending = &port.PendingSession{
		URI: uri,
		Approval: func(context.Context) (*entity.Session, error) {
			return session, nil
		},
	}
	require.NoError(t, f.ctx.Connect(context.Background(), nil))
}

func TestSessionContext_InitReady(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())

	state := f.ctx.Snapshot()
	assert.Equal(t, entity.StatusReady, state.Status)
	assert.False(t, state.IsInitializing)
	assert.Nil(t, state.Session)
	assert.Equal(t, "https://dapp.example", state.Origin)

	require.Len(t, f.factory.opts, 1)
	opts := f.factory.opts[0]
	assert.Equal(t, "pid", opts.ProjectID)
	assert.Equal(t, defaultRelay, opts.RelayURL)
	assert.Equal(t, "https://walletconnect.com/", opts.Metadata.URL)
	assert.Equal(t, "https://verify.walletconnect.com", opts.Metadata.VerifyURL)

	clientID, ok, _ := f.store.Get(context.Background(), clientIDStorageKey)
	assert.True(t, ok)
	assert.Equal(t, "client-1", clientID)

	f.ctx.Init(context.Background())
	assert.Len(t, f.factory.opts, 1, "an existing client is never recreated")
}

func TestSessionContext_InitUnknownOrigin(t *testing.T) {
	f := newSessionFixture(t)
	require.NoError(t, f.store.Set(context.Background(), originStorageKey, "unknown"))

	f.ctx.Init(context.Background())

	require.Len(t, f.factory.opts, 1)
	assert.Equal(t, "unknown", f.factory.opts[0].Metadata.URL)
	assert.Equal(t, "http://non-existent-url", f.factory.opts[0].Metadata.VerifyURL)
}

func TestSessionContext_InitFailureStillReady(t *testing.T) {
	f := newSessionFixture(t)
	f.factory.err = errors.New("relay unreachable")

	f.ctx.Init(context.Background())

	state := f.ctx.Snapshot()
	assert.False(t, state.IsInitializing)
	assert.Equal(t, entity.StatusReady, state.Status)
	assert.ErrorIs(t, f.ctx.Connect(context.Background(), nil), ErrNotInitialized)
}

func TestSessionContext_InitRestoresLastSession(t *testing.T) {
	f := newSessionFixture(t)
	f.client.pairings = []entity.Pairing{{Topic: "pairing-1", Active: true}}
	f.client.keys = []string{"old", "session-1"}
	f.client.sessions["old"] = &entity.Session{Topic: "old"}
	f.client.sessions["session-1"] = twoByTwoSession()

	f.ctx.Init(context.Background())

	state := f.ctx.Snapshot()
	assert.Equal(t, entity.StatusConnected, state.Status)
	require.NotNil(t, state.Session)
	assert.Equal(t, "session-1", state.Session.Topic)
	assert.Len(t, state.Accounts, 4)
	assert.Len(t, state.Pairings, 1)
	assert.Equal(t, float64(1), f.aggregations("ok"))
}

func TestSessionContext_ConnectAggregatesOnce(t *testing.T) {
	f := newSessionFixture(t)
	f.client.pairings = []entity.Pairing{{Topic: "pairing-1", Active: true}}
	f.ctx.Init(context.Background())

	f.connectWith(t, twoByTwoSession(), "wc:abc@2")

	state := f.ctx.Snapshot()
	assert.Equal(t, entity.StatusConnected, state.Status)
	assert.Equal(t, []string{"eip155:1:0xaaa", "eip155:137:0xbbb", "kadena:mainnet01:k1", "kadena:mainnet01:k2"}, state.Accounts)
	assert.Equal(t, []string{"eip155", "kadena"}, state.Chains)
	assert.Len(t, state.Balances, 4)
	assert.Equal(t, "kadena", state.Balances["kadena:mainnet01:k2"].Symbol)
	assert.Equal(t, []string{"eth", "eth", "", ""}, state.ConnectedBlockchains)
	assert.Len(t, state.Pairings, 1)
	assert.False(t, state.IsFetchingBalances)

	assert.Equal(t, float64(1), f.aggregations("ok"))
	assert.Equal(t, int64(4), f.balances.calls.Load())

	require.Len(t, f.client.connectParams, 1)
	params := f.client.connectParams[0]
	assert.Empty(t, params.PairingTopic)
	assert.Equal(t, []string{"eip155:1"}, params.RequiredNamespaces["eip155"].Chains)
	assert.Equal(t, []string{"kadena:mainnet01"}, params.RequiredNamespaces["kadena"].Chains)
	assert.Contains(t, params.OptionalNamespaces, "eip155")
	assert.NotContains(t, params.OptionalNamespaces, "kadena")

	require.Equal(t, []string{"wc:abc@2"}, f.modal.uris)
	assert.Equal(t, []string{"eip155:1", "kadena:mainnet01"}, f.modal.chains[0])
	assert.Equal(t, 1, f.modal.closed)
	assert.Equal(t, float64(4), testutil.ToFloat64(f.metrics.ConnectedAccounts))
}

func TestSessionContext_ConnectExistingPairingSkipsModal(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	f.client.pending = &port.PendingSession{
		Approval: func(context.Context) (*entity.Session, error) { return twoByTwoSession(), nil },
	}

	require.NoError(t, f.ctx.Connect(context.Background(), &entity.Pairing{Topic: "pairing-1"}))

	assert.Equal(t, "pairing-1", f.client.connectParams[0].PairingTopic)
	assert.Empty(t, f.modal.uris)
	assert.Equal(t, 1, f.modal.closed)
}

func TestSessionContext_ConnectFailureSwallowed(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	f.client.pending = &port.PendingSession{
		URI:      "wc:abc@2",
		Approval: func(context.Context) (*entity.Session, error) { return nil, errors.New("user rejected") },
	}

	require.NoError(t, f.ctx.Connect(context.Background(), nil))

	state := f.ctx.Snapshot()
	assert.Equal(t, entity.StatusReady, state.Status)
	assert.Nil(t, state.Session)
	assert.Equal(t, 1, f.modal.closed)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SessionConnects.WithLabelValues("error")))
}

func TestSessionContext_ConnectReplacesSession(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	f.connectWith(t, twoByTwoSession(), "wc:abc@2")

	f.connectWith(t, &entity.Session{
		Topic:      "session-2",
		Namespaces: map[string]entity.SessionNamespace{"eip155": {Accounts: []string{"eip155:1:0xccc"}}},
	}, "wc:def@2")

	state := f.ctx.Snapshot()
	assert.Equal(t, "session-2", state.Session.Topic)
	assert.Equal(t, []string{"eip155:1:0xccc"}, state.Accounts)
	assert.Equal(t, entity.AccountBalances{"eip155:1:0xccc": {Balance: "1", Symbol: "eip155", Name: "0xccc"}}, state.Balances)
}

func TestSessionContext_BalanceFailureKeepsPrevious(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	f.connectWith(t, twoByTwoSession(), "wc:abc@2")
	before := f.ctx.Snapshot().Balances

	f.balances.fail = map[string]bool{"k2": true}
	f.balances.failErr = errors.New("rpc down")
	f.connectWith(t, twoByTwoSession(), "wc:abc@2")

	assert.Equal(t, before, f.ctx.Snapshot().Balances)
	assert.Equal(t, float64(1), f.aggregations("error"))
}

func TestSessionContext_DisconnectPreconditions(t *testing.T) {
	f := newSessionFixture(t)
	assert.ErrorIs(t, f.ctx.Disconnect(context.Background()), ErrNotInitialized)

	f.ctx.Init(context.Background())
	before := f.ctx.Snapshot()
	assert.ErrorIs(t, f.ctx.Disconnect(context.Background()), ErrSessionNotConnected)
	assert.Equal(t, before, f.ctx.Snapshot())
	assert.Empty(t, f.client.disconnectCalls)
}

func TestSessionContext_DisconnectResets(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	f.connectWith(t, twoByTwoSession(), "wc:abc@2")
	require.NoError(t, f.ctx.SetRelayerRegion(context.Background(), "wss://eu.relay.walletconnect.com"))

	require.NoError(t, f.ctx.Disconnect(context.Background()))

	require.Len(t, f.client.disconnectCalls, 1)
	assert.Equal(t, "session-1", f.client.disconnectCalls[0].Topic)
	assert.Equal(t, entity.SdkError{Code: 6000, Message: "User disconnected."}, f.client.disconnectCalls[0].Reason)

	state := f.ctx.Snapshot()
	assert.Equal(t, entity.StatusDisconnected, state.Status)
	assert.Nil(t, state.Session)
	assert.Empty(t, state.Accounts)
	assert.Empty(t, state.Chains)
	assert.Empty(t, state.Balances)
	assert.Equal(t, defaultRelay, state.RelayerRegion)
	assert.Equal(t, []string{"wss://eu.relay.walletconnect.com", defaultRelay}, f.client.restarts)
}

func TestSessionContext_DisconnectFailureKeepsState(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	f.connectWith(t, twoByTwoSession(), "wc:abc@2")
	f.client.disconnectErr = errors.New("relay timeout")

	require.NoError(t, f.ctx.Disconnect(context.Background()))

	state := f.ctx.Snapshot()
	assert.Equal(t, entity.StatusConnected, state.Status)
	require.NotNil(t, state.Session)
	assert.Len(t, state.Accounts, 4)
	assert.Len(t, state.Balances, 4)
}

func TestSessionContext_SessionDeleteResets(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	f.connectWith(t, twoByTwoSession(), "wc:abc@2")

	f.client.emit(entity.EventSessionDelete, entity.ClientEventPayload{Topic: "session-1"})

	state := f.ctx.Snapshot()
	assert.Nil(t, state.Session)
	assert.Empty(t, state.Accounts)
	assert.Empty(t, state.Balances)
	assert.Empty(t, f.client.disconnectCalls)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.SessionDisconnects.WithLabelValues("session_delete")))
}

func TestSessionContext_SessionUpdateMergesNamespaces(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	session := twoByTwoSession()
	session.Peer = entity.AppMetadata{Name: "Wallet"}
	f.client.sessions["session-1"] = session
	f.connectWith(t, session, "wc:abc@2")

	f.client.emit(entity.EventSessionUpdate, entity.ClientEventPayload{
		Topic: "session-1",
		Params: entity.SessionEventParams{Namespaces: map[string]entity.SessionNamespace{
			"eip155": {Accounts: []string{"eip155:10:0xddd"}},
		}},
	})

	state := f.ctx.Snapshot()
	require.NotNil(t, state.Session)
	assert.Equal(t, "session-1", state.Session.Topic)
	assert.Equal(t, "Wallet", state.Session.Peer.Name)
	assert.Equal(t, []string{"eip155:10:0xddd"}, state.Accounts)
	assert.Equal(t, []string{"eip155"}, state.Chains)
	assert.Len(t, state.Balances, 1)
	assert.Equal(t, float64(2), f.aggregations("ok"))
}

func TestSessionContext_SetRelayerRegion(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.ctx.SetRelayerRegion(context.Background(), "wss://us.relay.walletconnect.com"))
	assert.Empty(t, f.client.restarts, "no client yet")

	f.ctx.Init(context.Background())
	assert.Equal(t, "wss://us.relay.walletconnect.com", f.factory.opts[0].RelayURL)

	require.NoError(t, f.ctx.SetRelayerRegion(context.Background(), "wss://us.relay.walletconnect.com"))
	assert.Empty(t, f.client.restarts)

	require.NoError(t, f.ctx.SetRelayerRegion(context.Background(), "wss://eu.relay.walletconnect.com"))
	assert.Equal(t, []string{"wss://eu.relay.walletconnect.com"}, f.client.restarts)
	assert.Len(t, f.factory.opts, 1)
}

func TestSessionContext_SnapshotIsCopy(t *testing.T) {
	f := newSessionFixture(t)
	f.ctx.Init(context.Background())
	f.connectWith(t, twoByTwoSession(), "wc:abc@2")

	snap := f.ctx.Snapshot()
	snap.Accounts[0] = "mutated"
	snap.Balances["x"] = entity.AccountBalance{}
	snap.Session.Namespaces["eip155"] = entity.SessionNamespace{}

	fresh := f.ctx.Snapshot()
	assert.Equal(t, "eip155:1:0xaaa", fresh.Accounts[0])
	assert.NotContains(t, fresh.Balances, "x")
	assert.Len(t, fresh.Session.Namespaces["eip155"].Accounts, 2)
}

func TestConnectedBlockchains(t *testing.T) {
	got := ConnectedBlockchains([]string{"eip155:1:0xa", "tron:0x2b6653dc:T1", "solana:4sGj:abc"})
	assert.Equal(t, []string{"eth", "trx", ""}, got)
}
