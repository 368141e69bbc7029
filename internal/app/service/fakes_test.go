package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fakeSignClient struct {
	mu sync.Mutex

	metadata      entity.AppMetadata
	pending       *port.PendingSession
	connectErr    error
	connectParams []entity.ConnectParams

	disconnectErr   error
	disconnectCalls []entity.DisconnectParams

	sessions map[string]*entity.Session
	keys     []string
	pairings []entity.Pairing
	clientID string

	restarts []string

	handlers        map[entity.ClientEvent][]func(entity.ClientEventPayload)
	relayerHandlers map[entity.RelayerEvent][]func()
}

func newFakeSignClient() *fakeSignClient {
	return &fakeSignClient{
		metadata:        entity.AppMetadata{URL: "https://dapp.example"},
		sessions:        map[string]*entity.Session{},
		pairings:        []entity.Pairing{},
		clientID:        "client-1",
		handlers:        map[entity.ClientEvent][]func(entity.ClientEventPayload){},
		relayerHandlers: map[entity.RelayerEvent][]func(){},
	}
}

func (c *fakeSignClient) Connect(_ context.Context, params entity.ConnectParams) (*port.PendingSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectParams = append(c.connectParams, params)
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return c.pending, nil
}

func (c *fakeSignClient) Disconnect(_ context.Context, params entity.DisconnectParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnectCalls = append(c.disconnectCalls, params)
	return c.disconnectErr
}

func (c *fakeSignClient) On(event entity.ClientEvent, handler func(entity.ClientEventPayload)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], handler)
}

func (c *fakeSignClient) emit(event entity.ClientEvent, payload entity.ClientEventPayload) {
	c.mu.Lock()
	handlers := append([]func(entity.ClientEventPayload){}, c.handlers[event]...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(payload)
	}
}

func (c *fakeSignClient) Session() port.SessionStore   { return fakeSessionStore{c} }
func (c *fakeSignClient) Pairing() port.PairingStore   { return fakePairingStore{c} }
func (c *fakeSignClient) Relayer() port.Relayer        { return fakeRelayer{c} }
func (c *fakeSignClient) Crypto() port.Crypto          { return fakeCrypto{c} }
func (c *fakeSignClient) Metadata() entity.AppMetadata { return c.metadata }

type fakeSessionStore struct{ c *fakeSignClient }

func (s fakeSessionStore) Get(_ context.Context, topic string) (*entity.Session, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	session, ok := s.c.sessions[topic]
	if !ok {
		return nil, errors.New("no session for topic " + topic)
	}
	copied := *session
	return &copied, nil
}

func (s fakeSessionStore) Keys(context.Context) ([]string, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	return append([]string{}, s.c.keys...), nil
}

type fakePairingStore struct{ c *fakeSignClient }

func (p fakePairingStore) GetAll(context.Context, bool) ([]entity.Pairing, error) {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return append([]entity.Pairing{}, p.c.pairings...), nil
}

type fakeRelayer struct{ c *fakeSignClient }

func (r fakeRelayer) RestartTransport(_ context.Context, relayURL string) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	r.c.restarts = append(r.c.restarts, relayURL)
	return nil
}

func (r fakeRelayer) On(event entity.RelayerEvent, handler func()) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	r.c.relayerHandlers[event] = append(r.c.relayerHandlers[event], handler)
}

type fakeCrypto struct{ c *fakeSignClient }

func (k fakeCrypto) ClientID(context.Context) (string, error) { return k.c.clientID, nil }

type fakeFactory struct {
	client *fakeSignClient
	err    error
	opts   []entity.ClientOptions
}

func (f *fakeFactory) Init(_ context.Context, opts entity.ClientOptions) (port.SignClient, error) {
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type fakeModal struct {
	mu     sync.Mutex
	uris   []string
	chains [][]string
	closed int
}

func (m *fakeModal) OpenModal(uri string, chains []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uris = append(m.uris, uri)
	m.chains = append(m.chains, chains)
	return nil
}

func (m *fakeModal) CloseModal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
}

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// fakeBalances returns "1" with the namespace as symbol, or failErr for addresses in fail.
type fakeBalances struct {
	calls   atomic.Int64
	fail    map[string]bool
	failErr error
}

func (b *fakeBalances) GetAccountBalance(_ context.Context, address, chainID string) (entity.AccountBalance, error) {
	b.calls.Add(1)
	if b.fail[address] {
		return entity.AccountBalance{}, b.failErr
	}
	namespace, _ := entity.SplitChainID(chainID)
	return entity.AccountBalance{Balance: "1", Symbol: namespace, Name: address}, nil
}

func (b *fakeBalances) GetAccountNonce(context.Context, string, string) (uint64, error) {
	return 0, nil
}

func (b *fakeBalances) GetGasPrice(context.Context, string) (string, error) {
	return "0x1", nil
}
