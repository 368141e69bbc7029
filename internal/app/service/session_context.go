package service

import (
	"context"
	"errors"
	"sync"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"
	"wallet_connector/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	clientIDStorageKey   = "WALLETCONNECT_CLIENT_ID"
	originStorageKey     = "wallet_connect_dapp_origin"
	unknownOrigin        = "unknown"
	nonExistentVerifyURL = "http://non-existent-url"
)

var (
	// ErrNotInitialized is returned when an operation needs a sign client that does not exist yet.
	ErrNotInitialized = errors.New("wallet connect is not initialized")
	// ErrSessionNotConnected is returned by Disconnect when no session is held.
	ErrSessionNotConnected = errors.New("session is not connected")
)

// SessionContextConfig holds the static inputs of a SessionContext.
type SessionContextConfig struct {
	ProjectID       string
	DefaultRelayURL string
	DefaultChains   []string
	Origin          string
	Metadata        entity.AppMetadata
}

var _ port.SessionService = (*SessionContext)(nil)

// SessionContext owns the sign client handle and everything derived from the active session.
type SessionContext struct {
	factory  port.SignClientFactory
	modal    port.Modal
	storage  port.KeyValueStore
	balances port.BalanceClient
	logger   port.Logger
	metrics  *metrics.Metrics
	cfg      SessionContextConfig

	mu                sync.RWMutex
	client            port.SignClient
	prevRelayerRegion string
	state             entity.SessionState
}

// NewSessionContext creates a context in the uninitialized state.
func NewSessionContext(
	factory port.SignClientFactory,
	modal port.Modal,
	storage port.KeyValueStore,
	balances port.BalanceClient,
	logger port.Logger,
	m *metrics.Metrics,
	cfg SessionContextConfig,
) *SessionContext {
	if m == nil {
		m = metrics.New(nil)
	}
	origin := cfg.Origin
	if origin == "" {
		origin = cfg.Metadata.URL
	}
	return &SessionContext{
		factory:  factory,
		modal:    modal,
		storage:  storage,
		balances: balances,
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
		state: entity.SessionState{
			Status:        entity.StatusUninitialized,
			Pairings:      []entity.Pairing{},
			Accounts:      []string{},
			Chains:        append([]string{}, cfg.DefaultChains...),
			Balances:      entity.AccountBalances{},
			RelayerRegion: cfg.DefaultRelayURL,
			Origin:        origin,
		},
	}
}

// Init creates the sign client when none exists, subscribes to its events and restores persisted state.
// Failures are logged; the context always ends in a usable state.
func (s *SessionContext) Init(ctx context.Context) {
	s.mu.Lock()
	if s.client != nil || s.state.IsInitializing {
		s.mu.Unlock()
		return
	}
	s.state.IsInitializing = true
	s.state.Status = entity.StatusInitializing
	relayURL := s.state.RelayerRegion
	origin := s.state.Origin
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state.IsInitializing = false
		if s.state.Status == entity.StatusInitializing {
			s.state.Status = entity.StatusReady
		}
		s.mu.Unlock()
		s.logger.Info("Initialization process completed")
	}()

	if err := s.createClient(ctx, relayURL, origin); err != nil {
		s.logger.Error("Error initializing WalletConnect client", "error", err)
	}
}

func (s *SessionContext) createClient(ctx context.Context, relayURL, origin string) error {
	claimedOrigin := origin
	if stored, ok, err := s.storage.Get(ctx, originStorageKey); err != nil {
		s.logger.Warn("Failed to read origin override", "error", err)
	} else if ok && stored != "" {
		claimedOrigin = stored
	}

	metadata := s.cfg.Metadata
	metadata.URL = claimedOrigin
	if claimedOrigin == unknownOrigin {
		metadata.VerifyURL = nonExistentVerifyURL
	}

	client, err := s.factory.Init(ctx, entity.ClientOptions{
		ProjectID: s.cfg.ProjectID,
		RelayURL:  relayURL,
		Metadata:  metadata,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.client = client
	s.state.Origin = client.Metadata().URL
	s.prevRelayerRegion = relayURL
	s.mu.Unlock()

	s.subscribeToEvents(client)
	if err := s.checkPersistedState(ctx, client); err != nil {
		return err
	}
	s.logClientID(ctx, client)
	return nil
}

func (s *SessionContext) subscribeToEvents(client port.SignClient) {
	client.On(entity.EventSessionPing, func(p entity.ClientEventPayload) {
		s.logger.Info("EVENT session_ping", "topic", p.Topic)
	})

	client.On(entity.EventSessionEvent, func(p entity.ClientEventPayload) {
		s.logger.Info("EVENT session_event", "topic", p.Topic, "params", p.Params)
	})

	client.On(entity.EventSessionUpdate, func(p entity.ClientEventPayload) {
		s.logger.Info("EVENT session_update", "topic", p.Topic, "params", p.Params)
		ctx := context.Background()
		current := entity.Session{Topic: p.Topic}
		if stored, err := client.Session().Get(ctx, p.Topic); err != nil {
			s.logger.Warn("Session for update not found", "topic", p.Topic, "error", err)
		} else if stored != nil {
			current = *stored
		}
		s.onSessionConnected(ctx, current.WithNamespaces(p.Params.Namespaces))
	})

	client.On(entity.EventSessionDelete, func(p entity.ClientEventPayload) {
		s.logger.Info("EVENT session_delete", "topic", p.Topic)
		s.reset(context.Background())
		s.metrics.SessionDisconnects.WithLabelValues("session_delete").Inc()
	})

	client.Relayer().On(entity.RelayerConnect, func() {
		s.logger.Info("Network connection is restored")
	})
	client.Relayer().On(entity.RelayerDisconnect, func() {
		s.logger.Warn("Network connection lost")
	})
}

// checkPersistedState restores active pairings and, when no session is held, the most recent session.
func (s *SessionContext) checkPersistedState(ctx context.Context, client port.SignClient) error {
	pairings, err := client.Pairing().GetAll(ctx, true)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Pairings = pairings
	hasSession := s.state.Session != nil
	s.mu.Unlock()
	s.logger.Info("RESTORED PAIRINGS", "count", len(pairings))

	if hasSession {
		return nil
	}

	keys, err := client.Session().Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	session, err := client.Session().Get(ctx, keys[len(keys)-1])
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	s.logger.Info("RESTORED SESSION", "topic", session.Topic)
	s.onSessionConnected(ctx, *session)
	return nil
}

func (s *SessionContext) logClientID(ctx context.Context, client port.SignClient) {
	clientID, err := client.Crypto().ClientID(ctx)
	if err == nil {
		s.logger.Info("WalletConnect ClientID", "client_id", clientID)
		err = s.storage.Set(ctx, clientIDStorageKey, clientID)
	}
	if err != nil {
		s.logger.Error("Failed to persist WalletConnect clientId", "error", err)
	}
}

// Connect proposes a session for the current chain list and waits for the wallet to approve it.
// A nil pairing always starts a fresh pairing. Only the missing-client precondition is returned;
// every other failure is logged.
func (s *SessionContext) Connect(ctx context.Context, pairing *entity.Pairing) error {
	s.mu.Lock()
	client := s.client
	if client == nil {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	chains := append([]string{}, s.state.Chains...)
	s.state.Status = entity.StatusConnecting
	s.mu.Unlock()

	defer s.modal.CloseModal()

	err := s.connect(ctx, client, pairing, chains)
	s.metrics.SessionConnects.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Error("Connect failed", "error", err)
		s.mu.Lock()
		s.state.Status = s.restingStatus()
		s.mu.Unlock()
	}
	return nil
}

func (s *SessionContext) connect(ctx context.Context, client port.SignClient, pairing *entity.Pairing, chains []string) error {
	params := entity.ConnectParams{
		RequiredNamespaces: GetRequiredNamespaces(chains),
		OptionalNamespaces: GetOptionalNamespaces(chains),
	}
	if pairing != nil {
		params.PairingTopic = pairing.Topic
	}
	s.logger.Info("Connecting", "pairing_topic", params.PairingTopic,
		"required_namespaces", params.RequiredNamespaces, "optional_namespaces", params.OptionalNamespaces)

	pending, err := client.Connect(ctx, params)
	if err != nil {
		return err
	}

	// A URI means a new pairing: show it to the user.
	if pending.URI != "" {
		if err := s.modal.OpenModal(pending.URI, params.RequiredNamespaces.Chains()); err != nil {
			return err
		}
	}

	session, err := pending.Approval(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("Established session", "topic", session.Topic)
	s.onSessionConnected(ctx, *session)

	pairings, err := client.Pairing().GetAll(ctx, true)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Pairings = pairings
	s.mu.Unlock()
	return nil
}

// Disconnect terminates the active session. A failed termination leaves state untouched.
func (s *SessionContext) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	session := s.state.Session
	if client == nil {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	if session == nil {
		s.mu.Unlock()
		return ErrSessionNotConnected
	}
	s.state.Status = entity.StatusDisconnecting
	s.mu.Unlock()

	err := client.Disconnect(ctx, entity.DisconnectParams{
		Topic:  session.Topic,
		Reason: entity.UserDisconnected,
	})
	if err != nil {
		s.logger.Warn("Disconnect failed, keeping session state", "topic", session.Topic, "error", err)
		s.mu.Lock()
		s.state.Status = s.restingStatus()
		s.mu.Unlock()
		return nil
	}

	s.reset(ctx)
	s.metrics.SessionDisconnects.WithLabelValues("user").Inc()
	return nil
}

// SetRelayerRegion records the relay URL. An existing client restarts its transport on change.
func (s *SessionContext) SetRelayerRegion(ctx context.Context, relayURL string) error {
	s.mu.Lock()
	s.state.RelayerRegion = relayURL
	client := s.client
	prev := s.prevRelayerRegion
	s.mu.Unlock()

	if client == nil || prev == "" || prev == relayURL {
		return nil
	}
	if err := client.Relayer().RestartTransport(ctx, relayURL); err != nil {
		return err
	}
	s.mu.Lock()
	s.prevRelayerRegion = relayURL
	s.mu.Unlock()
	return nil
}

// SetChains replaces the chain list used by the next Connect.
func (s *SessionContext) SetChains(chains []string) {
	s.mu.Lock()
	s.state.Chains = append([]string{}, chains...)
	s.mu.Unlock()
}

// IsInitializing reports whether the sign client is being created.
func (s *SessionContext) IsInitializing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsInitializing
}

// IsFetchingBalances reports whether a balance aggregation is running.
func (s *SessionContext) IsFetchingBalances() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsFetchingBalances
}

// Snapshot returns a copy of the current state.
func (s *SessionContext) Snapshot() entity.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if s.state.Session != nil {
		session := copySession(*s.state.Session)
		st.Session = &session
	}
	st.Pairings = append([]entity.Pairing{}, s.state.Pairings...)
	st.Accounts = append([]string{}, s.state.Accounts...)
	st.Chains = append([]string{}, s.state.Chains...)
	st.Balances = make(entity.AccountBalances, len(s.state.Balances))
	for k, v := range s.state.Balances {
		st.Balances[k] = v
	}
	st.ConnectedBlockchains = ConnectedBlockchains(s.state.Accounts)
	return st
}

// ConnectedBlockchains maps each account to the short ticker of its namespace, "" when unknown.
func ConnectedBlockchains(accounts []string) []string {
	out := make([]string, 0, len(accounts))
	for _, account := range accounts {
		namespace, _ := entity.SplitChainID(account)
		switch namespace {
		case "eip155":
			out = append(out, "eth")
		case "tron":
			out = append(out, "trx")
		default:
			out = append(out, "")
		}
	}
	return out
}

// onSessionConnected installs session in place of any prior one and refreshes balances.
func (s *SessionContext) onSessionConnected(ctx context.Context, session entity.Session) {
	session = copySession(session)
	accounts := session.Accounts()
	chains := session.NamespaceKeys()

	s.mu.Lock()
	s.state.Session = &session
	s.state.Chains = chains
	s.state.Accounts = accounts
	s.state.Status = entity.StatusConnected
	s.mu.Unlock()
	s.metrics.ConnectedAccounts.Set(float64(len(accounts)))

	s.getAccountBalances(ctx, accounts)
}

// getAccountBalances fetches every account concurrently; any failure leaves the previous balances.
func (s *SessionContext) getAccountBalances(ctx context.Context, accounts []string) {
	s.setFetchingBalances(true)
	defer s.setFetchingBalances(false)

	balances := make(entity.AccountBalances, len(accounts))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, account := range accounts {
		g.Go(func() error {
			id, err := entity.ParseAccountID(account)
			if err != nil {
				return err
			}
			balance, err := s.balances.GetAccountBalance(gctx, id.Address, id.ChainID())
			if err != nil {
				return err
			}
			mu.Lock()
			balances[account] = balance
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	s.metrics.BalanceAggregations.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Error("Failed to fetch account balances", "error", err)
		return
	}

	s.mu.Lock()
	s.state.Balances = balances
	s.mu.Unlock()
}

func (s *SessionContext) setFetchingBalances(v bool) {
	s.mu.Lock()
	s.state.IsFetchingBalances = v
	s.mu.Unlock()
}

// reset clears everything derived from the session and restores the default relay URL.
func (s *SessionContext) reset(ctx context.Context) {
	s.mu.Lock()
	s.state.Session = nil
	s.state.Balances = entity.AccountBalances{}
	s.state.Accounts = []string{}
	s.state.Chains = []string{}
	s.state.Status = entity.StatusDisconnected
	s.mu.Unlock()
	s.metrics.ConnectedAccounts.Set(0)

	if err := s.SetRelayerRegion(ctx, s.cfg.DefaultRelayURL); err != nil {
		s.logger.Error("Failed to restart relayer transport", "error", err)
	}
}

// restingStatus is the status to fall back to after an aborted transition. Callers hold s.mu.
func (s *SessionContext) restingStatus() entity.SessionStatus {
	if s.state.Session != nil {
		return entity.StatusConnected
	}
	return entity.StatusReady
}

func copySession(session entity.Session) entity.Session {
	namespaces := make(map[string]entity.SessionNamespace, len(session.Namespaces))
	for k, ns := range session.Namespaces {
		namespaces[k] = entity.SessionNamespace{
			Accounts: append([]string{}, ns.Accounts...),
			Chains:   append([]string{}, ns.Chains...),
			Methods:  append([]string{}, ns.Methods...),
			Events:   append([]string{}, ns.Events...),
		}
	}
	session.Namespaces = namespaces
	return session
}
