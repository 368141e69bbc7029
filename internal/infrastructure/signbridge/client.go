package signbridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrClosed is returned by calls made after the bridge connection dropped.
var ErrClosed = errors.New("sign bridge connection closed")

// Factory dials the sidecar hosting the SDK. It implements port.SignClientFactory.
type Factory struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
	logger port.Logger
}

// NewFactory creates a factory for the bridge at url (ws:// or wss://).
func NewFactory(url string, origin string, logger port.Logger) *Factory {
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return &Factory{
		url:    url,
		header: header,
		dialer: websocket.DefaultDialer,
		logger: logger,
	}
}

var _ port.SignClientFactory = (*Factory)(nil)

// Init dials the bridge and initializes an SDK instance with opts.
func (f *Factory) Init(ctx context.Context, opts entity.ClientOptions) (port.SignClient, error) {
	conn, _, err := f.dialer.DialContext(ctx, f.url, f.header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial sign bridge %s: %w", f.url, err)
	}

	c := newClient(conn, f.logger)
	var res initResult
	if err := c.call(ctx, methodInit, opts, &res); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to init sign client: %w", err)
	}
	c.metadata = entity.AppMetadata{
		Name:        res.Metadata.Name,
		Description: res.Metadata.Description,
		URL:         res.Metadata.URL,
		Icons:       res.Metadata.Icons,
		VerifyURL:   res.Metadata.VerifyURL,
	}
	if c.metadata.URL == "" {
		c.metadata = opts.Metadata
	}
	return c, nil
}

type pushedEvent struct {
	name    string
	payload []byte
}

// Client forwards SDK calls over a websocket. It implements port.SignClient.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closing atomic.Bool
	logger  port.Logger

	mu              sync.Mutex
	pending         map[string]chan inbound
	handlers        map[entity.ClientEvent][]func(entity.ClientEventPayload)
	relayerHandlers map[entity.RelayerEvent][]func()
	err             error

	queueMu  sync.Mutex
	queue    []pushedEvent
	wake     chan struct{}
	done     chan struct{}
	metadata entity.AppMetadata
}

var _ port.SignClient = (*Client)(nil)

func newClient(conn *websocket.Conn, logger port.Logger) *Client {
	c := &Client{
		conn:            conn,
		logger:          logger,
		pending:         make(map[string]chan inbound),
		handlers:        make(map[entity.ClientEvent][]func(entity.ClientEventPayload)),
		relayerHandlers: make(map[entity.RelayerEvent][]func()),
		wake:            make(chan struct{}, 1),
		done:            make(chan struct{}),
	}
	go c.readLoop()
	go c.dispatchLoop()
	return c
}

// Connect implements port.SignClient.
func (c *Client) Connect(ctx context.Context, params entity.ConnectParams) (*port.PendingSession, error) {
	var res connectResult
	if err := c.call(ctx, methodConnect, params, &res); err != nil {
		return nil, err
	}
	return &port.PendingSession{
		URI: res.URI,
		Approval: func(ctx context.Context) (*entity.Session, error) {
			var session entity.Session
			if err := c.call(ctx, methodApproval, approvalParams{ApprovalID: res.ApprovalID}, &session); err != nil {
				return nil, err
			}
			return &session, nil
		},
	}, nil
}

// Disconnect implements port.SignClient.
func (c *Client) Disconnect(ctx context.Context, params entity.DisconnectParams) error {
	return c.call(ctx, methodDisconnect, params, nil)
}

// On implements port.SignClient.
func (c *Client) On(event entity.ClientEvent, handler func(entity.ClientEventPayload)) {
	c.mu.Lock()
	c.handlers[event] = append(c.handlers[event], handler)
	c.mu.Unlock()
}

func (c *Client) Session() port.SessionStore { return sessionStore{c} }
func (c *Client) Pairing() port.PairingStore { return pairingStore{c} }
func (c *Client) Relayer() port.Relayer      { return relayer{c} }
func (c *Client) Crypto() port.Crypto        { return keychain{c} }

// Metadata implements port.SignClient.
func (c *Client) Metadata() entity.AppMetadata {
	return c.metadata
}

// Close drops the connection. Pending calls fail with ErrClosed.
func (c *Client) Close() error {
	c.closing.Store(true)
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	id := uuid.NewString()
	reply := make(chan inbound, 1)

	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.pending[id] = reply
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	payload, err := json.Marshal(request{ID: id, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}
	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, payload)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	case msg := <-reply:
		if msg.Error != nil {
			return msg.Error
		}
		if out == nil || len(msg.Result) == 0 {
			return nil
		}
		if err := json.Unmarshal(msg.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
		return nil
	}
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.err = ErrClosed
			c.mu.Unlock()
			if !c.closing.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.logger.Warn("Sign bridge read failed", "error", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("Malformed sign bridge message", "error", err)
			continue
		}

		if msg.Event != "" {
			c.enqueue(pushedEvent{name: msg.Event, payload: msg.Payload})
			continue
		}

		c.mu.Lock()
		reply, ok := c.pending[msg.ID]
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Dropping reply for unknown request", "id", msg.ID)
			continue
		}
		select {
		case reply <- msg:
		default:
		}
	}
}

// enqueue never blocks: replies a handler waits on are read by the same goroutine.
func (c *Client) enqueue(ev pushedEvent) {
	c.queueMu.Lock()
	c.queue = append(c.queue, ev)
	c.queueMu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Client) dequeue() (pushedEvent, bool) {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if len(c.queue) == 0 {
		return pushedEvent{}, false
	}
	ev := c.queue[0]
	c.queue[0] = pushedEvent{}
	c.queue = c.queue[1:]
	return ev, true
}

// dispatchLoop runs handlers off the read goroutine so they may call back into the client.
func (c *Client) dispatchLoop() {
	for {
		select {
		case <-c.wake:
		case <-c.done:
			c.drain()
			return
		}
		c.drain()
	}
}

func (c *Client) drain() {
	for {
		ev, ok := c.dequeue()
		if !ok {
			return
		}
		c.dispatch(ev)
	}
}

func (c *Client) dispatch(ev pushedEvent) {
	switch name := entity.RelayerEvent(ev.name); name {
	case entity.RelayerConnect, entity.RelayerDisconnect:
		c.mu.Lock()
		handlers := append([]func(){}, c.relayerHandlers[name]...)
		c.mu.Unlock()
		for _, h := range handlers {
			h()
		}
		return
	}

	var payload entity.ClientEventPayload
	if len(ev.payload) > 0 {
		if err := json.Unmarshal(ev.payload, &payload); err != nil {
			c.logger.Warn("Malformed sign client event", "event", ev.name, "error", err)
			return
		}
	}
	c.mu.Lock()
	handlers := append([]func(entity.ClientEventPayload){}, c.handlers[entity.ClientEvent(ev.name)]...)
	c.mu.Unlock()
	for _, h := range handlers {
		h(payload)
	}
}

type sessionStore struct{ c *Client }

func (s sessionStore) Get(ctx context.Context, topic string) (*entity.Session, error) {
	var session entity.Session
	if err := s.c.call(ctx, methodSessionGet, topicParams{Topic: topic}, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s sessionStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.c.call(ctx, methodSessionKeys, nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

type pairingStore struct{ c *Client }

func (p pairingStore) GetAll(ctx context.Context, activeOnly bool) ([]entity.Pairing, error) {
	pairings := []entity.Pairing{}
	if err := p.c.call(ctx, methodPairingGetAll, pairingParams{ActiveOnly: activeOnly}, &pairings); err != nil {
		return nil, err
	}
	return pairings, nil
}

type relayer struct{ c *Client }

func (r relayer) RestartTransport(ctx context.Context, relayURL string) error {
	return r.c.call(ctx, methodRestartTransport, relayParams{RelayURL: relayURL}, nil)
}

func (r relayer) On(event entity.RelayerEvent, handler func()) {
	r.c.mu.Lock()
	r.c.relayerHandlers[event] = append(r.c.relayerHandlers[event], handler)
	r.c.mu.Unlock()
}

type keychain struct{ c *Client }

func (k keychain) ClientID(ctx context.Context) (string, error) {
	var id string
	if err := k.c.call(ctx, methodGetClientID, nil, &id); err != nil {
		return "", err
	}
	return id, nil
}
