/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package node

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"nhooyr.io/websocket"

	"github.com/friendsincode/rias/events"
	"github.com/friendsincode/rias/lavalink"
	"github.com/friendsincode/rias/metrics"
)

const (
	defaultUserAgent            = "Rias"
	defaultResumeTimeout         = 60 * time.Second
	defaultMaxReconnectAttempts = 5
	defaultReconnectBaseDelay   = 3000 * time.Millisecond
	defaultRestTimeout          = 5 * time.Second
	longRestTimeout             = 10 * time.Second
	pluginCacheTTL              = 300 * time.Second
	readLimitBytes              = 1 << 20
)

// Config describes one audio node's identity and connection knobs.
type Config struct {
	ID       string
	Host     string
	Port     int
	Secure   bool
	Password string
	Region   string
	Priority int

	ResumeKey     string
	ResumeTimeout time.Duration

	MaxReconnectAttempts int
	ReconnectBaseDelay   time.Duration

	UserAgent string

	// Tracing wraps the REST http.Client's transport with otelhttp,
	// emitting spans against the process's configured (or no-op) global
	// tracer provider. The module never configures an SDK or exporter
	// itself.
	Tracing bool
}

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.ResumeTimeout == 0 {
		c.ResumeTimeout = defaultResumeTimeout
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = defaultMaxReconnectAttempts
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = defaultReconnectBaseDelay
	}
	return c
}

// Node manages the client session to one audio node.
type Node struct {
	cfg     Config
	logger  zerolog.Logger
	metrics *metrics.Registry
	bus     *events.Bus[Event]
	http    *http.Client

	mu                sync.Mutex
	state             ConnectionState
	sessionID         string
	reconnectAttempts int
	stats             lavalink.Stats
	haveStats         bool
	info              *InfoResponse
	infoFetchedAt     time.Time
	plugins           map[string]Plugin
	conn              *websocket.Conn
	reconnectTimer    *time.Timer
	clientID          string
	closing           bool
}

// New constructs a Node. logger may be the zero value (zerolog.Nop());
// reg may be nil, in which case metrics calls are no-ops.
func New(cfg Config, logger zerolog.Logger, reg *metrics.Registry) *Node {
	cfg = cfg.withDefaults()
	if reflect.DeepEqual(logger, zerolog.Logger{}) {
		logger = zerolog.Nop()
	}

	transport := http.DefaultTransport
	if cfg.Tracing {
		transport = otelhttp.NewTransport(transport)
	}

	return &Node{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		bus:     events.NewBus[Event](),
		http:    &http.Client{Timeout: 30 * time.Second, Transport: transport},
		state:   Disconnected,
		plugins: make(map[string]Plugin),
	}
}

// ID returns the node's configured identity.
func (n *Node) ID() string { return n.cfg.ID }

// Region returns the node's configured region, or "" if unset.
func (n *Node) Region() string { return n.cfg.Region }

// Priority returns the node's configured priority (lower = preferred).
func (n *Node) Priority() int { return n.cfg.Priority }

// On registers a handler for the named event, returning an unsubscribe
// function.
func (n *Node) On(name EventName, handler func(Event)) func() {
	return n.bus.On(string(name), handler)
}

// State returns the node's current connection state.
func (n *Node) State() ConnectionState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// IsReady reports whether the node is connected and has a session id.
func (n *Node) IsReady() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state == Connected && n.sessionID != ""
}

// SessionID returns the node's current session id, or "" if none.
func (n *Node) SessionID() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sessionID
}

// Stats returns the last-ingested stats frame and whether one has ever
// arrived.
func (n *Node) Stats() (lavalink.Stats, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stats, n.haveStats
}

func (n *Node) setState(s ConnectionState) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
	n.metrics.SetNodeState(n.cfg.ID, int(s))
}

// Connect opens the event stream, identifying to the node as clientID
// (the bot's own platform user id). It does not block on handshake
// completion; callers needing readiness should subscribe to EventReady.
func (n *Node) Connect(ctx context.Context, clientID string) {
	n.mu.Lock()
	n.clientID = clientID
	n.closing = false
	n.mu.Unlock()

	n.setState(Connecting)
	go n.connectLoop(ctx)
}

func (n *Node) connectLoop(ctx context.Context) {
	conn, err := n.dial(ctx)
	if err != nil {
		n.logger.Error().Err(err).Str("node", n.cfg.ID).Msg("node dial failed")
		n.bus.Emit(string(EventError), Event{NodeID: n.cfg.ID, Err: err})
		n.scheduleReconnect(ctx)
		return
	}

	n.mu.Lock()
	n.conn = conn
	n.reconnectAttempts = 0
	n.mu.Unlock()
	n.setState(Connected)

	if n.cfg.ResumeKey != "" {
		frame := lavalink.NewConfigureResuming(n.cfg.ResumeKey, int(n.cfg.ResumeTimeout/time.Second))
		if err := n.writeFrame(ctx, frame); err != nil {
			n.logger.Warn().Err(err).Str("node", n.cfg.ID).Msg("configureResuming send failed")
		}
	}

	go n.discoverPlugins(ctx, true)
	n.bus.Emit(string(EventConnect), Event{NodeID: n.cfg.ID})

	n.readLoop(ctx, conn)
}

// Disconnect intentionally closes the session: it sends close code 1000,
// cancels any pending reconnect timer, and retains the session id only
// if a resume key is configured.
func (n *Node) Disconnect(ctx context.Context) error {
	n.mu.Lock()
	n.closing = true
	conn := n.conn
	timer := n.reconnectTimer
	n.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}

	var err error
	if conn != nil {
		err = conn.Close(websocket.StatusNormalClosure, "disconnect")
	}

	n.mu.Lock()
	if n.cfg.ResumeKey == "" {
		n.sessionID = ""
	}
	n.conn = nil
	n.mu.Unlock()

	n.setState(Disconnected)
	n.bus.Emit(string(EventDisconnect), Event{NodeID: n.cfg.ID})
	return err
}

func (n *Node) scheduleReconnect(ctx context.Context) {
	n.mu.Lock()
	if n.closing {
		n.mu.Unlock()
		return
	}
	n.reconnectAttempts++
	attempt := n.reconnectAttempts
	n.mu.Unlock()

	if attempt > n.cfg.MaxReconnectAttempts {
		n.setState(Disconnected)
		n.bus.Emit(string(EventError), Event{NodeID: n.cfg.ID, Err: lavalink.ErrMaxReconnect})
		return
	}

	n.setState(Reconnecting)
	n.metrics.IncReconnects(n.cfg.ID)
	delay := backoffDelay(n.cfg.ReconnectBaseDelay, attempt)

	timer := time.AfterFunc(delay, func() {
		n.setState(Connecting)
		n.connectLoop(ctx)
	})

	n.mu.Lock()
	n.reconnectTimer = timer
	n.mu.Unlock()
}

func (n *Node) handleClose(ctx context.Context, err error) {
	n.mu.Lock()
	closing := n.closing
	n.conn = nil
	n.mu.Unlock()

	n.bus.Emit(string(EventDisconnect), Event{NodeID: n.cfg.ID, Err: err})

	if closing {
		return
	}

	code := websocket.CloseStatus(err)
	if code == websocket.StatusNormalClosure {
		n.mu.Lock()
		if n.cfg.ResumeKey == "" {
			n.sessionID = ""
		}
		n.mu.Unlock()
		n.setState(Disconnected)
		return
	}

	n.scheduleReconnect(ctx)
}

func (n *Node) userAgent() string {
	return n.cfg.UserAgent
}
