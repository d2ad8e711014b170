// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package statuschannel keeps a push connection open to the planning backend
// and turns the progress events it receives into status and step callbacks.
//
// Progress events are advisory. A subscription reconnects forever with a
// fixed delay, since the backend may restart independently of the client,
// and nothing downstream may wait on an event arriving.
package statuschannel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/tripweave/pkg/trip"
)

// DefaultReconnectDelay is the fixed wait between a disconnect and the next dial.
const DefaultReconnectDelay = 2 * time.Second

// Supported transports.
const (
	TransportWebSocket = "websocket"
	TransportSSE       = "sse"
)

// Handlers receive decoded progress. Either may be nil.
type Handlers struct {
	OnStatus func(status string)
	OnStep   func(index int)
}

// CloseFunc tears a subscription down. It is safe to call more than once.
type CloseFunc func()

// Conn is one live push connection.
type Conn interface {
	// Read blocks until the next message payload or a transport error.
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens push connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Config configures a Channel.
type Config struct {
	BaseURL        string            // backend address, e.g. http://localhost:8000
	Transport      string            // websocket (default) or sse
	ReconnectDelay time.Duration     // default: 2s
	Headers        map[string]string // sent on every dial
	TLSConfig      *tls.Config       // for wss:// and https:// backends
	Dialer         Dialer            // overrides the transport's dialer
	Logger         *zap.Logger
}

// Channel opens status subscriptions. It holds no per-subscription state, so
// one Channel can serve any number of independent subscriptions.
type Channel struct {
	base      string
	transport string
	delay     time.Duration
	dialer    Dialer
	logger    *zap.Logger
}

// New creates a Channel.
func New(cfg Config) (*Channel, error) {
	if cfg.Transport == "" {
		cfg.Transport = TransportWebSocket
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := normalizeBase(cfg.BaseURL, cfg.Transport)
	if err != nil {
		return nil, err
	}

	dialer := cfg.Dialer
	if dialer == nil {
		switch cfg.Transport {
		case TransportWebSocket:
			dialer = NewWebSocketDialer(cfg.Headers, cfg.TLSConfig)
		case TransportSSE:
			var httpClient *http.Client
			if cfg.TLSConfig != nil {
				transport := http.DefaultTransport.(*http.Transport).Clone()
				transport.TLSClientConfig = cfg.TLSConfig
				httpClient = &http.Client{Transport: transport}
			}
			dialer = NewSSEDialer(cfg.Headers, httpClient)
		}
	}

	return &Channel{
		base:      base,
		transport: cfg.Transport,
		delay:     cfg.ReconnectDelay,
		dialer:    dialer,
		logger:    logger,
	}, nil
}

// URL returns the address a subscription for clientID connects to.
func (c *Channel) URL(clientID string) string {
	segment := "ws"
	if c.transport == TransportSSE {
		segment = "events"
	}
	return fmt.Sprintf("%s/%s/%s", c.base, segment, url.PathEscape(clientID))
}

// Open starts a subscription for clientID and returns its close handle.
func (c *Channel) Open(clientID string, h Handlers) CloseFunc {
	return c.Subscribe(clientID, h).Close
}

// Subscribe starts a subscription for clientID. The first dial happens
// asynchronously.
func (c *Channel) Subscribe(clientID string, h Handlers) *Subscription {
	s := &Subscription{
		channel:  c,
		url:      c.URL(clientID),
		handlers: h,
		logger:   c.logger.With(zap.String("client_id", clientID)),
		done:     make(chan struct{}),
	}
	go s.connect()
	return s
}

// Stats counts activity on one subscription.
type Stats struct {
	Dials      int
	Reconnects int
	Events     int
}

// Subscription is one client's push connection and its reconnect timer.
// At most one of conn and timer is set at any instant.
type Subscription struct {
	channel  *Channel
	url      string
	handlers Handlers
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
	conn   Conn
	cancel context.CancelFunc
	timer  *time.Timer
	stats  Stats
	done   chan struct{}
}

// Stats returns a snapshot of the subscription counters.
func (s *Subscription) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Connected reports whether a connection is currently open.
func (s *Subscription) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Done is closed once Close has run.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close cancels a pending reconnect, aborts an in-flight dial and closes an
// open connection. Later calls do nothing.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cancel, conn := s.cancel, s.conn
	s.cancel, s.conn = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	close(s.done)
	s.logger.Debug("status subscription closed")
}

func (s *Subscription) connect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stats.Dials++
	s.mu.Unlock()

	conn, err := s.channel.dialer.Dial(ctx, s.url)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		s.cancel = nil
		s.mu.Unlock()
		cancel()
		s.logger.Debug("status channel dial failed", zap.String("url", s.url), zap.Error(err))
		s.scheduleReconnect()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.logger.Debug("connected to status channel", zap.String("url", s.url))
	go s.readLoop(ctx, conn)
}

func (s *Subscription) readLoop(ctx context.Context, conn Conn) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			s.drop(conn, err)
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.stats.Events++
		s.mu.Unlock()

		s.dispatch(data)
	}
}

// drop force-closes a failed connection and takes the reconnect path.
func (s *Subscription) drop(conn Conn, cause error) {
	s.mu.Lock()
	var cancel context.CancelFunc
	if s.conn == conn {
		s.conn = nil
		cancel = s.cancel
		s.cancel = nil
	}
	closed := s.closed
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	_ = conn.Close()

	if closed {
		return
	}
	s.logger.Debug("disconnected from status channel, retrying",
		zap.Duration("delay", s.channel.delay), zap.Error(cause))
	s.scheduleReconnect()
}

func (s *Subscription) scheduleReconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.timer != nil {
		return
	}
	s.stats.Reconnects++
	s.timer = time.AfterFunc(s.channel.delay, s.connect)
}

// dispatch is the single place a payload becomes callbacks.
func (s *Subscription) dispatch(data []byte) {
	ev, err := trip.ParseProgressEvent(data)
	if err != nil {
		s.logger.Debug("dropping malformed progress event", zap.Error(err))
		return
	}
	Dispatch(ev, s.handlers)
}

// Dispatch routes one progress event to the handlers. Unknown step names are
// ignored.
func Dispatch(ev trip.ProgressEvent, h Handlers) {
	if ev.Status != "" && h.OnStatus != nil {
		h.OnStatus(ev.Status)
	}
	if idx, ok := ev.StepIndex(); ok && h.OnStep != nil {
		h.OnStep(idx)
	}
}

// normalizeBase maps the backend address onto the scheme the transport needs.
func normalizeBase(base, transport string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("status channel base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid status channel base URL %q: %w", base, err)
	}

	switch transport {
	case TransportWebSocket:
		switch u.Scheme {
		case "http", "":
			u.Scheme = "ws"
		case "https":
			u.Scheme = "wss"
		}
	case TransportSSE:
		switch u.Scheme {
		case "ws", "":
			u.Scheme = "http"
		case "wss":
			u.Scheme = "https"
		}
	default:
		return "", fmt.Errorf("unknown status transport %q (want %s or %s)",
			transport, TransportWebSocket, TransportSSE)
	}
	return u.String(), nil
}
