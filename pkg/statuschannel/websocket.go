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
package statuschannel

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeWriteWait = time.Second

// WebSocketDialer dials the backend's /ws endpoint.
type WebSocketDialer struct {
	dialer *websocket.Dialer
	header http.Header
}

// NewWebSocketDialer creates a dialer that sends headers on every handshake.
// A nil tlsConfig uses the system defaults.
func NewWebSocketDialer(headers map[string]string, tlsConfig *tls.Config) *WebSocketDialer {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	d := *websocket.DefaultDialer
	d.TLSClientConfig = tlsConfig
	return &WebSocketDialer{dialer: &d, header: h}
}

// Dial implements Dialer.
func (d *WebSocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, url, d.header)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// Read returns the next text or binary frame. Closing the connection unblocks
// a pending Read.
func (c *wsConn) Read(_ context.Context) ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
