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
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/r3labs/sse/v2"
	"gopkg.in/cenkalti/backoff.v1"
)

// SSEDialer subscribes to the backend's /events stream. Retries are left to
// the Subscription so both transports share one reconnect policy.
type SSEDialer struct {
	headers    map[string]string
	httpClient *http.Client
}

// NewSSEDialer creates an SSE dialer. A nil httpClient uses the library default.
func NewSSEDialer(headers map[string]string, httpClient *http.Client) *SSEDialer {
	return &SSEDialer{headers: headers, httpClient: httpClient}
}

// Dial implements Dialer. The stream request is made in the background;
// connection errors surface from the first Read.
func (d *SSEDialer) Dial(ctx context.Context, url string) (Conn, error) {
	client := sse.NewClient(url)
	client.ReconnectStrategy = &backoff.StopBackOff{}
	for k, v := range d.headers {
		client.Headers[k] = v
	}
	if d.httpClient != nil {
		client.Connection = d.httpClient
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &sseConn{
		events: make(chan []byte, 16),
		cancel: cancel,
	}

	go func() {
		err := client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
			if msg == nil || len(msg.Data) == 0 {
				return
			}
			select {
			case c.events <- bytes.Clone(msg.Data):
			case <-ctx.Done():
			}
		})
		if err == nil {
			err = io.EOF
		}
		c.err = err
		close(c.events)
	}()

	return c, nil
}

// sseConn delivers every buffered event before the terminal error. err is
// written before events is closed.
type sseConn struct {
	events    chan []byte
	err       error
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (c *sseConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case data, ok := <-c.events:
		if !ok {
			return nil, c.err
		}
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *sseConn) Close() error {
	c.closeOnce.Do(c.cancel)
	return nil
}
