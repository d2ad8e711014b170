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

// Package client talks to the trip planning backend over HTTP: plan requests,
// session storage and the memory store.
//
// Calls are single round trips with no retries and no caching. Deadlines come
// from the caller's context.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultServerAddr is the backend address used when none is configured.
const DefaultServerAddr = "http://localhost:8000"

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// ErrNotFound is wrapped by errors for unknown sessions.
var ErrNotFound = errors.New("not found")

// APIError is returned for any non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), body)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Client wraps the backend's HTTP API.
type Client struct {
	http    *http.Client
	tls     *tls.Config
	base    *url.URL
	logger  *zap.Logger
	headers map[string]string
}

// Config holds client configuration.
type Config struct {
	ServerAddr string        // Default: http://localhost:8000
	Timeout    time.Duration // Default: none, use context deadlines

	// TLS configuration
	TLSEnabled    bool   // Force https even if ServerAddr says http
	TLSInsecure   bool   // Skip TLS certificate verification (for self-signed certs)
	TLSCAFile     string // Path to CA certificate file
	TLSServerName string // Override TLS server name (for testing)

	Headers map[string]string // Sent with every request
	Logger  *zap.Logger
}

// NewClient creates a new backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = DefaultServerAddr
	}
	if !strings.Contains(cfg.ServerAddr, "://") {
		cfg.ServerAddr = "http://" + cfg.ServerAddr
	}

	base, err := url.Parse(strings.TrimRight(cfg.ServerAddr, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server address %q: %w", cfg.ServerAddr, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q in server address", base.Scheme)
	}
	if cfg.TLSEnabled {
		base.Scheme = "https"
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	var tlsConfig *tls.Config
	if base.Scheme == "https" {
		tlsConfig, err = createTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		transport.TLSClientConfig = tlsConfig
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		http:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		tls:     tlsConfig,
		base:    base,
		logger:  logger,
		headers: cfg.Headers,
	}, nil
}

// createTLSConfig creates a TLS configuration based on the provided config.
func createTLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	if cfg.TLSInsecure {
		tlsConfig.InsecureSkipVerify = true
		return tlsConfig, nil
	}

	certPool, err := x509.SystemCertPool()
	if err != nil {
		certPool = x509.NewCertPool()
	}

	if cfg.TLSCAFile != "" {
		caCert, err := os.ReadFile(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		if !certPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
	}

	tlsConfig.RootCAs = certPool

	if cfg.TLSServerName != "" {
		tlsConfig.ServerName = cfg.TLSServerName
	}

	return tlsConfig, nil
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// HTTPClient returns the underlying HTTP client.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// TLSConfig returns the TLS settings in use, or nil for plain http. The
// status channel dials with the same settings.
func (c *Client) TLSConfig() *tls.Config {
	return c.tls
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Health is the backend's liveness response.
type Health struct {
	Message string `json:"message"`
}

// GetHealth checks that the backend is reachable.
func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/", nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// do performs one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	raw, err := c.doRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// doRaw performs one request and returns the response body.
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}
