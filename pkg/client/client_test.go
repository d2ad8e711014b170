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
package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teradata-labs/tripweave/pkg/trip"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

type fakeBackend struct {
	t   *testing.T
	mux *http.ServeMux
	srv *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{t: t, mux: http.NewServeMux()}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		if r.Body != nil && r.ContentLength != 0 {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		b.mu.Lock()
		b.requests = append(b.requests, rec)
		b.mu.Unlock()
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) handle(pattern string, status int, body string) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (b *fakeBackend) last() recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(b.t, b.requests)
	return b.requests[len(b.requests)-1]
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *fakeBackend) client() *Client {
	c, err := NewClient(Config{ServerAddr: b.srv.URL, Logger: zaptest.NewLogger(b.t)})
	require.NoError(b.t, err)
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultServerAddr, c.BaseURL())
	assert.Zero(t, c.HTTPClient().Timeout)
	assert.Nil(t, c.TLSConfig())

	c, err = NewClient(Config{ServerAddr: "example.com:9000/"})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:9000", c.BaseURL())

	c, err = NewClient(Config{ServerAddr: "http://example.com", TLSEnabled: true, TLSInsecure: true})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", c.BaseURL())
	require.NotNil(t, c.TLSConfig())
	assert.True(t, c.TLSConfig().InsecureSkipVerify)

	_, err = NewClient(Config{ServerAddr: "ftp://example.com"})
	assert.Error(t, err)
}

func TestCreateTLSConfig(t *testing.T) {
	cfg, err := createTLSConfig(Config{TLSInsecure: true})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)

	cfg, err = createTLSConfig(Config{TLSServerName: "api.internal"})
	require.NoError(t, err)
	assert.Equal(t, "api.internal", cfg.ServerName)
	assert.NotNil(t, cfg.RootCAs)

	_, err = createTLSConfig(Config{TLSCAFile: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a cert"), 0o600))
	_, err = createTLSConfig(Config{TLSCAFile: bad})
	assert.Error(t, err)
}

func TestPlanTripNewSession(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("POST /plan_trip_with_session", http.StatusOK,
		`{"session_id":"s1","trip_plan":{"destination":"Lisbon","days":[{"day":1}],"total_cost":1234.5}}`)

	q := trip.DefaultQuery()
	q.Destination = "Lisbon"
	q.Days = 5
	q.Travelers = 2
	q.Currency = "EUR"

	result, err := b.client().PlanTrip(context.Background(), q, "client-1", "")
	require.NoError(t, err)
	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, "Lisbon", result.Plan.Destination)

	var payload map[string]any
	require.NoError(t, result.Plan.Decode(&payload))
	assert.Equal(t, 1234.5, payload["total_cost"])

	req := b.last()
	assert.Empty(t, req.Query, "no session_id when starting a new session")
	assert.Equal(t, "Lisbon", req.Body["destination"])
	assert.Equal(t, float64(5), req.Body["days"])
	assert.Equal(t, float64(2), req.Body["travelers"])
	assert.Equal(t, "EUR", req.Body["currency"])
	assert.Equal(t, false, req.Body["strict_budget"])
	assert.Equal(t, "client-1", req.Body["client_id"])
	assert.Equal(t, "Plan a trip to Lisbon", req.Body["query"])
}

func TestPlanTripContinuesSession(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("POST /plan_trip_with_session", http.StatusOK,
		`{"session_id":"s9","trip_plan":{"destination":"Porto"}}`)

	q := trip.DefaultQuery()
	q.Destination = "Porto"

	result, err := b.client().PlanTrip(context.Background(), q, "client-1", "s9")
	require.NoError(t, err)
	assert.Equal(t, "s9", result.SessionID)
	assert.Equal(t, "session_id=s9", b.last().Query)
}

func TestPlanTripFailuresAreOpaque(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`},
		{"validation error", http.StatusUnprocessableEntity, `{"detail":[]}`},
		{"not json", http.StatusOK, `<html>gateway</html>`},
		{"missing session id", http.StatusOK, `{"trip_plan":{"destination":"Lisbon"}}`},
		{"missing plan", http.StatusOK, `{"session_id":"s1"}`},
		{"plan not an object", http.StatusOK, `{"session_id":"s1","trip_plan":"Lisbon"}`},
		{"destination not a string", http.StatusOK, `{"session_id":"s1","trip_plan":{"destination":7}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBackend(t)
			b.handle("POST /plan_trip_with_session", tt.status, tt.body)

			q := trip.DefaultQuery()
			q.Destination = "Lisbon"
			result, err := b.client().PlanTrip(context.Background(), q, "c", "")
			assert.Nil(t, result)
			require.Error(t, err)
			assert.True(t, IsPlanningFailure(err))
			assert.Equal(t, 1, b.count(), "exactly one round trip")
		})
	}
}

func TestPlanTripTransportFailure(t *testing.T) {
	b := newFakeBackend(t)
	c := b.client()
	b.srv.Close()

	q := trip.DefaultQuery()
	q.Destination = "Lisbon"
	_, err := c.PlanTrip(context.Background(), q, "c", "")
	require.Error(t, err)

	var pf *PlanningFailure
	require.True(t, errors.As(err, &pf))
	assert.NotNil(t, pf.Unwrap())
}

func TestPlanTripRejectsEmptyDestination(t *testing.T) {
	b := newFakeBackend(t)

	_, err := b.client().PlanTrip(context.Background(), trip.DefaultQuery(), "c", "")
	require.Error(t, err)
	assert.True(t, IsPlanningFailure(err))
	assert.ErrorIs(t, err, trip.ErrEmptyDestination)
	assert.Zero(t, b.count(), "request never leaves the client")
}

func TestPlanTripHonoursContext(t *testing.T) {
	b := newFakeBackend(t)
	release := make(chan struct{})
	defer close(release)
	b.mux.HandleFunc("POST /plan_trip_with_session", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	q := trip.DefaultQuery()
	q.Destination = "Lisbon"
	_, err := b.client().PlanTrip(ctx, q, "c", "")
	require.Error(t, err)
	assert.True(t, IsPlanningFailure(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListSessions(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("GET /sessions", http.StatusOK, `{"sessions":[
		{"id":"s2","title":"Trip to Porto","destination":"Porto","created_at":"2026-01-02 10:00:00","updated_at":"2026-01-02 11:00:00"},
		{"id":"s1","title":"Trip to Lisbon","destination":null,"created_at":"2026-01-01 10:00:00","updated_at":"2026-01-01 10:00:00"}
	]}`)

	sessions, err := b.client().ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s2", sessions[0].ID)
	assert.Equal(t, "Porto", sessions[0].Destination)
	assert.Empty(t, sessions[1].Destination)
}

func TestGetSession(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("GET /sessions/s1", http.StatusOK, `{
		"session": {"id":"s1","title":"Trip to Lisbon"},
		"messages": [
			{"id":1,"session_id":"s1","role":"user","content":"Plan a trip to Lisbon","user_query":{"destination":"Lisbon","days":5}},
			{"id":2,"session_id":"s1","role":"assistant","content":"done","trip_plan":{"destination":"Lisbon"}}
		]}`)
	b.handle("GET /sessions/missing", http.StatusNotFound, `{"detail":"Session not found"}`)

	c := b.client()
	record, err := c.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", record.Session.ID)
	require.NotNil(t, record.LatestPlan())
	assert.Equal(t, "Lisbon", record.LatestPlan().Destination)

	_, err = c.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetSession(context.Background(), "")
	assert.Error(t, err)
}

func TestGetSessionServerError(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("GET /sessions/s1", http.StatusBadGateway, `upstream down`)

	_, err := b.client().GetSession(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.True(t, IsStatus(err, http.StatusBadGateway))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Error(), "upstream down")
}

func TestCreateSession(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("POST /sessions", http.StatusOK, `{"id":"s3","title":"Weekend","destination":null}`)

	c := b.client()
	session, err := c.CreateSession(context.Background(), "Weekend", "")
	require.NoError(t, err)
	assert.Equal(t, "s3", session.ID)

	req := b.last()
	assert.Equal(t, "Weekend", req.Body["title"])
	assert.Nil(t, req.Body["destination"])

	_, err = c.CreateSession(context.Background(), "Weekend", "Rome")
	require.NoError(t, err)
	assert.Equal(t, "Rome", b.last().Body["destination"])
}

func TestDeleteSession(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("DELETE /sessions/s1", http.StatusOK, `{"message":"Session deleted"}`)
	b.handle("DELETE /sessions/gone", http.StatusNotFound, `{"detail":"Session not found"}`)
	b.handle("DELETE /sessions/broken", http.StatusInternalServerError, ``)

	c := b.client()
	assert.NoError(t, c.DeleteSession(context.Background(), "s1"))
	assert.NoError(t, c.DeleteSession(context.Background(), "gone"))
	assert.Error(t, c.DeleteSession(context.Background(), "broken"))
}

func TestMemories(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("GET /memories", http.StatusOK, `{"memories":[
		{"id":1,"memory_type":"preference","content":"Prefers window seats","confidence":0.9,"created_at":"2026-01-01 10:00:00"}
	]}`)
	b.handle("POST /memories", http.StatusOK, `{"id":2,"memory_type":"budget","content":"Mid-range","confidence":1.0}`)
	b.handle("DELETE /memories/1", http.StatusOK, `{"message":"Memory deleted"}`)
	b.handle("DELETE /memories/99", http.StatusNotFound, `{"detail":"Memory not found"}`)
	b.handle("DELETE /memories", http.StatusOK, `{"message":"Cleared 2 memories"}`)

	c := b.client()
	ctx := context.Background()

	memories, err := c.ListMemories(ctx, "")
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "Prefers window seats", memories[0].Content)
	assert.Empty(t, b.last().Query)

	_, err = c.ListMemories(ctx, "preference")
	require.NoError(t, err)
	assert.Equal(t, "memory_type=preference", b.last().Query)

	m, err := c.CreateMemory(ctx, "budget", "Mid-range")
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.ID)
	assert.Equal(t, "budget", b.last().Body["memory_type"])

	assert.NoError(t, c.DeleteMemory(ctx, 1))
	assert.NoError(t, c.DeleteMemory(ctx, 99))
	assert.NoError(t, c.ClearMemories(ctx))
	assert.Equal(t, "/memories", b.last().Path)
}

func TestGetHealth(t *testing.T) {
	b := newFakeBackend(t)
	b.handle("GET /{$}", http.StatusOK, `{"message":"Travel Agent API is running"}`)

	h, err := b.client().GetHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Travel Agent API is running", h.Message)
}

func TestHeadersAreSent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"sessions":[]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{ServerAddr: srv.URL, Headers: map[string]string{"Authorization": "Bearer t"}})
	require.NoError(t, err)
	_, err = c.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t", got)
}
