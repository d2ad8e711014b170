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
package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/tripweave/pkg/orchestrator"
	"github.com/teradata-labs/tripweave/pkg/trip"
)

const lisbonPlan = `{
	"destination": "Lisbon",
	"flights": [{"airline":"TAP","price":"EUR 180","departure":"08:00","arrival":"11:00","duration":"3h"}],
	"hotels": [{"name":"Casa do Rio","price_per_night":"EUR 120","rating":4.5,"description":"","amenities":[]}],
	"visa": {"country":"Portugal","required":false,"requirements":[],"processing_time":"n/a"},
	"itinerary": [{"day":1,"activities":[{"name":"Alfama walk","description":"","price":"free","duration":"2h"}]}],
	"total_budget": "EUR 1,240",
	"preferred_currency": "EUR"
}`

// testBackend is a minimal travel agent backend.
type testBackend struct {
	srv *httptest.Server

	mu          sync.Mutex
	planQueries []string
	failPlans   bool
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /plan_trip_with_session", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.planQueries = append(b.planQueries, r.URL.RawQuery)
		fail := b.failPlans
		b.mu.Unlock()

		if fail {
			http.Error(w, `{"detail":"planner crashed"}`, http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"session_id":"s1","trip_plan":` + lisbonPlan + `}`))
	})
	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sessions":[
			{"id":"s1","title":"Trip to Lisbon","destination":"Lisbon","created_at":"2026-01-02 10:00:00","updated_at":"2026-01-02 10:05:00"},
			{"id":"s2","title":"","created_at":"2026-01-01 09:00:00","updated_at":"2026-01-01 09:00:00"}
		]}`))
	})
	mux.HandleFunc("GET /sessions/s1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"session": {"id":"s1","title":"Trip to Lisbon","destination":"Lisbon","created_at":"2026-01-02 10:00:00"},
			"messages": [
				{"id":1,"session_id":"s1","role":"user","content":"Plan a trip to Lisbon","user_query":{"destination":"Lisbon","days":4,"currency":"EUR"}},
				{"id":2,"session_id":"s1","role":"assistant","content":"Here is your plan","trip_plan":` + lisbonPlan + `}
			]}`))
	})
	mux.HandleFunc("GET /sessions/empty", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"session":{"id":"empty"},"messages":[]}`))
	})
	mux.HandleFunc("DELETE /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"deleted"}`))
	})
	mux.HandleFunc("GET /memories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"memories":[{"id":7,"memory_type":"preference","content":"Prefers window seats","confidence":0.9}]}`))
	})
	mux.HandleFunc("POST /memories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":8,"memory_type":"preference","content":"Likes trains","confidence":1}`))
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Travel Agent API is running"}`))
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *testBackend) queries() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.planQueries...)
}

// setupCLI points the CLI at backend with an isolated data directory and
// returns that directory.
func setupCLI(t *testing.T, b *testBackend) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv("TRIPWEAVE_DATA_DIR", dataDir)
	t.Setenv("TRIPWEAVE_SERVER_ADDR", b.srv.URL)
	t.Setenv("TRIPWEAVE_MIRROR_BACKEND", "file")
	viper.Reset()
	t.Cleanup(viper.Reset)
	return dataDir
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgFile = ""
	outputJSON = false
	planFresh = false
	planOrigin, planDates, planTravelTime = "", "", ""
	planDays, planTravelers = trip.DefaultDays, trip.DefaultTravelers
	planCurrency = trip.DefaultCurrency
	planStrictBudget = false
	memoryTypeFilter = ""
	configForce = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestPlanResumeNewTrip(t *testing.T) {
	b := newTestBackend(t)
	dataDir := setupCLI(t, b)

	out, err := runCLI(t, "plan", "Lisbon", "--days", "4", "--currency", "EUR")
	require.NoError(t, err)
	assert.Contains(t, out, "Planning your trip to Lisbon")
	assert.Contains(t, out, "Trip to Lisbon")
	assert.Contains(t, out, "Session: s1")
	assert.Contains(t, out, "EUR 1,240")
	assert.Contains(t, out, "Casa do Rio")
	assert.Contains(t, out, "Day 1: Alfama walk")

	mirrorFile := filepath.Join(dataDir, "session.json")
	data, err := os.ReadFile(mirrorFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"s1"`)

	// A fresh process picks the mirrored session back up.
	out, err = runCLI(t, "resume")
	require.NoError(t, err)
	assert.Contains(t, out, "Restoring session s1")
	assert.Contains(t, out, "Trip to Lisbon")

	// Planning again refines the same session.
	_, err = runCLI(t, "plan", "Porto")
	require.NoError(t, err)
	queries := b.queries()
	require.Len(t, queries, 2)
	assert.Empty(t, queries[0])
	assert.Equal(t, "session_id=s1", queries[1])

	out, err = runCLI(t, "new")
	require.NoError(t, err)
	assert.Contains(t, out, "Started a new trip")
	_, err = os.Stat(mirrorFile)
	assert.True(t, os.IsNotExist(err), "mirror should be erased")

	out, err = runCLI(t, "resume")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to resume")
}

func TestPlanNewFlagStartsFreshSession(t *testing.T) {
	b := newTestBackend(t)
	setupCLI(t, b)

	_, err := runCLI(t, "plan", "Lisbon")
	require.NoError(t, err)
	_, err = runCLI(t, "plan", "Lisbon", "--new")
	require.NoError(t, err)

	queries := b.queries()
	require.Len(t, queries, 2)
	assert.Empty(t, queries[1], "--new must not send the old session")
}

func TestPlanJSONOutput(t *testing.T) {
	b := newTestBackend(t)
	setupCLI(t, b)

	out, err := runCLI(t, "plan", "Lisbon", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"session_id": "s1"`)
	assert.Contains(t, out, `"trip_plan": {`)
	assert.Contains(t, out, `"preferred_currency": "EUR"`)
}

func TestPlanFailureShowsGenericError(t *testing.T) {
	b := newTestBackend(t)
	b.failPlans = true
	dataDir := setupCLI(t, b)

	out, err := runCLI(t, "plan", "Lisbon")
	require.Error(t, err)
	assert.Equal(t, orchestrator.GenericError, err.Error())
	assert.NotContains(t, out, "planner crashed")

	_, statErr := os.Stat(filepath.Join(dataDir, "session.json"))
	assert.True(t, os.IsNotExist(statErr), "a failed plan does not create a session mirror")
}

func TestPlanRejectsBlankDestination(t *testing.T) {
	b := newTestBackend(t)
	setupCLI(t, b)

	_, err := runCLI(t, "plan", "  ")
	require.ErrorIs(t, err, trip.ErrEmptyDestination)
	assert.Empty(t, b.queries())
}

func TestSessionsCommands(t *testing.T) {
	b := newTestBackend(t)
	dataDir := setupCLI(t, b)

	out, err := runCLI(t, "sessions", "open", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Trip to Lisbon")

	out, err = runCLI(t, "sessions", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* s1")
	assert.Contains(t, out, "untitled")
	assert.Contains(t, out, "Showing 2 session(s)")

	out, err = runCLI(t, "sessions", "show", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Session: s1")
	assert.Contains(t, out, "Messages: 2")
	assert.Contains(t, out, "[trip plan]")

	out, err = runCLI(t, "sessions", "open", "empty")
	require.NoError(t, err)
	assert.Contains(t, out, "has no trip plan yet")

	out, err = runCLI(t, "sessions", "delete", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted session: s1")
	_, err = os.Stat(filepath.Join(dataDir, "session.json"))
	assert.True(t, os.IsNotExist(err), "deleting the current session forgets it")
}

func TestMemoriesCommands(t *testing.T) {
	b := newTestBackend(t)
	setupCLI(t, b)

	out, err := runCLI(t, "memories", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Prefers window seats")
	assert.Contains(t, out, "0.90")

	out, err = runCLI(t, "memories", "add", "preference", "Likes", "trains")
	require.NoError(t, err)
	assert.Contains(t, out, "Added memory 8")

	_, err = runCLI(t, "memories", "delete", "abc")
	assert.Error(t, err)
}

func TestHealthCommand(t *testing.T) {
	b := newTestBackend(t)
	setupCLI(t, b)

	out, err := runCLI(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, b.srv.URL)
	assert.Contains(t, out, "Travel Agent API is running")
}

func TestConfigInitAndGet(t *testing.T) {
	b := newTestBackend(t)
	dataDir := setupCLI(t, b)

	out, err := runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dataDir, "tripweave.yaml"))

	_, err = runCLI(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	out, err = runCLI(t, "config", "set", "status.transport", "sse")
	require.NoError(t, err)
	assert.Contains(t, out, "Set status.transport = sse")

	out, err = runCLI(t, "config", "get", "status.transport")
	require.NoError(t, err)
	assert.Equal(t, "status.transport: sse", strings.TrimSpace(out))

	out, err = runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Transport: sse")
}
