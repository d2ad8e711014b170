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

// Package orchestrator owns the planning session state machine. It joins
// plan requests, session restoration and live progress into one observable
// State.
//
// Phases move Idle -> Submitting -> Settled|Failed, or Idle -> Restoring ->
// Settled|Idle. NewTrip returns to Idle from anywhere. The terminal phase of a
// request never depends on progress events having arrived.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teradata-labs/tripweave/internal/pubsub"
	"github.com/teradata-labs/tripweave/pkg/client"
	"github.com/teradata-labs/tripweave/pkg/mirror"
	"github.com/teradata-labs/tripweave/pkg/statuschannel"
	"github.com/teradata-labs/tripweave/pkg/trip"
)

// Phase is the orchestrator's lifecycle position.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseRestoring  Phase = "restoring"
	PhaseSettled    Phase = "settled"
	PhaseFailed     Phase = "failed"
)

// GenericError is the only error text ever exposed in State.
const GenericError = "Something went wrong. Please try again."

// Defaults for Config.
const (
	DefaultPlanTimeout    = 5 * time.Minute
	DefaultRestoreTimeout = 30 * time.Second
)

var (
	// ErrBusy is returned by Submit while a request or restoration is running.
	ErrBusy = errors.New("a planning request is already in progress")
	// ErrSuperseded is returned by Submit when NewTrip discarded its response.
	ErrSuperseded = errors.New("planning request superseded")
	// ErrClosed is returned once the orchestrator has been closed.
	ErrClosed = errors.New("orchestrator closed")
)

// Navigation tells the presentation layer where to go after a mount.
type Navigation int

const (
	NavigateNone Navigation = iota
	NavigateSearch
)

func (n Navigation) String() string {
	if n == NavigateSearch {
		return "search"
	}
	return "none"
}

// Outcome is the result of a settled planning attempt.
type Outcome struct {
	Plan *trip.Plan
}

// State is a snapshot of the orchestrator.
type State struct {
	Phase            Phase
	Query            trip.Query
	SessionID        string
	Outcome          *Outcome
	CurrentStepIndex int
	StatusMessage    string
	Error            string
}

// Planner issues plan requests.
type Planner interface {
	PlanTrip(ctx context.Context, q trip.Query, clientID, sessionID string) (*trip.PlanResult, error)
}

// SessionFetcher loads persisted sessions.
type SessionFetcher interface {
	GetSession(ctx context.Context, sessionID string) (*trip.SessionRecord, error)
}

// StatusOpener opens a progress subscription.
type StatusOpener interface {
	Open(clientID string, h statuschannel.Handlers) statuschannel.CloseFunc
}

// Config configures an Orchestrator.
type Config struct {
	ClientID       string        // Default: random UUID
	PlanTimeout    time.Duration // Default: 5m, negative disables
	RestoreTimeout time.Duration // Default: 30s, negative disables
	Logger         *zap.Logger
}

// Deps are the orchestrator's collaborators. Status and Mirror may be nil.
type Deps struct {
	Planner  Planner
	Sessions SessionFetcher
	Status   StatusOpener
	Mirror   mirror.Store
}

// Orchestrator is the session state machine. All methods are safe for
// concurrent use.
type Orchestrator struct {
	cfg      Config
	deps     Deps
	clientID string
	logger   *zap.Logger
	broker   *pubsub.Broker[State]

	mu          sync.Mutex
	state       State
	generation  uint64
	cancel      context.CancelFunc
	mounted     bool
	closed      bool
	closeStatus statuschannel.CloseFunc
}

// New creates an Orchestrator in the Idle phase.
func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.New().String()
	}
	if cfg.PlanTimeout == 0 {
		cfg.PlanTimeout = DefaultPlanTimeout
	}
	if cfg.RestoreTimeout == 0 {
		cfg.RestoreTimeout = DefaultRestoreTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		cfg:      cfg,
		deps:     deps,
		clientID: cfg.ClientID,
		logger:   logger.With(zap.String("client_id", cfg.ClientID)),
		broker:   pubsub.NewBroker[State](),
		state:    State{Phase: PhaseIdle},
	}
}

// ClientID returns the identifier that correlates progress events with this
// orchestrator's requests.
func (o *Orchestrator) ClientID() string {
	return o.clientID
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe delivers a snapshot after every state change until ctx is done.
func (o *Orchestrator) Subscribe(ctx context.Context) <-chan pubsub.Event[State] {
	return o.broker.Subscribe(ctx)
}

// Start opens the progress subscription. Calling it again is a no-op.
func (o *Orchestrator) Start() {
	o.mu.Lock()
	if o.closed || o.closeStatus != nil || o.deps.Status == nil {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	closeFn := o.deps.Status.Open(o.clientID, statuschannel.Handlers{
		OnStatus: o.onStatus,
		OnStep:   o.onStep,
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.closeStatus != nil {
		closeFn()
		return
	}
	o.closeStatus = closeFn
}

// Close stops the progress subscription and abandons any in-flight request.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.generation++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	closeStatus := o.closeStatus
	o.closeStatus = nil
	o.mu.Unlock()

	if closeStatus != nil {
		closeStatus()
	}
	o.broker.Shutdown()
}

// Submit validates q and runs one plan request, continuing the current
// session if there is one. It blocks until the request settles.
func (o *Orchestrator) Submit(ctx context.Context, q trip.Query) error {
	if err := q.Validate(); err != nil {
		return err
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.state.Phase == PhaseSubmitting || o.state.Phase == PhaseRestoring {
		o.mu.Unlock()
		return ErrBusy
	}

	o.generation++
	gen := o.generation
	reqCtx, cancel := withTimeout(ctx, o.cfg.PlanTimeout)
	o.cancel = cancel

	o.state.Phase = PhaseSubmitting
	o.state.Query = q
	o.state.Outcome = nil
	o.state.Error = ""
	o.state.CurrentStepIndex = 0
	o.state.StatusMessage = ""
	sessionID := o.state.SessionID
	o.publishLocked()
	o.mu.Unlock()

	o.logger.Info("submitting plan request",
		zap.String("destination", q.Destination),
		zap.String("session_id", sessionID))

	result, err := o.deps.Planner.PlanTrip(reqCtx, q, o.clientID, sessionID)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		o.logger.Debug("discarding superseded plan response")
		return ErrSuperseded
	}
	o.cancel = nil
	o.state.CurrentStepIndex = trip.StepCount

	if err == nil && (result == nil || result.Plan == nil) {
		err = errors.New("empty plan result")
	}
	if err != nil {
		o.state.Phase = PhaseFailed
		o.state.Error = GenericError
		o.publishLocked()
		o.logger.Warn("plan request failed", zap.Error(err))
		if !client.IsPlanningFailure(err) {
			err = &client.PlanningFailure{Err: err}
		}
		return err
	}

	o.state.Phase = PhaseSettled
	o.state.Outcome = &Outcome{Plan: result.Plan}
	o.adoptSessionLocked(result.SessionID)
	o.publishLocked()
	o.logger.Info("plan settled", zap.String("session_id", result.SessionID))
	return nil
}

// MountResults is called when the results view is shown. When nothing is in
// memory it restores the mirrored session, at most once per mount. A
// NavigateSearch result means there was nothing to restore.
func (o *Orchestrator) MountResults(ctx context.Context) (Navigation, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return NavigateNone, ErrClosed
	}
	if o.mounted {
		o.mu.Unlock()
		return NavigateNone, nil
	}
	o.mounted = true

	s := o.state
	if s.Outcome != nil || s.Error != "" || s.Phase == PhaseSubmitting || s.Phase == PhaseRestoring {
		o.mu.Unlock()
		return NavigateNone, nil
	}

	sessionID := s.SessionID
	if sessionID == "" {
		sessionID = o.readMirrorLocked()
	}
	if sessionID == "" {
		o.mu.Unlock()
		o.logger.Debug("nothing to restore")
		return NavigateSearch, nil
	}

	o.generation++
	gen := o.generation
	reqCtx, cancel := withTimeout(ctx, o.cfg.RestoreTimeout)
	o.cancel = cancel
	o.state.Phase = PhaseRestoring
	o.state.SessionID = sessionID
	o.publishLocked()
	o.mu.Unlock()

	record, err := o.deps.Sessions.GetSession(reqCtx, sessionID)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		return NavigateNone, nil
	}
	o.cancel = nil

	if err != nil {
		o.logger.Warn("session restore failed", zap.String("session_id", sessionID), zap.Error(err))
		if errors.Is(err, client.ErrNotFound) {
			o.state.SessionID = ""
			o.removeMirrorLocked()
		}
		o.state.Phase = PhaseIdle
		o.publishLocked()
		return NavigateSearch, nil
	}

	q, plan, ok := Reconcile(record)
	if !ok {
		o.logger.Info("restored session has no plan", zap.String("session_id", sessionID))
		o.state.Phase = PhaseIdle
		o.publishLocked()
		return NavigateSearch, nil
	}

	if record.Session.ID != "" {
		sessionID = record.Session.ID
	}
	o.settleLocked(sessionID, q, plan)
	o.logger.Info("session restored", zap.String("session_id", sessionID))
	return NavigateNone, nil
}

// UnmountResults re-arms the restoration guard for the next mount.
func (o *Orchestrator) UnmountResults() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mounted = false
}

// SelectSession switches to an already fetched session. It reports false,
// changing nothing, when the session holds no plan or a request is running.
func (o *Orchestrator) SelectSession(record *trip.SessionRecord) bool {
	if record == nil {
		return false
	}
	q, plan, ok := Reconcile(record)
	if !ok {
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || o.state.Phase == PhaseSubmitting || o.state.Phase == PhaseRestoring {
		return false
	}
	o.settleLocked(record.Session.ID, q, plan)
	return true
}

// OpenSession fetches a session and selects it.
func (o *Orchestrator) OpenSession(ctx context.Context, sessionID string) (bool, error) {
	record, err := o.deps.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return o.SelectSession(record), nil
}

// NewTrip abandons everything and returns to Idle, erasing the mirrored
// session identifier.
func (o *Orchestrator) NewTrip() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.state = State{Phase: PhaseIdle}
	o.removeMirrorLocked()
	if !o.closed {
		o.publishLocked()
	}
	o.logger.Debug("started new trip")
}

func (o *Orchestrator) onStatus(status string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Phase != PhaseSubmitting {
		return
	}
	o.state.StatusMessage = status
	o.publishLocked()
}

func (o *Orchestrator) onStep(index int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Phase != PhaseSubmitting || index <= o.state.CurrentStepIndex {
		return
	}
	o.state.CurrentStepIndex = min(index, trip.StepCount)
	o.publishLocked()
}

func (o *Orchestrator) settleLocked(sessionID string, q trip.Query, plan *trip.Plan) {
	o.state = State{
		Phase:            PhaseSettled,
		Query:            q,
		Outcome:          &Outcome{Plan: plan},
		CurrentStepIndex: trip.StepCount,
	}
	o.adoptSessionLocked(sessionID)
	o.publishLocked()
}

func (o *Orchestrator) adoptSessionLocked(sessionID string) {
	o.state.SessionID = sessionID
	if sessionID == "" {
		o.removeMirrorLocked()
		return
	}
	if o.deps.Mirror == nil {
		return
	}
	if err := o.deps.Mirror.Set(sessionID); err != nil {
		o.logger.Warn("failed to mirror session id", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (o *Orchestrator) removeMirrorLocked() {
	if o.deps.Mirror == nil {
		return
	}
	if err := o.deps.Mirror.Remove(); err != nil {
		o.logger.Warn("failed to clear mirrored session id", zap.Error(err))
	}
}

func (o *Orchestrator) readMirrorLocked() string {
	if o.deps.Mirror == nil {
		return ""
	}
	id, ok, err := o.deps.Mirror.Get()
	if err != nil {
		o.logger.Warn("failed to read mirrored session id", zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

// publishLocked never blocks; slow subscribers miss intermediate snapshots.
func (o *Orchestrator) publishLocked() {
	o.broker.Publish(pubsub.UpdatedEvent, o.state)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
