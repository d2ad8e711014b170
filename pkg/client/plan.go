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
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/teradata-labs/tripweave/pkg/trip"
)

// PlanningFailure is the single error kind PlanTrip returns. The cause is
// kept for logs; callers should not branch on it.
type PlanningFailure struct {
	Err error
}

func (e *PlanningFailure) Error() string {
	return fmt.Sprintf("trip planning failed: %v", e.Err)
}

func (e *PlanningFailure) Unwrap() error {
	return e.Err
}

// IsPlanningFailure reports whether err is, or wraps, a PlanningFailure.
func IsPlanningFailure(err error) bool {
	var pf *PlanningFailure
	return errors.As(err, &pf)
}

const planResultSchema = `{
	"type": "object",
	"required": ["trip_plan", "session_id"],
	"properties": {
		"session_id": {"type": "string", "minLength": 1},
		"trip_plan": {
			"type": "object",
			"required": ["destination"],
			"properties": {
				"destination": {"type": "string"}
			}
		}
	}
}`

var compilePlanSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(planResultSchema))
})

// planRequest is the wire body: the query fields plus correlation fields.
type planRequest struct {
	trip.Query
	ClientID string `json:"client_id"`
	Prompt   string `json:"query"`
}

// PlanTrip sends one plan request. An empty sessionID asks the backend to
// open a new session; the result carries the identifier either way.
func (c *Client) PlanTrip(ctx context.Context, q trip.Query, clientID, sessionID string) (*trip.PlanResult, error) {
	result, err := c.planTrip(ctx, q, clientID, sessionID)
	if err != nil {
		c.logger.Warn("plan request failed",
			zap.String("destination", q.Destination),
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, &PlanningFailure{Err: err}
	}
	c.logger.Info("plan received",
		zap.String("destination", result.Plan.Destination),
		zap.String("session_id", result.SessionID))
	return result, nil
}

func (c *Client) planTrip(ctx context.Context, q trip.Query, clientID, sessionID string) (*trip.PlanResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var query url.Values
	if sessionID != "" {
		query = url.Values{"session_id": {sessionID}}
	}

	body := planRequest{Query: q, ClientID: clientID, Prompt: q.Prompt()}
	raw, err := c.doRaw(ctx, http.MethodPost, "/plan_trip_with_session", query, body)
	if err != nil {
		return nil, err
	}

	if err := validatePlanResult(raw); err != nil {
		return nil, err
	}

	var result trip.PlanResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode plan response: %w", err)
	}
	if result.Plan == nil {
		return nil, fmt.Errorf("plan response has no trip_plan")
	}
	return &result, nil
}

func validatePlanResult(raw []byte) error {
	schema, err := compilePlanSchema()
	if err != nil {
		return fmt.Errorf("plan response schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return fmt.Errorf("invalid plan response: %s", strings.Join(msgs, "; "))
	}
	return nil
}
