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
package trip

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message roles used by the backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// timestampLayouts are the formats the backend is known to emit: SQLite's
// CURRENT_TIMESTAMP and RFC 3339.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// SessionSummary is one entry of the session listing.
type SessionSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Destination string `json:"destination,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// CreatedTime parses CreatedAt.
func (s SessionSummary) CreatedTime() (time.Time, error) {
	return ParseTimestamp(s.CreatedAt)
}

// UpdatedTime parses UpdatedAt.
func (s SessionSummary) UpdatedTime() (time.Time, error) {
	return ParseTimestamp(s.UpdatedAt)
}

// Message is one entry of a session's conversation.
type Message struct {
	ID        int64           `json:"id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Role      string          `json:"role"`
	Content   string          `json:"content,omitempty"`
	TripPlan  *Plan           `json:"trip_plan,omitempty"`
	UserQuery json.RawMessage `json:"user_query,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
}

// HasQuery reports whether the message carries a non-null user query.
func (m Message) HasQuery() bool {
	return len(m.UserQuery) > 0 && string(m.UserQuery) != "null"
}

// SessionRecord is a persisted session together with its ordered messages.
type SessionRecord struct {
	Session  SessionSummary `json:"session"`
	Messages []Message      `json:"messages"`
}

// LatestPlan returns the plan from the last plan-bearing message, or nil.
// A session accumulates plans across refinements; the newest one wins.
func (r *SessionRecord) LatestPlan() *Plan {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].TripPlan != nil {
			return r.Messages[i].TripPlan
		}
	}
	return nil
}

// LatestQuery returns the stored query of the last user message that has one.
func (r *SessionRecord) LatestQuery() (json.RawMessage, bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		m := r.Messages[i]
		if m.Role == RoleUser && m.HasQuery() {
			return m.UserQuery, true
		}
	}
	return nil, false
}

// ParseTimestamp parses a backend timestamp in any of the known layouts.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Memory is a personalisation fact the backend extracted from past trips.
type Memory struct {
	ID              int64   `json:"id"`
	MemoryType      string  `json:"memory_type"`
	Content         string  `json:"content"`
	Confidence      float64 `json:"confidence"`
	SourceSessionID string  `json:"source_session_id,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}
