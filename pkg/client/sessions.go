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
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/teradata-labs/tripweave/pkg/trip"
)

// ListSessions returns the stored sessions in backend order.
func (c *Client) ListSessions(ctx context.Context) ([]trip.SessionSummary, error) {
	var resp struct {
		Sessions []trip.SessionSummary `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/sessions", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return resp.Sessions, nil
}

// GetSession fetches a session with its messages. Unknown identifiers
// return an error wrapping ErrNotFound.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*trip.SessionRecord, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	var record trip.SessionRecord
	err := c.do(ctx, http.MethodGet, sessionPath(sessionID), nil, nil, &record)
	if IsStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	return &record, nil
}

// CreateSession opens an empty session. destination may be empty.
func (c *Client) CreateSession(ctx context.Context, title, destination string) (*trip.SessionSummary, error) {
	req := struct {
		Title       string  `json:"title"`
		Destination *string `json:"destination"`
	}{Title: title}
	if destination != "" {
		req.Destination = &destination
	}

	var session trip.SessionSummary
	if err := c.do(ctx, http.MethodPost, "/sessions", nil, req, &session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session. Deleting an unknown session succeeds.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	err := c.do(ctx, http.MethodDelete, sessionPath(sessionID), nil, nil, nil)
	if IsStatus(err, http.StatusNotFound) {
		c.logger.Debug("session already gone", zap.String("session_id", sessionID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

func sessionPath(id string) string {
	return "/sessions/" + url.PathEscape(id)
}
