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
	"strconv"

	"github.com/teradata-labs/tripweave/pkg/trip"
)

// ListMemories returns stored memories, optionally filtered by type.
func (c *Client) ListMemories(ctx context.Context, memoryType string) ([]trip.Memory, error) {
	var query url.Values
	if memoryType != "" {
		query = url.Values{"memory_type": {memoryType}}
	}

	var resp struct {
		Memories []trip.Memory `json:"memories"`
	}
	if err := c.do(ctx, http.MethodGet, "/memories", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	return resp.Memories, nil
}

// CreateMemory stores a memory by hand.
func (c *Client) CreateMemory(ctx context.Context, memoryType, content string) (*trip.Memory, error) {
	req := struct {
		MemoryType string `json:"memory_type"`
		Content    string `json:"content"`
	}{memoryType, content}

	var m trip.Memory
	if err := c.do(ctx, http.MethodPost, "/memories", nil, req, &m); err != nil {
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}
	return &m, nil
}

// DeleteMemory removes one memory. Deleting an unknown memory succeeds.
func (c *Client) DeleteMemory(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodDelete, "/memories/"+strconv.FormatInt(id, 10), nil, nil, nil)
	if IsStatus(err, http.StatusNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete memory %d: %w", id, err)
	}
	return nil
}

// ClearMemories removes every memory.
func (c *Client) ClearMemories(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/memories", nil, nil, nil); err != nil {
		return fmt.Errorf("failed to clear memories: %w", err)
	}
	return nil
}
