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

// Package trip defines the data exchanged with the trip planning backend:
// queries, plans, progress events, sessions and memories.
package trip

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Baseline values applied to any query field the user (or a stored query) leaves unset.
const (
	DefaultDays      = 3
	DefaultTravelers = 1
	DefaultCurrency  = "USD"
)

// ErrEmptyDestination is returned when a query is submitted without a destination.
var ErrEmptyDestination = errors.New("destination is required")

// Query holds the planning parameters for one plan request.
type Query struct {
	Destination  string `json:"destination"`
	Origin       string `json:"origin"`
	Dates        string `json:"dates"`
	Days         int    `json:"days"`
	Travelers    int    `json:"travelers"`
	TravelTime   string `json:"travel_time"`
	Currency     string `json:"currency"`
	StrictBudget bool   `json:"strict_budget"`
}

// DefaultQuery returns a query with every field at its baseline value.
func DefaultQuery() Query {
	return Query{
		Days:      DefaultDays,
		Travelers: DefaultTravelers,
		Currency:  DefaultCurrency,
	}
}

// Validate rejects queries that must never leave the client.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Destination) == "" {
		return ErrEmptyDestination
	}
	return nil
}

// Prompt returns the free-text request sent alongside the structured fields.
func (q Query) Prompt() string {
	return fmt.Sprintf("Plan a trip to %s", strings.TrimSpace(q.Destination))
}

// DecodeQuery overlays a stored user_query object onto DefaultQuery.
// Fields that are missing or null keep their baseline value.
func DecodeQuery(raw json.RawMessage) (Query, error) {
	q := DefaultQuery()
	if len(raw) == 0 || string(raw) == "null" {
		return q, nil
	}

	// Pointers distinguish "absent" from a zero value the user chose.
	var stored struct {
		Destination  *string `json:"destination"`
		Origin       *string `json:"origin"`
		Dates        *string `json:"dates"`
		Days         *int    `json:"days"`
		Travelers    *int    `json:"travelers"`
		TravelTime   *string `json:"travel_time"`
		Currency     *string `json:"currency"`
		StrictBudget *bool   `json:"strict_budget"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return q, fmt.Errorf("failed to decode user query: %w", err)
	}

	if stored.Destination != nil {
		q.Destination = *stored.Destination
	}
	if stored.Origin != nil {
		q.Origin = *stored.Origin
	}
	if stored.Dates != nil {
		q.Dates = *stored.Dates
	}
	if stored.Days != nil && *stored.Days > 0 {
		q.Days = *stored.Days
	}
	if stored.Travelers != nil && *stored.Travelers > 0 {
		q.Travelers = *stored.Travelers
	}
	if stored.TravelTime != nil {
		q.TravelTime = *stored.TravelTime
	}
	if stored.Currency != nil && *stored.Currency != "" {
		q.Currency = *stored.Currency
	}
	if stored.StrictBudget != nil {
		q.StrictBudget = *stored.StrictBudget
	}
	return q, nil
}
