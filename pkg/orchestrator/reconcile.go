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
package orchestrator

import (
	"strings"

	"github.com/teradata-labs/tripweave/pkg/trip"
)

// Reconcile derives what a session restores to: its latest plan and the
// query of its latest user message. When no user message carries a query,
// the query falls back to baseline values with the plan's destination.
// ok is false when the session holds no plan.
func Reconcile(record *trip.SessionRecord) (q trip.Query, plan *trip.Plan, ok bool) {
	plan = record.LatestPlan()
	if plan == nil {
		return trip.Query{}, nil, false
	}

	q = trip.DefaultQuery()
	if raw, found := record.LatestQuery(); found {
		if decoded, err := trip.DecodeQuery(raw); err == nil {
			q = decoded
		}
	}
	if strings.TrimSpace(q.Destination) == "" {
		q.Destination = plan.Destination
	}
	return q, plan, true
}
