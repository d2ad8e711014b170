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
	"bytes"
	"encoding/json"
	"fmt"
)

// Plan is a generated trip plan. The client treats it as opaque apart from
// the destination label; the raw payload is preserved byte for byte.
type Plan struct {
	Destination string
	raw         json.RawMessage
}

// NewPlan builds a plan from a raw JSON object.
func NewPlan(raw json.RawMessage) (*Plan, error) {
	p := &Plan{}
	if err := p.UnmarshalJSON(raw); err != nil {
		return nil, err
	}
	return p, nil
}

// UnmarshalJSON keeps the payload and extracts the destination label.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var head struct {
		Destination string `json:"destination"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("failed to decode trip plan: %w", err)
	}
	p.Destination = head.Destination
	p.raw = append(p.raw[:0], data...)
	return nil
}

// MarshalJSON returns the payload the plan was decoded from.
func (p Plan) MarshalJSON() ([]byte, error) {
	if len(p.raw) == 0 {
		return json.Marshal(struct {
			Destination string `json:"destination"`
		}{p.Destination})
	}
	return p.raw, nil
}

// Raw returns a copy of the original payload.
func (p *Plan) Raw() json.RawMessage {
	return bytes.Clone(p.raw)
}

// Decode unmarshals the full payload into v, for callers that render plan details.
func (p *Plan) Decode(v any) error {
	return json.Unmarshal(p.raw, v)
}

// PlanResult is the response to a plan request.
type PlanResult struct {
	Plan      *Plan  `json:"trip_plan"`
	SessionID string `json:"session_id"`
}
