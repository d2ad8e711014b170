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
)

// Step is one stage of the backend planning pipeline.
type Step struct {
	ID    string
	Label string
}

var steps = []Step{
	{ID: "visa", Label: "Checking visa requirements"},
	{ID: "flights", Label: "Searching for flights"},
	{ID: "hotels", Label: "Finding accommodations"},
	{ID: "activities", Label: "Discovering activities"},
	{ID: "itinerary", Label: "Crafting your itinerary"},
}

// StepCount is the terminal step index: every step has completed.
var StepCount = len(steps)

var stepIndex = map[string]int{
	"visa":         0,
	"flights":      1,
	"hotels":       2,
	"activities":   3,
	"itinerary":    4,
	"start":        0,
	"post_process": 4,
}

// Steps returns the ordered pipeline steps.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// StepIndex maps a step name reported by the backend to its position.
// Unknown names report false.
func StepIndex(name string) (int, bool) {
	idx, ok := stepIndex[name]
	return idx, ok
}

// ProgressEvent is one advisory message pushed on the status channel.
// Either field may be absent.
type ProgressEvent struct {
	Status string `json:"status,omitempty"`
	Step   string `json:"step,omitempty"`
}

// ParseProgressEvent decodes a pushed status payload.
func ParseProgressEvent(data []byte) (ProgressEvent, error) {
	// The backend sends null for absent fields, which decodes to "".
	var ev ProgressEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ProgressEvent{}, fmt.Errorf("invalid progress event: %w", err)
	}
	return ev, nil
}

// StepIndex resolves the event's step, if any.
func (e ProgressEvent) StepIndex() (int, bool) {
	if e.Step == "" {
		return 0, false
	}
	return StepIndex(e.Step)
}
