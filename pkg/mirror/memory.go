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
package mirror

import "sync"

// Memory is a process-local Store. It does not survive restarts and is
// intended for tests and ephemeral runs.
type Memory struct {
	mu      sync.RWMutex
	value   string
	present bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get implements Store.
func (m *Memory) Get() (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value, m.present, nil
}

// Set implements Store.
func (m *Memory) Set(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.present = true
	return nil
}

// Remove implements Store.
func (m *Memory) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	m.present = false
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
