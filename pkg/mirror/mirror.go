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

// Package mirror provides durable single-key storage for the current session
// identifier, so a planning session survives process restarts.
//
// Every Store is bound to one key at construction. Get reports whether the
// key is present; Remove on an absent key is not an error.
package mirror

import (
	"fmt"
	"path/filepath"

	"github.com/teradata-labs/tripweave/pkg/config"
)

// Backend names accepted by Open.
const (
	BackendFile    = "file"
	BackendSQLite  = "sqlite"
	BackendKeyring = "keyring"
	BackendMemory  = "memory"
)

// DefaultKey is the key holding the current session identifier.
const DefaultKey = "current_session_id"

// DefaultService is the keyring service name.
const DefaultService = "tripweave"

// Store is a durable mirror of a single value.
type Store interface {
	// Get returns the stored value and whether it is present.
	Get() (string, bool, error)
	// Set stores value, replacing any previous one.
	Set(value string) error
	// Remove deletes the value. Removing an absent value succeeds.
	Remove() error
	// Close releases resources held by the store.
	Close() error
}

// Config selects and configures a Store backend.
type Config struct {
	Backend string `mapstructure:"backend"` // file (default), sqlite, keyring, memory
	Path    string `mapstructure:"path"`    // file or database path; defaults under the data dir
	Key     string `mapstructure:"key"`     // default: current_session_id
	Service string `mapstructure:"service"` // keyring service; default: tripweave
}

// Open creates the Store described by cfg.
func Open(cfg Config) (Store, error) {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}

	switch cfg.Backend {
	case "", BackendFile:
		path := cfg.Path
		if path == "" {
			path = config.GetSubPath("session.json")
		}
		return NewFile(config.ExpandPath(path), cfg.Key), nil
	case BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = config.GetSubPath("tripweave.db")
		}
		return NewSQLite(config.ExpandPath(path), cfg.Key)
	case BackendKeyring:
		service := cfg.Service
		if service == "" {
			service = DefaultService
		}
		return NewKeyring(service, cfg.Key), nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown mirror backend %q (want %s, %s, %s or %s)",
			cfg.Backend, BackendFile, BackendSQLite, BackendKeyring, BackendMemory)
	}
}

// ensureParent creates the directory holding path.
func ensureParent(path string) error {
	return mkdirAll(filepath.Dir(path))
}
