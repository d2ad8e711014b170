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

// Package config resolves tripweave's on-disk locations.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DataDirEnv overrides the default data directory.
const DataDirEnv = "TRIPWEAVE_DATA_DIR"

// GetDataDir returns the tripweave data directory.
// It checks TRIPWEAVE_DATA_DIR first, then falls back to ~/.tripweave.
func GetDataDir() string {
	if dataDir := os.Getenv(DataDirEnv); dataDir != "" {
		return ExpandPath(dataDir)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir cannot be determined
		return ".tripweave"
	}
	return filepath.Join(homeDir, ".tripweave")
}

// GetSubPath returns a path within the data directory.
// Example: GetSubPath("session.json") returns ~/.tripweave/session.json
func GetSubPath(name string) string {
	return filepath.Join(GetDataDir(), name)
}

// EnsureDataDir creates the data directory if needed.
func EnsureDataDir() error {
	return os.MkdirAll(GetDataDir(), 0o700)
}

// ExpandPath expands ~ and resolves to absolute path
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path // Return as-is if we can't get home dir
		}
		return filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}
