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

// Package version reports the tripweave build.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/teradata-labs/tripweave/internal/version.Version=vX.Y.Z \
//	  -X github.com/teradata-labs/tripweave/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "0.1.0"
	Commit  = ""
)

// Get returns the release version, or "dev" for unversioned builds.
func Get() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// Info returns the version with commit and Go runtime, for --version output.
func Info() string {
	v := Get()
	if Commit != "" {
		v += " (" + Commit + ")"
	}
	return fmt.Sprintf("%s %s/%s %s", v, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
