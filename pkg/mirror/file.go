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

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// errCorrupt marks a backing document that exists but cannot be parsed.
var errCorrupt = errors.New("corrupt mirror document")

// File stores the value in a small JSON document, {"<key>": "<value>"}.
// Other keys in the document are preserved. A document that cannot be
// parsed is reported by Get and replaced by Set or Remove.
type File struct {
	path string
	key  string
	mu   sync.Mutex
}

// NewFile creates a file-backed store. The file is created on first Set.
func NewFile(path, key string) *File {
	if key == "" {
		key = DefaultKey
	}
	return &File{path: path, key: key}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Get implements Store.
func (f *File) Get() (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return "", false, err
	}
	value, ok := doc[f.key]
	return value, ok, nil
}

// Set implements Store.
func (f *File) Set(value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if errors.Is(err, errCorrupt) {
		doc, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	doc[f.key] = value
	return f.write(doc)
}

// Remove implements Store.
func (f *File) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if errors.Is(err, errCorrupt) {
		return f.unlink()
	}
	if err != nil {
		return err
	}
	if _, ok := doc[f.key]; !ok {
		return nil
	}
	delete(doc, f.key)
	if len(doc) == 0 {
		return f.unlink()
	}
	return f.write(doc)
}

func (f *File) unlink() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", f.path, err)
	}
	return nil
}

// Close implements Store.
func (f *File) Close() error {
	return nil
}

func (f *File) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	doc := map[string]string{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", errCorrupt, f.path, err)
	}
	return doc, nil
}

// write replaces the file atomically via a temp file in the same directory.
func (f *File) write(doc map[string]string) error {
	if err := ensureParent(f.path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mirror: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".mirror-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

func mkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
