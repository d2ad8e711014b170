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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/teradata-labs/tripweave/pkg/config"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, ok, err := s.Get()
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should be empty")

	require.NoError(t, s.Remove(), "removing an absent key succeeds")

	require.NoError(t, s.Set("s1"))
	v, ok, err := s.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "s1", v)

	require.NoError(t, s.Set("s2"))
	v, _, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, "s2", v)

	require.NoError(t, s.Remove())
	_, ok, err = s.Get()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Remove())
	require.NoError(t, s.Close())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStore(t, NewFile(path, ""))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file is deleted once the last key is removed")
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, NewFile(path, "current").Set("abc"))

	v, ok, err := NewFile(path, "current").Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStorePreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	a := NewFile(path, "a")
	b := NewFile(path, "b")

	require.NoError(t, a.Set("1"))
	require.NoError(t, b.Set("2"))
	require.NoError(t, a.Remove())

	v, ok, err := b.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFile(path, "").Get()
	assert.Error(t, err)

	s := NewFile(path, "")
	require.NoError(t, s.Set("x"), "set replaces an unparsable document")
	v, ok, err := s.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestFileStoreRemoveCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewFile(path, "")
	require.NoError(t, s.Remove())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "corrupt document should be deleted")

	_, ok, err := s.Get()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "db", "tripweave.db"), "")
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tripweave.db")

	s, err := NewSQLite(path, "k")
	require.NoError(t, err)
	require.NoError(t, s.Set("persisted"))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path, "k")
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLite("", "")
	assert.Error(t, err)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()
	exerciseStore(t, NewKeyring("tripweave-test", ""))
}

func TestOpen(t *testing.T) {
	t.Setenv(config.DataDirEnv, t.TempDir())
	keyring.MockInit()

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{name: "default is file", cfg: Config{}, want: &File{}},
		{name: "file", cfg: Config{Backend: BackendFile}, want: &File{}},
		{name: "sqlite", cfg: Config{Backend: BackendSQLite}, want: &SQLite{}},
		{name: "keyring", cfg: Config{Backend: BackendKeyring}, want: &Keyring{}},
		{name: "memory", cfg: Config{Backend: BackendMemory}, want: &Memory{}},
		{name: "unknown", cfg: Config{Backend: "cookie"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestOpenFileDefaultsToDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.DataDirEnv, dir)

	s, err := Open(Config{})
	require.NoError(t, err)
	f, ok := s.(*File)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "session.json"), f.Path())
}
