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
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Keyring stores the value in the operating system keyring.
type Keyring struct {
	service string
	key     string
}

// NewKeyring creates a keyring-backed store.
func NewKeyring(service, key string) *Keyring {
	if service == "" {
		service = DefaultService
	}
	if key == "" {
		key = DefaultKey
	}
	return &Keyring{service: service, key: key}
}

// Get implements Store.
func (k *Keyring) Get() (string, bool, error) {
	value, err := keyring.Get(k.service, k.key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("keyring get %s/%s: %w", k.service, k.key, err)
	}
	return value, true, nil
}

// Set implements Store.
func (k *Keyring) Set(value string) error {
	if err := keyring.Set(k.service, k.key, value); err != nil {
		return fmt.Errorf("keyring set %s/%s: %w", k.service, k.key, err)
	}
	return nil
}

// Remove implements Store.
func (k *Keyring) Remove() error {
	err := keyring.Delete(k.service, k.key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s/%s: %w", k.service, k.key, err)
	}
	return nil
}

// Close implements Store.
func (k *Keyring) Close() error {
	return nil
}
