/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	keyringService         = "Snapline"
	keyringJournalPassword = "journal_password"
)

// ErrNoSecret is returned by a SecretStore when the entry does not exist.
var ErrNoSecret = errors.New("config: secret not found")

// SecretStore abstracts the OS keychain so tests can stub it.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var secrets SecretStore = osKeyring{}

// UseSecretStore replaces the keychain backend and returns a func restoring
// the previous one.
func UseSecretStore(s SecretStore) (restore func()) {
	prev := secrets
	secrets = s
	return func() { secrets = prev }
}

// DeletePassword removes the stored journal password.
func DeletePassword() error {
	err := secrets.Delete(keyringService, keyringJournalPassword)
	if errors.Is(err, ErrNoSecret) {
		return nil
	}
	return err
}

// osKeyring talks to the platform keychain via go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) {
	v, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoSecret
	}
	return v, err
}

func (osKeyring) Set(service, key, value string) error { return keyring.Set(service, key, value) }

func (osKeyring) Delete(service, key string) error {
	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNoSecret
	}
	return err
}
