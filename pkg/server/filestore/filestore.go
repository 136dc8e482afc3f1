/* Copyright 2025 Tasknest Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package filestore persists attachment payloads on the local filesystem.
// Records in the database refer to payloads by an opaque storage key.
package filestore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrNotFound is an error for a missing payload
var ErrNotFound = errors.New("file not found")

// Store reads and writes attachment payloads under a base directory
type Store struct {
	baseDir string
}

// New creates a store rooted at the given directory, creating it if needed
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating attachment directory at %s", baseDir)
	}

	return &Store{baseDir: baseDir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.baseDir, key)
}

// Save writes the payload from the given reader under the given key and
// returns the number of bytes written. A partially written file is removed
// on error.
func (s *Store) Save(key string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(s.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return 0, errors.Wrap(err, "creating file")
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(s.path(key))
		return 0, errors.Wrap(err, "writing file")
	}

	if err := f.Close(); err != nil {
		os.Remove(s.path(key))
		return 0, errors.Wrap(err, "closing file")
	}

	return n, nil
}

// Open returns a reader for the payload stored under the given key.
// The caller is responsible for closing it.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}

	return f, nil
}

// Remove deletes the payload stored under the given key. Removing a key
// that does not exist is not an error so that record deletion can be
// retried after a partial failure.
func (s *Store) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}

	return nil
}
