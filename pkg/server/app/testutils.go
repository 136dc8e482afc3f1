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

package app

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/clock"
	"github.com/tasknest/tasknest/pkg/server/filestore"
	"github.com/tasknest/tasknest/pkg/server/testutils"
	"gorm.io/gorm"
)

// NewTest returns an app for a testing environment backed by the given database
func NewTest(t *testing.T, db *gorm.DB) App {
	files, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing file store"))
	}

	return App{
		DB:           db,
		Clock:        clock.NewMock(),
		EmailBackend: &testutils.MockEmailbackendImplementation{},
		Files:        files,
		BaseURL:      "http://127.0.0.1:3000",
		SessionTTL:   24 * time.Hour,
	}
}
