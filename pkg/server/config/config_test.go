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

package config

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/assert"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		config      Config
		expectedErr error
	}{
		{
			config: Config{
				DBPath:  "test.db",
				WebURL:  "http://mock.url",
				Port:    "3000",
				DataDir: "data",
			},
			expectedErr: nil,
		},
		{
			config: Config{
				DBPath:  "",
				WebURL:  "http://mock.url",
				Port:    "3000",
				DataDir: "data",
			},
			expectedErr: ErrDBMissingPath,
		},
		{
			config: Config{
				DBPath:      "",
				DatabaseURL: "postgres://localhost/tasknest",
				WebURL:      "http://mock.url",
				Port:        "3000",
				DataDir:     "data",
			},
			expectedErr: nil,
		},
		{
			config: Config{
				DBPath:  "test.db",
				DataDir: "data",
			},
			expectedErr: ErrWebURLInvalid,
		},
		{
			config: Config{
				DBPath:  "test.db",
				WebURL:  "http://mock.url",
				DataDir: "data",
			},
			expectedErr: ErrPortInvalid,
		},
		{
			config: Config{
				DBPath: "test.db",
				WebURL: "http://mock.url",
				Port:   "3000",
			},
			expectedErr: ErrDataDirMissing,
		},
	}

	for idx, tc := range testCases {
		err := validate(tc.config)

		assert.Equal(t, errors.Cause(err), tc.expectedErr, fmt.Sprintf("error mismatch for test case %d", idx))
	}
}

func TestNewDefaults(t *testing.T) {
	c, err := New(Params{})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating config"))
	}

	assert.Equal(t, c.Port, "3001", "default port mismatch")
	assert.Equal(t, c.SessionTTL, DefaultSessionTTL, "default session TTL mismatch")
	assert.Equal(t, c.ReminderSchedule, DefaultReminderSchedule, "default reminder schedule mismatch")
	assert.Equal(t, c.IsProd(), true, "default app env should be production")
}
