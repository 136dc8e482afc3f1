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
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/clock"
	"github.com/tasknest/tasknest/pkg/server/filestore"
	"github.com/tasknest/tasknest/pkg/server/mailer"
	"gorm.io/gorm"
)

var (
	// ErrEmptyDB is an error for missing database connection in the app configuration
	ErrEmptyDB = errors.New("No database connection was provided")
	// ErrEmptyClock is an error for missing clock in the app configuration
	ErrEmptyClock = errors.New("No clock was provided")
	// ErrEmptyBaseURL is an error for missing BaseURL content in the app configuration
	ErrEmptyBaseURL = errors.New("No BaseURL was provided")
	// ErrEmptyEmailBackend is an error for missing EmailBackend content in the app configuration
	ErrEmptyEmailBackend = errors.New("No EmailBackend was provided")
	// ErrEmptyFileStore is an error for missing attachment file store in the app configuration
	ErrEmptyFileStore = errors.New("No file store was provided")
	// ErrEmptySessionTTL is an error for missing session validity window in the app configuration
	ErrEmptySessionTTL = errors.New("No session TTL was provided")
)

// App is an application context
type App struct {
	DB            *gorm.DB
	Clock         clock.Clock
	EmailBackend  mailer.Backend
	Files         *filestore.Store
	OAuthVerifier OAuthVerifier
	BaseURL       string
	SessionTTL    time.Duration
}

// Validate validates the app configuration
func (a *App) Validate() error {
	if a.BaseURL == "" {
		return ErrEmptyBaseURL
	}
	if a.Clock == nil {
		return ErrEmptyClock
	}
	if a.EmailBackend == nil {
		return ErrEmptyEmailBackend
	}
	if a.DB == nil {
		return ErrEmptyDB
	}
	if a.Files == nil {
		return ErrEmptyFileStore
	}
	if a.SessionTTL <= 0 {
		return ErrEmptySessionTTL
	}

	return nil
}
