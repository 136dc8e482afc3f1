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

package middleware

import (
	stderrors "errors"
	"net/http"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/clock"
	"github.com/tasknest/tasknest/pkg/server/context"
	"github.com/tasknest/tasknest/pkg/server/database"
	"gorm.io/gorm"
)

var (
	// ErrNoSession is an error for a request carrying no live session
	ErrNoSession = errors.New("session is not found")
	// ErrSessionExpired is an error for a session past its expiry
	ErrSessionExpired = errors.New("session expired")
)

// AuthWithSession looks up the account for the request's session key.
// ErrNoSession and ErrSessionExpired distinguish a missing credential from a
// stale one so that a client can tell whether to log in again.
func AuthWithSession(db *gorm.DB, c clock.Clock, r *http.Request) (database.Account, error) {
	var account database.Account

	sessionKey := GetCredential(r)
	if sessionKey == "" {
		return account, ErrNoSession
	}

	var session database.Session
	err := db.Where("key = ?", sessionKey).First(&session).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return account, ErrNoSession
	} else if err != nil {
		return account, errors.Wrap(err, "finding session")
	}

	if session.ExpiresAt.Before(c.Now()) {
		return account, ErrSessionExpired
	}

	err = db.Where("id = ?", session.AccountID).First(&account).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return account, ErrNoSession
	} else if err != nil {
		return account, errors.Wrap(err, "finding account from session")
	}

	return account, nil
}

// Auth is an authentication middleware. It injects the authenticated account
// into the request context.
func Auth(db *gorm.DB, c clock.Clock, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := AuthWithSession(db, c, r)
		if err == ErrNoSession || err == ErrSessionExpired {
			RespondError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		if err != nil {
			DoError(w, "authenticating with session", err, http.StatusInternalServerError)
			return
		}

		ctx := context.WithAccount(r.Context(), &account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
