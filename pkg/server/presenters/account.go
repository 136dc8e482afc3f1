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

package presenters

import (
	"time"

	"github.com/tasknest/tasknest/pkg/server/database"
)

// Account is a result of PresentAccount
type Account struct {
	UUID          string `json:"uuid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// PresentAccount presents an account
func PresentAccount(account database.Account) Account {
	return Account{
		UUID:          account.UUID,
		Email:         account.Email.String,
		EmailVerified: account.EmailVerified,
	}
}

// Session is a result of PresentSession
type Session struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PresentSession presents a session
func PresentSession(session database.Session) Session {
	return Session{
		Key:       session.Key,
		ExpiresAt: FormatTS(session.ExpiresAt),
	}
}
