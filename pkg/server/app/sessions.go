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
	"crypto/rand"
	"encoding/base64"
	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/log"
	"gorm.io/gorm"
)

func generateSessionKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateSession returns a live session for the account of the given id.
// An account holds at most one session. If one already exists it is replaced
// in place, which invalidates the previous key immediately.
func (a *App) CreateSession(accountID int) (database.Session, error) {
	key, err := generateSessionKey()
	if err != nil {
		return database.Session{}, errors.Wrap(err, "generating key")
	}

	now := a.Clock.Now()

	var session database.Session
	err = a.DB.Where("account_id = ?", accountID).First(&session).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		session = database.Session{
			AccountID: accountID,
		}
	} else if err != nil {
		return database.Session{}, errors.Wrap(err, "finding existing session")
	}

	session.Key = key
	session.CreatedAt = now
	session.ExpiresAt = now.Add(a.SessionTTL)

	if err := a.DB.Save(&session).Error; err != nil {
		return database.Session{}, errors.Wrap(err, "saving session")
	}

	return session, nil
}

// SignIn signs in an account by touching its login timestamp and issuing a session
func (a *App) SignIn(account *database.Account) (*database.Session, error) {
	if err := a.TouchLastLoginAt(*account, a.DB); err != nil {
		log.ErrorWrap(err, "touching login timestamp")
	}

	session, err := a.CreateSession(account.ID)
	if err != nil {
		return nil, errors.Wrap(err, "creating session")
	}

	return &session, nil
}

// DeleteSession deletes the session with the given key
func (a *App) DeleteSession(sessionKey string) error {
	if err := a.DB.Where("key = ?", sessionKey).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting the session")
	}

	return nil
}

// DeleteAccountSessions deletes any existing session for the given account.
// It effectively invalidates the account's live credential.
func (a *App) DeleteAccountSessions(db *gorm.DB, accountID int) error {
	if err := db.Where("account_id = ?", accountID).Delete(&database.Session{}).Error; err != nil {
		return errors.Wrap(err, "deleting sessions")
	}

	return nil
}
