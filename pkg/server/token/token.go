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

// Package token manages single-use email tokens such as email verification
// and password reset tokens
package token

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
	"gorm.io/gorm"
)

// generateRandom generates random bits of given length
func generateRandom(bits int) (string, error) {
	b := make([]byte, bits)

	_, err := rand.Read(b)
	if err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// Create generates a new token of the given kind in the database
func Create(db *gorm.DB, accountID int, kind string) (database.Token, error) {
	val, err := generateRandom(16)
	if err != nil {
		return database.Token{}, errors.Wrap(err, "generating random bytes")
	}

	token := database.Token{
		AccountID: accountID,
		Value:     val,
		Type:      kind,
	}
	if err := db.Save(&token).Error; err != nil {
		return database.Token{}, errors.Wrap(err, "saving token")
	}

	return token, nil
}

// Get returns an unused token of the given kind for the account by first
// looking up an existing record and creating one if none exists. Requesting
// a password reset twice therefore reuses the outstanding token.
func Get(db *gorm.DB, accountID int, kind string) (database.Token, error) {
	var tok database.Token
	err := db.
		Where("account_id = ? AND type = ? AND used_at IS NULL", accountID, kind).
		First(&tok).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Create(db, accountID, kind)
	} else if err != nil {
		return tok, errors.Wrap(err, "finding token")
	}

	return tok, nil
}
