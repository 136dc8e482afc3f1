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
	"errors"

	pkgErrors "github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/helpers"
	"github.com/tasknest/tasknest/pkg/server/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TouchLastLoginAt updates the last login timestamp
func (a *App) TouchLastLoginAt(account database.Account, tx *gorm.DB) error {
	t := a.Clock.Now()
	if err := tx.Model(&account).Update("last_login_at", &t).Error; err != nil {
		return pkgErrors.Wrap(err, "updating last_login_at")
	}

	return nil
}

func getTierByName(tx *gorm.DB, name string) (database.SubscriptionTier, error) {
	var tier database.SubscriptionTier
	if err := tx.Where("name = ?", name).First(&tier).Error; err != nil {
		return tier, pkgErrors.Wrapf(err, "finding tier %s", name)
	}

	return tier, nil
}

// CreateAccount creates an account on the free tier along with its email
// verification token. The caller is expected to send the verification email.
func (a *App) CreateAccount(email, password, passwordConfirmation string) (database.Account, database.Token, error) {
	zero := database.Account{}

	if email == "" {
		return zero, database.Token{}, ErrEmailRequired
	}
	if len(password) < 8 {
		return zero, database.Token{}, ErrPasswordTooShort
	}
	if password != passwordConfirmation {
		return zero, database.Token{}, ErrPasswordConfirmationMismatch
	}

	tx := a.DB.Begin()

	var count int64
	if err := tx.Model(database.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		tx.Rollback()
		return zero, database.Token{}, pkgErrors.Wrap(err, "counting account")
	}
	if count > 0 {
		tx.Rollback()
		return zero, database.Token{}, ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		tx.Rollback()
		return zero, database.Token{}, pkgErrors.Wrap(err, "hashing password")
	}

	tier, err := getTierByName(tx, database.TierFreemium)
	if err != nil {
		tx.Rollback()
		return zero, database.Token{}, err
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		tx.Rollback()
		return zero, database.Token{}, err
	}

	account := database.Account{
		UUID:     uuid,
		Email:    database.ToNullString(email),
		Password: database.ToNullString(string(hashedPassword)),
		TierID:   tier.ID,
	}
	if err := tx.Save(&account).Error; err != nil {
		tx.Rollback()
		return zero, database.Token{}, pkgErrors.Wrap(err, "saving account")
	}

	verificationToken, err := token.Create(tx, account.ID, database.TokenTypeEmailVerification)
	if err != nil {
		tx.Rollback()
		return zero, database.Token{}, pkgErrors.Wrap(err, "creating email verification token")
	}

	tx.Commit()

	return account, verificationToken, nil
}

// CreateOAuthAccount creates an account for a third-party identity. OAuth
// accounts are pre-verified and carry no usable password.
func (a *App) CreateOAuthAccount(email string) (database.Account, error) {
	zero := database.Account{}

	if email == "" {
		return zero, ErrEmailRequired
	}

	tx := a.DB.Begin()

	tier, err := getTierByName(tx, database.TierFreemium)
	if err != nil {
		tx.Rollback()
		return zero, err
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		tx.Rollback()
		return zero, err
	}

	account := database.Account{
		UUID:          uuid,
		Email:         database.ToNullString(email),
		TierID:        tier.ID,
		EmailVerified: true,
		OAuth:         true,
	}
	if err := tx.Save(&account).Error; err != nil {
		tx.Rollback()
		return zero, pkgErrors.Wrap(err, "saving account")
	}

	tx.Commit()

	return account, nil
}

// Authenticate authenticates an account with an email and password
func (a *App) Authenticate(email, password string) (*database.Account, error) {
	var account database.Account
	err := a.DB.Where("email = ? AND oauth = ?", email, false).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password.String), []byte(password)); err != nil {
		return nil, ErrLoginInvalid
	}

	if !account.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &account, nil
}

// VerifyEmail marks the account's email verified if the given token matches
// an unused verification token for the account identified by the uuid
func (a *App) VerifyEmail(accountUUID, tokenValue string) error {
	if !helpers.ValidateUUID(accountUUID) {
		return ErrInvalidToken
	}

	var account database.Account
	err := a.DB.Where("uuid = ?", accountUUID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidToken
	} else if err != nil {
		return pkgErrors.Wrap(err, "finding account")
	}

	var tok database.Token
	err = a.DB.
		Where("account_id = ? AND value = ? AND type = ? AND used_at IS NULL",
			account.ID, tokenValue, database.TokenTypeEmailVerification).
		First(&tok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidToken
	} else if err != nil {
		return pkgErrors.Wrap(err, "finding token")
	}

	now := a.Clock.Now()

	tx := a.DB.Begin()
	if err := tx.Model(&account).Update("email_verified", true).Error; err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "updating account")
	}
	if err := tx.Model(&tok).Update("used_at", &now).Error; err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "updating token")
	}
	tx.Commit()

	return nil
}

// UpdateAccountPassword hashes and updates the account's password
func UpdateAccountPassword(tx *gorm.DB, account *database.Account, password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return pkgErrors.Wrap(err, "hashing password")
	}

	account.Password = database.ToNullString(string(hashedPassword))
	if err := tx.Save(account).Error; err != nil {
		return pkgErrors.Wrap(err, "saving account")
	}

	return nil
}
