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

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/assert"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/testutils"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateAccount(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account, verificationToken, err := a.CreateAccount("alice@example.com", "pass1234", "pass1234")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating account"))
	}

	assert.Equal(t, account.Email.String, "alice@example.com", "account email mismatch")
	assert.Equal(t, account.EmailVerified, false, "account should not be verified yet")
	assert.NotEqual(t, account.UUID, "", "account uuid should have been generated")

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password.String), []byte("pass1234")); err != nil {
		t.Error("password should have been hashed")
	}

	var tier database.SubscriptionTier
	testutils.MustExec(t, db.Where("id = ?", account.TierID).First(&tier), "finding tier")
	assert.Equal(t, tier.Name, database.TierFreemium, "new account should be on the free tier")

	assert.Equal(t, verificationToken.AccountID, account.ID, "token account_id mismatch")
	assert.Equal(t, verificationToken.Type, database.TokenTypeEmailVerification, "token type mismatch")
	assert.NotEqual(t, verificationToken.Value, "", "token value should have been generated")
}

func TestCreateAccountValidation(t *testing.T) {
	testCases := []struct {
		name         string
		email        string
		password     string
		confirmation string
		expectedErr  error
	}{
		{
			name:         "missing email",
			email:        "",
			password:     "pass1234",
			confirmation: "pass1234",
			expectedErr:  ErrEmailRequired,
		},
		{
			name:         "password too short",
			email:        "alice@example.com",
			password:     "pass",
			confirmation: "pass",
			expectedErr:  ErrPasswordTooShort,
		},
		{
			name:         "confirmation mismatch",
			email:        "alice@example.com",
			password:     "pass1234",
			confirmation: "pass1235",
			expectedErr:  ErrPasswordConfirmationMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutils.InitMemoryDB(t)
			a := NewTest(t, db)

			_, _, err := a.CreateAccount(tc.email, tc.password, tc.confirmation)
			assert.Equal(t, err, tc.expectedErr, "error mismatch")

			var count int64
			testutils.MustExec(t, db.Model(database.Account{}).Count(&count), "counting accounts")
			assert.Equal(t, count, int64(0), "no account should have been created")
		})
	}
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	_, _, err := a.CreateAccount("alice@example.com", "pass1234", "pass1234")
	assert.Equal(t, err, ErrDuplicateEmail, "error mismatch")

	var count int64
	testutils.MustExec(t, db.Model(database.Account{}).Count(&count), "counting accounts")
	assert.Equal(t, count, int64(1), "account count mismatch")
}

func TestAuthenticate(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	t.Run("valid credentials", func(t *testing.T) {
		result, err := a.Authenticate("alice@example.com", "pass1234")
		if err != nil {
			t.Fatal(errors.Wrap(err, "authenticating"))
		}

		assert.Equal(t, result.ID, account.ID, "account id mismatch")
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Authenticate("alice@example.com", "wrongpassword")
		assert.Equal(t, err, ErrLoginInvalid, "error mismatch")
	})

	t.Run("nonexistent email", func(t *testing.T) {
		_, err := a.Authenticate("bob@example.com", "pass1234")
		assert.Equal(t, err, ErrNotFound, "error mismatch")
	})
}

func TestAuthenticateUnverifiedEmail(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	testutils.MustExec(t, db.Model(&account).Update("email_verified", false), "marking account unverified")

	_, err := a.Authenticate("alice@example.com", "pass1234")
	assert.Equal(t, err, ErrEmailNotVerified, "error mismatch")
}

func TestVerifyEmail(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account, verificationToken, err := a.CreateAccount("alice@example.com", "pass1234", "pass1234")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating account"))
	}

	if err := a.VerifyEmail(account.UUID, verificationToken.Value); err != nil {
		t.Fatal(errors.Wrap(err, "verifying email"))
	}

	var accountRecord database.Account
	testutils.MustExec(t, db.Where("id = ?", account.ID).First(&accountRecord), "finding account")
	assert.Equal(t, accountRecord.EmailVerified, true, "account should have been verified")

	var tokenRecord database.Token
	testutils.MustExec(t, db.Where("id = ?", verificationToken.ID).First(&tokenRecord), "finding token")
	if tokenRecord.UsedAt == nil {
		t.Error("token should have been marked used")
	}

	// a used token does not verify again
	err = a.VerifyEmail(account.UUID, verificationToken.Value)
	assert.Equal(t, err, ErrInvalidToken, "error mismatch")
}

func TestVerifyEmailInvalidToken(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account, _, err := a.CreateAccount("alice@example.com", "pass1234", "pass1234")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating account"))
	}

	err = a.VerifyEmail(account.UUID, "bogus-token-value")
	assert.Equal(t, err, ErrInvalidToken, "error mismatch")

	var accountRecord database.Account
	testutils.MustExec(t, db.Where("id = ?", account.ID).First(&accountRecord), "finding account")
	assert.Equal(t, accountRecord.EmailVerified, false, "account should not have been verified")
}

func TestCreateOAuthAccount(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account, err := a.CreateOAuthAccount("alice@example.com")
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating oauth account"))
	}

	assert.Equal(t, account.Email.String, "alice@example.com", "account email mismatch")
	assert.Equal(t, account.EmailVerified, true, "oauth account should be pre-verified")
	assert.Equal(t, account.OAuth, true, "oauth flag mismatch")
	assert.Equal(t, account.Password.Valid, false, "oauth account should carry no password")

	// a password login does not apply to an oauth account
	_, err = a.Authenticate("alice@example.com", "pass1234")
	assert.Equal(t, err, ErrNotFound, "error mismatch")
}
