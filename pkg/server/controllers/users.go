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

package controllers

import (
	stderrors "errors"
	"net/http"

	"github.com/gorilla/mux"
	pkgErrors "github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/app"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/log"
	"github.com/tasknest/tasknest/pkg/server/middleware"
	"github.com/tasknest/tasknest/pkg/server/presenters"
	"github.com/tasknest/tasknest/pkg/server/token"
	"gorm.io/gorm"
)

// NewUsers creates a new Users controller
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a controller for the account lifecycle
type Users struct {
	app *app.App
}

// RegistrationForm is the form data for registering
type RegistrationForm struct {
	Email                string `schema:"email" json:"email"`
	Password             string `schema:"password" json:"password"`
	PasswordConfirmation string `schema:"password_confirmation" json:"password_confirmation"`
}

// Register handles account registration
func (u *Users) Register(w http.ResponseWriter, r *http.Request) {
	var form RegistrationForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	account, verificationToken, err := u.app.CreateAccount(form.Email, form.Password, form.PasswordConfirmation)
	if err != nil {
		handleJSONError(w, err, "creating account")
		return
	}

	if err := u.app.SendVerificationEmail(account, verificationToken.Value); err != nil {
		log.ErrorWrap(err, "sending verification email")
	}

	respondJSON(w, http.StatusCreated, payload{
		"account": presenters.PresentAccount(account),
	}, "account created, check your email for an activation link")
}

// Activate handles the email verification link
func (u *Users) Activate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountUUID := vars["accountUUID"]
	tokenValue := vars["token"]

	if err := u.app.VerifyEmail(accountUUID, tokenValue); err != nil {
		handleJSONError(w, err, "verifying email")
		return
	}

	respondJSON(w, http.StatusOK, nil, "account activated")
}

// LoginForm is the form data for log in
type LoginForm struct {
	Email    string `schema:"email" json:"email"`
	Password string `schema:"password" json:"password"`
}

func (u *Users) login(form LoginForm) (*database.Session, error) {
	if form.Email == "" {
		return nil, app.ErrEmailRequired
	}
	if form.Password == "" {
		return nil, app.ErrPasswordRequired
	}

	account, err := u.app.Authenticate(form.Email, form.Password)
	if err != nil {
		// If the account is not found, treat it as invalid login
		if err == app.ErrNotFound {
			return nil, app.ErrLoginInvalid
		}

		return nil, err
	}

	return u.app.SignIn(account)
}

// Login handles login
func (u *Users) Login(w http.ResponseWriter, r *http.Request) {
	var form LoginForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	session, err := u.login(form)
	if err != nil {
		handleJSONError(w, err, "logging in")
		return
	}

	respondJSON(w, http.StatusOK, payload{
		"session": presenters.PresentSession(*session),
	}, "logged in")
}

// Logout handles logout
func (u *Users) Logout(w http.ResponseWriter, r *http.Request) {
	key := middleware.GetCredential(r)
	if key != "" {
		if err := u.app.DeleteSession(key); err != nil {
			handleJSONError(w, err, "deleting session")
			return
		}
	}

	respondJSON(w, http.StatusOK, nil, "logged out")
}

type createResetTokenPayload struct {
	Email string `schema:"email" json:"email"`
}

// CreateResetToken sends a password reset email for the given address.
// An unknown address gets the same response as a known one.
func (u *Users) CreateResetToken(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		var form createResetTokenPayload
		if err := parseRequestData(r, &form); err != nil {
			handleJSONError(w, err, "parsing payload")
			return
		}
		email = form.Email
	}

	if email == "" {
		handleJSONError(w, app.ErrEmailRequired, "email is not provided")
		return
	}

	description := "if the account exists, a reset email is on its way"

	var account database.Account
	err := u.app.DB.Where("email = ? AND oauth = ?", email, false).First(&account).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		respondJSON(w, http.StatusOK, nil, description)
		return
	}
	if err != nil {
		handleJSONError(w, err, "finding account")
		return
	}

	resetToken, err := token.Get(u.app.DB, account.ID, database.TokenTypeResetPassword)
	if err != nil {
		handleJSONError(w, err, "generating token")
		return
	}

	if err := u.app.SendPasswordResetEmail(account.Email.String, resetToken.Value); err != nil {
		handleJSONError(w, err, "sending password reset email")
		return
	}

	respondJSON(w, http.StatusOK, nil, description)
}

type resetPasswordPayload struct {
	Token                string `schema:"token" json:"token"`
	Password             string `schema:"password" json:"password"`
	PasswordConfirmation string `schema:"password_confirmation" json:"password_confirmation"`
}

// PasswordReset completes a password reset with a token from the reset email.
// All live sessions of the account are invalidated.
func (u *Users) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var params resetPasswordPayload
	if err := parseRequestData(r, &params); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	if params.Password != params.PasswordConfirmation {
		handleJSONError(w, app.ErrPasswordConfirmationMismatch, "password mismatch")
		return
	}

	var tok database.Token
	err := u.app.DB.
		Where("value = ? AND type = ? AND used_at IS NULL", params.Token, database.TokenTypeResetPassword).
		First(&tok).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		handleJSONError(w, app.ErrInvalidToken, "invalid token")
		return
	}
	if err != nil {
		handleJSONError(w, err, "finding token")
		return
	}

	// Expire after 10 minutes
	if u.app.Clock.Now().Sub(tok.CreatedAt).Minutes() > 10 {
		handleJSONError(w, app.ErrPasswordResetTokenExpired, "expired token")
		return
	}

	var account database.Account
	if err := u.app.DB.Where("id = ?", tok.AccountID).First(&account).Error; err != nil {
		handleJSONError(w, pkgErrors.Wrap(err, "finding account"), "finding account")
		return
	}

	now := u.app.Clock.Now()

	tx := u.app.DB.Begin()

	if err := app.UpdateAccountPassword(tx, &account, params.Password); err != nil {
		tx.Rollback()
		handleJSONError(w, err, "updating password")
		return
	}

	if err := tx.Model(&tok).Update("used_at", &now).Error; err != nil {
		tx.Rollback()
		handleJSONError(w, pkgErrors.Wrap(err, "updating reset token"), "updating reset token")
		return
	}

	if err := u.app.DeleteAccountSessions(tx, account.ID); err != nil {
		tx.Rollback()
		handleJSONError(w, err, "deleting account sessions")
		return
	}

	tx.Commit()

	if err := u.app.SendPasswordResetAlertEmail(account.Email.String); err != nil {
		log.ErrorWrap(err, "sending password reset alert email")
	}

	respondJSON(w, http.StatusOK, nil, "password reset successful")
}

type oauthPayload struct {
	Provider string `schema:"provider" json:"provider"`
	IDToken  string `schema:"id_token" json:"id_token"`
}

// OAuthLogin handles login with a third-party identity token. An account is
// created on first sight.
func (u *Users) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	var form oauthPayload
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	session, err := u.app.OAuthSignIn(form.Provider, form.IDToken)
	if err != nil {
		handleJSONError(w, err, "signing in with oauth")
		return
	}

	respondJSON(w, http.StatusOK, payload{
		"session": presenters.PresentSession(session),
	}, "logged in")
}
