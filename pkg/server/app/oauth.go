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
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
	"gorm.io/gorm"
)

var (
	// ErrOAuthProviderUnsupported is an error for an OAuth provider that is not supported
	ErrOAuthProviderUnsupported = errors.New("unsupported oauth provider")
	// ErrOAuthTokenInvalid is an error for an OAuth token that could not be verified
	ErrOAuthTokenInvalid = errors.New("invalid oauth token")
)

// OAuthVerifier verifies an identity token with an OAuth provider and
// returns the verified email address
type OAuthVerifier interface {
	Verify(provider, idToken string) (string, error)
}

// GoogleVerifier verifies Google identity tokens against the tokeninfo endpoint
type GoogleVerifier struct {
	Client *http.Client
}

// NewGoogleVerifier returns a GoogleVerifier with a default http client
func NewGoogleVerifier() *GoogleVerifier {
	return &GoogleVerifier{
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type googleTokenInfo struct {
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
}

// Verify implements OAuthVerifier for the google provider
func (v *GoogleVerifier) Verify(provider, idToken string) (string, error) {
	if provider != "google" {
		return "", ErrOAuthProviderUnsupported
	}

	endpoint := fmt.Sprintf("https://oauth2.googleapis.com/tokeninfo?id_token=%s", idToken)
	res, err := v.Client.Get(endpoint)
	if err != nil {
		return "", errors.Wrap(err, "requesting tokeninfo")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", ErrOAuthTokenInvalid
	}

	var info googleTokenInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return "", errors.Wrap(err, "decoding tokeninfo response")
	}
	if info.Email == "" || info.EmailVerified != "true" {
		return "", ErrOAuthTokenInvalid
	}

	return info.Email, nil
}

// OAuthSignIn verifies the given identity token, finds or creates the
// matching account and starts a session for it
func (a *App) OAuthSignIn(provider, idToken string) (database.Session, error) {
	if a.OAuthVerifier == nil {
		return database.Session{}, ErrOAuthProviderUnsupported
	}

	email, err := a.OAuthVerifier.Verify(provider, idToken)
	if err != nil {
		return database.Session{}, errors.Wrap(err, "verifying oauth token")
	}

	// The lookup is by email alone. An email already registered with a
	// password signs in to that account.
	var account database.Account
	conn := a.DB.Where("email = ?", email).First(&account)
	if conn.Error != nil {
		if !errors.Is(conn.Error, gorm.ErrRecordNotFound) {
			return database.Session{}, errors.Wrap(conn.Error, "finding account")
		}

		created, err := a.CreateOAuthAccount(email)
		if err != nil {
			return database.Session{}, errors.Wrap(err, "creating oauth account")
		}
		account = created
	}

	session, err := a.SignIn(&account)
	if err != nil {
		return database.Session{}, errors.Wrap(err, "signing in")
	}

	return *session, nil
}
