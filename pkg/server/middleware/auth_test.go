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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/assert"
	"github.com/tasknest/tasknest/pkg/clock"
	"github.com/tasknest/tasknest/pkg/server/app"
	"github.com/tasknest/tasknest/pkg/server/context"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/testutils"
)

func TestAuthWithSession(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	c := clock.NewMock()

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	session := database.Session{
		Key:       "session-key-1",
		AccountID: account.ID,
		ExpiresAt: c.Now().Add(time.Hour),
	}
	testutils.MustExec(t, db.Save(&session), "preparing session")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", session.Key)

	result, err := AuthWithSession(db, c, req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "authenticating"))
	}

	assert.Equal(t, result.ID, account.ID, "account id mismatch")
}

func TestAuthWithSessionBearerPrefix(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	c := clock.NewMock()

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	session := database.Session{
		Key:       "session-key-1",
		AccountID: account.ID,
		ExpiresAt: c.Now().Add(time.Hour),
	}
	testutils.MustExec(t, db.Save(&session), "preparing session")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer session-key-1")

	result, err := AuthWithSession(db, c, req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "authenticating"))
	}

	assert.Equal(t, result.ID, account.ID, "account id mismatch")
}

func TestAuthWithSessionMissingCredential(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	c := clock.NewMock()

	req := httptest.NewRequest("GET", "/", nil)

	_, err := AuthWithSession(db, c, req)
	assert.Equal(t, err, ErrNoSession, "error mismatch")
}

func TestAuthWithSessionExpiry(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	c := clock.NewMock()

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	session := database.Session{
		Key:       "session-key-1",
		AccountID: account.ID,
		ExpiresAt: c.Now(),
	}
	testutils.MustExec(t, db.Save(&session), "preparing session")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", session.Key)

	// a session expiring exactly now is still live
	if _, err := AuthWithSession(db, c, req); err != nil {
		t.Fatal(errors.Wrap(err, "authenticating at the expiry boundary"))
	}

	// one instant later it is not
	c.SetNow(c.Now().Add(time.Nanosecond))
	_, err := AuthWithSession(db, c, req)
	assert.Equal(t, err, ErrSessionExpired, "error mismatch")
}

func TestAuthReLoginInvalidatesOldKey(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	first, err := a.CreateSession(account.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating first session"))
	}
	second, err := a.CreateSession(account.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating second session"))
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", first.Key)
	_, err = AuthWithSession(db, a.Clock, req)
	assert.Equal(t, err, ErrNoSession, "the replaced key should not resolve")

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", second.Key)
	if _, err := AuthWithSession(db, a.Clock, req); err != nil {
		t.Fatal(errors.Wrap(err, "authenticating with the latest key"))
	}
}

func TestAuthMiddleware(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	c := clock.NewMock()

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	session := testutils.SetupSession(db, account)

	var gotAccount *database.Account
	handler := Auth(db, c, func(w http.ResponseWriter, r *http.Request) {
		gotAccount = context.Account(r.Context())
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", session.Key)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusOK, "status code mismatch")
	if gotAccount == nil {
		t.Fatal("account should have been injected into the context")
	}
	assert.Equal(t, gotAccount.ID, account.ID, "account id mismatch")
}

func TestAuthMiddlewareUnauthorized(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	c := clock.NewMock()

	handler := Auth(db, c, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("the handler should not have been invoked")
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "no-such-key")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, w.Code, http.StatusUnauthorized, "status code mismatch")

	var resp struct {
		Success bool   `json:"success"`
		Errors  string `json:"errors"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(errors.Wrap(err, "decoding response"))
	}
	assert.Equal(t, resp.Success, false, "success flag mismatch")
	assert.Equal(t, resp.Errors, ErrNoSession.Error(), "error message mismatch")
}
