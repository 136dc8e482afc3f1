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
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/assert"
	"github.com/tasknest/tasknest/pkg/clock"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/testutils"
)

func TestCreateSession(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	session, err := a.CreateSession(account.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating session"))
	}

	assert.Equal(t, session.AccountID, account.ID, "session account_id mismatch")
	assert.NotEqual(t, session.Key, "", "session key should have been generated")

	now := a.Clock.Now()
	assert.Equal(t, session.ExpiresAt, now.Add(a.SessionTTL), "session expiry mismatch")
}

func TestCreateSessionReplacesExisting(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	first, err := a.CreateSession(account.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating first session"))
	}

	second, err := a.CreateSession(account.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating second session"))
	}

	assert.NotEqual(t, first.Key, second.Key, "session key should have been rotated")

	var count int64
	testutils.MustExec(t, db.Model(database.Session{}).Count(&count), "counting sessions")
	assert.Equal(t, count, int64(1), "an account should hold at most one session")

	var session database.Session
	testutils.MustExec(t, db.Where("account_id = ?", account.ID).First(&session), "finding session")
	assert.Equal(t, session.Key, second.Key, "the stored key should be the latest one")
}

func TestCreateSessionFixedWindow(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	c := a.Clock.(*clock.Mock)
	issuedAt := c.Now()

	session, err := a.CreateSession(account.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating session"))
	}

	// the expiry window does not slide with activity
	c.SetNow(issuedAt.Add(time.Hour))
	assert.Equal(t, session.ExpiresAt, issuedAt.Add(a.SessionTTL), "session expiry should be fixed at issuance")
}

func TestSignIn(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	session, err := a.SignIn(&account)
	if err != nil {
		t.Fatal(errors.Wrap(err, "signing in"))
	}

	assert.Equal(t, session.AccountID, account.ID, "session account_id mismatch")

	var accountRecord database.Account
	testutils.MustExec(t, db.Where("id = ?", account.ID).First(&accountRecord), "finding account")
	if accountRecord.LastLoginAt == nil {
		t.Fatal("last_login_at should have been set")
	}
	assert.Equal(t, accountRecord.LastLoginAt.UTC(), a.Clock.Now().UTC(), "last_login_at mismatch")
}

func TestDeleteSession(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	session := testutils.SetupSession(db, account)

	if err := a.DeleteSession(session.Key); err != nil {
		t.Fatal(errors.Wrap(err, "deleting session"))
	}

	var count int64
	testutils.MustExec(t, db.Model(database.Session{}).Count(&count), "counting sessions")
	assert.Equal(t, count, int64(0), "session count mismatch")
}
