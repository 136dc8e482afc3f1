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

// Package testutils provides utilities used in tests
package testutils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/helpers"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitMemoryDB creates an in-memory SQLite database with the schema
// initialized and the default subscription tiers seeded
func InitMemoryDB(t *testing.T) *gorm.DB {
	// Use a file-based in-memory database with unique UUID per test to avoid sharing
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatalf("failed to generate UUID for test database: %v", err)
	}
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid)
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	database.InitSchema(db)
	if err := database.SeedTiers(db, database.DefaultTierSeeds()); err != nil {
		t.Fatal(errors.Wrap(err, "seeding tiers"))
	}

	return db
}

// MustUUID generates a UUID and fails the test on error
func MustUUID(t *testing.T) string {
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to generate UUID"))
	}
	return uuid
}

// SetupAccountData creates and returns a verified account on the free tier
// with the given email and password for testing purposes
func SetupAccountData(db *gorm.DB, email, password string) database.Account {
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(errors.Wrap(err, "Failed to hash password"))
	}

	var tier database.SubscriptionTier
	if err := db.Where("name = ?", database.TierFreemium).First(&tier).Error; err != nil {
		panic(errors.Wrap(err, "Failed to find free tier"))
	}

	account := database.Account{
		UUID:          uuid,
		Email:         database.ToNullString(email),
		Password:      database.ToNullString(string(hashedPassword)),
		TierID:        tier.ID,
		EmailVerified: true,
	}

	if err := db.Save(&account).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare account"))
	}

	return account
}

// SetTierLimits overrides the subscription limits for the account's tier
func SetTierLimits(t *testing.T, db *gorm.DB, account database.Account, limits database.SubscriptionLimits) {
	limits.TierID = account.TierID

	var existing database.SubscriptionLimits
	if err := db.Where("tier_id = ?", account.TierID).First(&existing).Error; err != nil {
		t.Fatal(errors.Wrap(err, "finding tier limits"))
	}

	limits.ID = existing.ID
	if err := db.Save(&limits).Error; err != nil {
		t.Fatal(errors.Wrap(err, "saving tier limits"))
	}
}

// SetupSession creates and returns a new account session
func SetupSession(db *gorm.DB, account database.Account) database.Session {
	session := database.Session{
		Key:       "Vvgm3eBXfXGEFWERI7faiRJ3DAzJw+7DdT9J1LEyNfI=",
		AccountID: account.ID,
		ExpiresAt: time.Now().Add(time.Hour * 24),
	}
	if err := db.Save(&session).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare session"))
	}

	return session
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		// Do not follow redirects so that the redirect itself can be tested
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetReqAuthHeader sets the authorization header in the given request for the given account
func SetReqAuthHeader(t *testing.T, db *gorm.DB, req *http.Request, account database.Account) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(errors.Wrap(err, "reading random bits"))
	}

	// An account holds at most one session; replace any existing row in place
	// to match the unique index on sessions.account_id.
	var session database.Session
	if err := db.Where("account_id = ?", account.ID).First(&session).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatal(errors.Wrap(err, "finding existing session"))
		}
		session = database.Session{AccountID: account.ID}
	}
	session.Key = base64.StdEncoding.EncodeToString(b)
	session.ExpiresAt = time.Now().Add(time.Hour * 10 * 24)
	if err := db.Save(&session).Error; err != nil {
		t.Fatal(errors.Wrap(err, "Failed to prepare session"))
	}

	req.Header.Set("Authorization", session.Key)
}

// HTTPAuthDo makes an HTTP request with an authorization header for the account
func HTTPAuthDo(t *testing.T, db *gorm.DB, req *http.Request, account database.Account) *http.Response {
	SetReqAuthHeader(t, db, req, account)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))
	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// MockEmail is a mock email data
type MockEmail struct {
	TemplateType string
	From         string
	To           []string
	Data         interface{}
}

// MockEmailbackendImplementation is an email backend that records emails
// instead of sending them
type MockEmailbackendImplementation struct {
	mu     sync.RWMutex
	Emails []MockEmail
}

// Clear clears the mock email queue
func (b *MockEmailbackendImplementation) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Emails = []MockEmail{}
}

// SendEmail is an implementation of Backend.SendEmail
func (b *MockEmailbackendImplementation) SendEmail(templateType, from string, to []string, data interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Emails = append(b.Emails, MockEmail{
		TemplateType: templateType,
		From:         from,
		To:           to,
		Data:         data,
	})

	return nil
}

// TrueVal is a true value
var TrueVal = true

// FalseVal is a false value
var FalseVal = false
