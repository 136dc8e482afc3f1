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
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/assert"
	"github.com/tasknest/tasknest/pkg/server/app"
	"github.com/tasknest/tasknest/pkg/server/testutils"
)

func TestGetReport(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(t, db)
	server := MustNewServer(t, &a)
	defer server.Close()

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	task := mustCreateTaskData(t, &a, account, "write report")
	mustCreateTaskData(t, &a, account, "buy groceries")

	completed := true
	if _, err := a.UpdateTask(account, task, app.UpdateTaskParams{Completed: &completed}); err != nil {
		t.Fatal(errors.Wrap(err, "completing task"))
	}

	req := testutils.MakeReq(server.URL, "GET", "/api/reports?name=tasks-status", "")
	res := testutils.HTTPAuthDo(t, db, req, account)

	assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")

	e := decodeEnvelope(t, res)
	var got app.TasksStatusReport
	if err := json.Unmarshal(e.Payload["report"], &got); err != nil {
		t.Fatal(errors.Wrap(err, "decoding report payload"))
	}

	expected := app.TasksStatusReport{Total: 2, Complete: 1, Incomplete: 1}
	assert.DeepEqual(t, got, expected, "report mismatch")
}

func TestGetReportInvalidName(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(t, db)
	server := MustNewServer(t, &a)
	defer server.Close()

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")

	req := testutils.MakeReq(server.URL, "GET", "/api/reports?name=bogus", "")
	res := testutils.HTTPAuthDo(t, db, req, account)

	assert.StatusCodeEquals(t, res, http.StatusBadRequest, "status code mismatch")

	e := decodeEnvelope(t, res)
	assert.Equal(t, e.Errors, app.ErrInvalidReportName.Error(), "error message mismatch")
}

func TestGetReportUnauthorized(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := app.NewTest(t, db)
	server := MustNewServer(t, &a)
	defer server.Close()

	res := testutils.HTTPDo(t, testutils.MakeReq(server.URL, "GET", "/api/reports?name=tasks-status", ""))

	assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "status code mismatch")
}
