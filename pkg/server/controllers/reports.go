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
	"net/http"

	"github.com/tasknest/tasknest/pkg/server/app"
	"github.com/tasknest/tasknest/pkg/server/context"
)

// NewReports creates a new Reports controller
func NewReports(app *app.App) *Reports {
	return &Reports{
		app: app,
	}
}

// Reports is a controller for the named task aggregations
type Reports struct {
	app *app.App
}

// Show runs the report named by the query parameter
func (c *Reports) Show(w http.ResponseWriter, r *http.Request) {
	account := context.Account(r.Context())

	kind, err := app.ParseReportKind(r.URL.Query().Get("name"))
	if err != nil {
		handleJSONError(w, err, "parsing report name")
		return
	}

	report, err := c.app.GenerateReport(*account, kind)
	if err != nil {
		handleJSONError(w, err, "generating report")
		return
	}

	respondJSON(w, http.StatusOK, payload{
		"report": report,
	}, kind.String())
}
