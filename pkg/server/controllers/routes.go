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

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/app"
	mw "github.com/tasknest/tasknest/pkg/server/middleware"
)

// Route represents a single route
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	RateLimit bool
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
}

// NewAPIRoutes returns the api routes
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return mw.Auth(a.DB, a.Clock, h)
	}

	return []Route{
		{"POST", "/register", c.Users.Register, true},
		{"GET", "/activate/{accountUUID}/{token}", c.Users.Activate, true},
		{"POST", "/auth", c.Users.Login, true},
		{"POST", "/auth/logout", auth(c.Users.Logout), true},
		{"GET", "/auth/reset", c.Users.CreateResetToken, true},
		{"POST", "/auth/reset", c.Users.PasswordReset, true},
		{"POST", "/oauth", c.Users.OAuthLogin, true},

		{"GET", "/tasks", auth(c.Tasks.Index), true},
		{"POST", "/tasks", auth(c.Tasks.Create), true},
		{"GET", "/tasks/{taskID}", auth(c.Tasks.Show), true},
		{"PATCH", "/tasks/{taskID}", auth(c.Tasks.Update), true},
		{"DELETE", "/tasks/{taskID}", auth(c.Tasks.Delete), true},

		{"POST", "/tasks/{taskID}/files", auth(c.Attachments.Create), true},
		{"GET", "/tasks/{taskID}/files/{fileID}", auth(c.Attachments.Show), true},
		{"DELETE", "/tasks/{taskID}/files/{fileID}", auth(c.Attachments.Delete), true},

		{"GET", "/reports", auth(c.Reports.Show), true},

		{"GET", "/health", c.Health.Index, true},
	}
}

func registerRoutes(router *mux.Router, wrapper mw.Middleware, app *app.App, routes []Route) {
	for _, route := range routes {
		wrappedHandler := wrapper(route.Handler, app, route.RateLimit)

		router.
			Handle(route.Pattern, wrappedHandler).
			Methods(route.Method)
	}
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)

	apiRouter := router.PathPrefix("/api").Subrouter()
	registerRoutes(apiRouter, mw.APIMw, app, rc.APIRoutes)

	// catch-all
	router.PathPrefix("/").HandlerFunc(mw.NotSupported)

	return mw.Global(router), nil
}
