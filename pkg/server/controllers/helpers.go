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
	"strconv"
	"strings"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/app"
	"github.com/tasknest/tasknest/pkg/server/log"
)

var formDecoder = schema.NewDecoder()

func init() {
	formDecoder.IgnoreUnknownKeys(true)
}

func parseForm(r *http.Request, dst interface{}) error {
	if err := r.ParseForm(); err != nil {
		return errors.Wrap(app.ErrInvalidPayload, err.Error())
	}
	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		return errors.Wrap(app.ErrInvalidPayload, err.Error())
	}

	return nil
}

// parseRequestData decodes the request body into dst. A JSON content type is
// decoded as JSON; anything else is treated as a form.
func parseRequestData(r *http.Request, dst interface{}) error {
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return errors.Wrap(app.ErrInvalidPayload, err.Error())
		}

		return nil
	}

	return parseForm(r, dst)
}

// response is the envelope every API response is wrapped in
type response struct {
	Success     bool        `json:"success"`
	Payload     interface{} `json:"payload"`
	Errors      interface{} `json:"errors"`
	Description string      `json:"description"`
}

// payload is the payload portion of the response envelope. The entity data
// goes under a key named after the entity; list responses also carry the
// paging fields.
type payload map[string]interface{}

func respondJSON(w http.ResponseWriter, statusCode int, p payload, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := response{
		Success:     true,
		Payload:     p,
		Description: description,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := response{
		Errors:      message,
		Description: message,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.ErrorWrap(err, "encoding error response")
	}
}

func statusCodeForError(err error) int {
	switch errors.Cause(err) {
	case app.ErrEmailRequired,
		app.ErrPasswordRequired,
		app.ErrPasswordTooShort,
		app.ErrPasswordConfirmationMismatch,
		app.ErrTitleRequired,
		app.ErrInvalidToken,
		app.ErrPasswordResetTokenExpired,
		app.ErrInvalidReportName,
		app.ErrFileTooLarge,
		app.ErrOAuthProviderUnsupported,
		app.ErrInvalidPayload:
		return http.StatusBadRequest
	case app.ErrLoginInvalid,
		app.ErrEmailNotVerified,
		app.ErrOAuthTokenInvalid:
		return http.StatusUnauthorized
	case app.ErrTaskQuotaExceeded,
		app.ErrFileQuotaExceeded:
		return http.StatusForbidden
	case app.ErrNotFound:
		return http.StatusNotFound
	case app.ErrDuplicateEmail:
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// handleJSONError maps the given error to a status code and responds with the
// error envelope. Internal errors are logged with context and surface only an
// opaque message.
func handleJSONError(w http.ResponseWriter, err error, message string) {
	statusCode := statusCodeForError(err)

	if statusCode == http.StatusInternalServerError {
		log.ErrorWrap(err, message)
		respondError(w, "Something went wrong", statusCode)
		return
	}

	respondError(w, errors.Cause(err).Error(), statusCode)
}

// getIntQuery reads an integer query parameter, falling back to zero when the
// parameter is absent or malformed
func getIntQuery(r *http.Request, name string) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return 0
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}

	return n
}
