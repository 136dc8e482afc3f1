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
	"strings"

	"github.com/tasknest/tasknest/pkg/server/log"
)

// GetCredential extracts the session key from the Authorization header.
// A "Bearer " prefix is tolerated and stripped.
func GetCredential(r *http.Request) string {
	h := r.Header.Get("Authorization")
	h = strings.TrimPrefix(h, "Bearer ")

	return strings.TrimSpace(h)
}

type errorResponse struct {
	Success     bool        `json:"success"`
	Payload     interface{} `json:"payload"`
	Errors      string      `json:"errors"`
	Description string      `json:"description"`
}

// RespondError writes an error response envelope with the given status code
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := errorResponse{
		Errors:      message,
		Description: message,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.ErrorWrap(err, "encoding error response")
	}
}

// DoError logs the error and responds with the given status code
func DoError(w http.ResponseWriter, message string, err error, statusCode int) {
	log.ErrorWrap(err, message)
	RespondError(w, message, statusCode)
}
