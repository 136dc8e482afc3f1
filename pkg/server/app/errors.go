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

import "github.com/pkg/errors"

var (
	// ErrNotFound is an error for a nonexistent resource. It is also returned
	// when the resource exists but is not owned by the caller, so that
	// existence is not leaked to non-owners.
	ErrNotFound = errors.New("not found")
	// ErrLoginInvalid is an error for invalid login credentials
	ErrLoginInvalid = errors.New("wrong email and password combination")
	// ErrEmailRequired is an error for missing email
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordRequired is an error for missing password
	ErrPasswordRequired = errors.New("password is required")
	// ErrPasswordTooShort is an error for a password that is too short
	ErrPasswordTooShort = errors.New("password should be longer than 8 characters")
	// ErrPasswordConfirmationMismatch is an error for password not matching the confirmation
	ErrPasswordConfirmationMismatch = errors.New("password confirmation does not match")
	// ErrDuplicateEmail is an error for an email that is already registered
	ErrDuplicateEmail = errors.New("email is already registered")
	// ErrEmailNotVerified is an error for signing in before verifying the email address
	ErrEmailNotVerified = errors.New("email is not verified yet")
	// ErrTitleRequired is an error for a task without a title
	ErrTitleRequired = errors.New("title is required")
	// ErrTaskQuotaExceeded is an error for exceeding the tier's task cap
	ErrTaskQuotaExceeded = errors.New("task quota reached for the subscription tier")
	// ErrFileQuotaExceeded is an error for exceeding the tier's file caps
	ErrFileQuotaExceeded = errors.New("file quota reached for the subscription tier")
	// ErrFileTooLarge is an error for an attachment exceeding the tier's size cap
	ErrFileTooLarge = errors.New("file exceeds the maximum size for the subscription tier")
	// ErrInvalidToken is an error for an invalid email token
	ErrInvalidToken = errors.New("invalid token")
	// ErrPasswordResetTokenExpired is an error for an expired password reset token
	ErrPasswordResetTokenExpired = errors.New("password reset token expired")
	// ErrInvalidReportName is an error for an unrecognized report name
	ErrInvalidReportName = errors.New("invalid report name")
	// ErrInvalidSMTPConfig is an error for an invalid SMTP configuration
	ErrInvalidSMTPConfig = errors.New("SMTP is not configured")
	// ErrInvalidPayload is an error for a request body that could not be decoded
	ErrInvalidPayload = errors.New("invalid payload")
)
