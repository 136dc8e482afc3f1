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
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/mailer"
)

func getDomainFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing url")
	}

	host := u.Hostname()
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host, nil
	}
	domain := parts[len(parts)-2] + "." + parts[len(parts)-1]

	return domain, nil
}

// GetSenderEmail returns the noreply sender address for the configured base URL
func GetSenderEmail(baseURL string) (string, error) {
	domain, err := getDomainFromURL(baseURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing base url")
	}

	return fmt.Sprintf("noreply@%s", domain), nil
}

// SendVerificationEmail sends the account activation email
func (a *App) SendVerificationEmail(account database.Account, tokenValue string) error {
	if !account.Email.Valid || account.Email.String == "" {
		return ErrEmailRequired
	}

	from, err := GetSenderEmail(a.BaseURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.EmailVerificationTmplData{
		AccountEmail: account.Email.String,
		AccountUUID:  account.UUID,
		Token:        tokenValue,
		BaseURL:      a.BaseURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeEmailVerification, from, []string{account.Email.String}, data); err != nil {
		return errors.Wrapf(err, "sending verification email for %s", account.Email.String)
	}

	return nil
}

// SendPasswordResetEmail sends the password reset token email
func (a *App) SendPasswordResetEmail(email, tokenValue string) error {
	if email == "" {
		return ErrEmailRequired
	}

	from, err := GetSenderEmail(a.BaseURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.EmailResetPasswordTmplData{
		AccountEmail: email,
		Token:        tokenValue,
		BaseURL:      a.BaseURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeResetPassword, from, []string{email}, data); err != nil {
		if errors.Cause(err) == mailer.ErrSMTPNotConfigured {
			return ErrInvalidSMTPConfig
		}

		return errors.Wrapf(err, "sending password reset email for %s", email)
	}

	return nil
}

// SendPasswordResetAlertEmail sends an email that notifies the account of a
// password change
func (a *App) SendPasswordResetAlertEmail(email string) error {
	from, err := GetSenderEmail(a.BaseURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.EmailResetPasswordAlertTmplData{
		AccountEmail: email,
		BaseURL:      a.BaseURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeResetPasswordAlert, from, []string{email}, data); err != nil {
		return errors.Wrapf(err, "sending password reset alert email for %s", email)
	}

	return nil
}

// SendTaskReminderEmail sends a pending task reminder with the given count
func (a *App) SendTaskReminderEmail(email string, pendingCount int) error {
	if email == "" {
		return ErrEmailRequired
	}

	from, err := GetSenderEmail(a.BaseURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.TaskReminderTmplData{
		AccountEmail: email,
		PendingCount: pendingCount,
		BaseURL:      a.BaseURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeTaskReminder, from, []string{email}, data); err != nil {
		return errors.Wrapf(err, "sending task reminder email for %s", email)
	}

	return nil
}
