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
	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/log"
)

type pendingTaskRow struct {
	AccountID    int
	Email        string
	PendingCount int
}

// SendTaskReminders emails every account that has at least one incomplete
// task a reminder with its pending count. A failure for one account is
// logged and does not abort the remaining sends. The job carries no
// idempotency token; a re-run re-sends to all qualifying accounts.
// It returns the number of reminders sent.
func (a *App) SendTaskReminders() (int, error) {
	var rows []pendingTaskRow
	err := a.DB.Table("tasks").
		Select("tasks.account_id AS account_id, accounts.email AS email, COUNT(tasks.id) AS pending_count").
		Joins("INNER JOIN accounts ON accounts.id = tasks.account_id").
		Where("tasks.completed = ?", false).
		Group("tasks.account_id, accounts.email").
		Scan(&rows).Error
	if err != nil {
		return 0, errors.Wrap(err, "finding accounts with pending tasks")
	}

	sent := 0
	for _, row := range rows {
		if err := a.SendTaskReminderEmail(row.Email, row.PendingCount); err != nil {
			log.WithFields(log.Fields{
				"account_id": row.AccountID,
			}).ErrorWrap(err, "sending task reminder")
			continue
		}

		sent++
	}

	return sent, nil
}
