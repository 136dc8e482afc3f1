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
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
	"gorm.io/gorm"
)

// getLimits returns the subscription limits for the account's tier
func getLimits(tx *gorm.DB, account database.Account) (database.SubscriptionLimits, error) {
	var limits database.SubscriptionLimits
	if err := tx.Where("tier_id = ?", account.TierID).First(&limits).Error; err != nil {
		return limits, errors.Wrap(err, "finding subscription limits")
	}

	return limits, nil
}

// incrementTaskCount performs the quota check-and-increment as a single
// conditional update against the ledger row, so that concurrent creations
// by the same account serialize through the database. It returns
// ErrTaskQuotaExceeded when the account is at or over the cap.
func incrementTaskCount(tx *gorm.DB, accountID, maxTasks int) error {
	res := tx.Model(&database.UsageLedger{}).
		Where("account_id = ? AND total_tasks < ?", accountID, maxTasks).
		Update("total_tasks", gorm.Expr("total_tasks + 1"))
	if res.Error != nil {
		return errors.Wrap(res.Error, "incrementing task count")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Zero rows affected: either the ledger row does not exist yet, or the
	// account is at the cap.
	var ledger database.UsageLedger
	err := tx.Where("account_id = ?", accountID).First(&ledger).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		if maxTasks < 1 {
			return ErrTaskQuotaExceeded
		}

		ledger = database.UsageLedger{AccountID: accountID, TotalTasks: 1}
		if err := tx.Create(&ledger).Error; err != nil {
			return errors.Wrap(err, "creating usage ledger")
		}

		return nil
	} else if err != nil {
		return errors.Wrap(err, "finding usage ledger")
	}

	return ErrTaskQuotaExceeded
}

// decrementTaskCount decrements the account's task counter, flooring at zero
func decrementTaskCount(tx *gorm.DB, accountID int) error {
	res := tx.Model(&database.UsageLedger{}).
		Where("account_id = ? AND total_tasks > 0", accountID).
		Update("total_tasks", gorm.Expr("total_tasks - 1"))
	if res.Error != nil {
		return errors.Wrap(res.Error, "decrementing task count")
	}

	return nil
}

// getOrCreateLedger returns the account's ledger row, creating it if missing
func getOrCreateLedger(tx *gorm.DB, accountID int) (database.UsageLedger, error) {
	var ledger database.UsageLedger
	err := tx.Where("account_id = ?", accountID).First(&ledger).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		ledger = database.UsageLedger{AccountID: accountID}
		if err := tx.Create(&ledger).Error; err != nil {
			return ledger, errors.Wrap(err, "creating usage ledger")
		}

		return ledger, nil
	} else if err != nil {
		return ledger, errors.Wrap(err, "finding usage ledger")
	}

	return ledger, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// dailyCount returns the ledger counter value that applies to the given day.
// The stored counter belongs to the day of the last activity timestamp; on a
// new day it starts over at zero.
func dailyCount(count int, last *time.Time, now time.Time) int {
	if last == nil || !sameDay(*last, now) {
		return 0
	}

	return count
}
