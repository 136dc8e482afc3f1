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
	"io"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/filestore"
	"github.com/tasknest/tasknest/pkg/server/helpers"
	"gorm.io/gorm"
)

// GetTaskAttachmentByID retrieves an attachment scoped to the given task.
// Missing and not-owned are the same ErrNotFound.
func (a *App) GetTaskAttachmentByID(taskID, attachmentID int) (database.Attachment, error) {
	var attachment database.Attachment
	err := a.DB.
		Where("id = ? AND task_id = ? AND deleted = ?", attachmentID, taskID, false).
		First(&attachment).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return attachment, ErrNotFound
	} else if err != nil {
		return attachment, errors.Wrap(err, "finding attachment")
	}

	return attachment, nil
}

func (a *App) checkUploadQuota(account database.Account, task database.Task, limits database.SubscriptionLimits) error {
	var perTask int64
	if err := a.DB.Model(&database.Attachment{}).
		Where("task_id = ? AND deleted = ?", task.ID, false).
		Count(&perTask).Error; err != nil {
		return errors.Wrap(err, "counting task attachments")
	}
	if perTask >= int64(limits.FilesPerTask) {
		return ErrFileQuotaExceeded
	}

	var total int64
	if err := a.DB.Model(&database.Attachment{}).
		Joins("INNER JOIN tasks ON tasks.id = attachments.task_id").
		Where("tasks.account_id = ? AND attachments.deleted = ?", account.ID, false).
		Count(&total).Error; err != nil {
		return errors.Wrap(err, "counting account attachments")
	}
	if total >= int64(limits.MaxFiles) {
		return ErrFileQuotaExceeded
	}

	ledger, err := getOrCreateLedger(a.DB, account.ID)
	if err != nil {
		return err
	}
	if dailyCount(ledger.UploadedFilesCount, ledger.LastUploadedAt, a.Clock.Now()) >= limits.MaxUploadsPerDay {
		return ErrFileQuotaExceeded
	}

	return nil
}

// UploadAttachment stores the payload and creates the attachment record,
// enforcing the tier's per-task, total, size and daily upload caps.
func (a *App) UploadAttachment(account database.Account, task database.Task, filename string, r io.Reader) (database.Attachment, error) {
	zero := database.Attachment{}

	limits, err := getLimits(a.DB, account)
	if err != nil {
		return zero, err
	}

	if err := a.checkUploadQuota(account, task, limits); err != nil {
		return zero, err
	}

	key, err := helpers.GenUUID()
	if err != nil {
		return zero, err
	}

	// Read one byte past the cap to distinguish at-cap from over-cap
	written, err := a.Files.Save(key, io.LimitReader(r, limits.MaxFileSize+1))
	if err != nil {
		return zero, errors.Wrap(err, "storing payload")
	}
	if written > limits.MaxFileSize {
		a.Files.Remove(key)
		return zero, ErrFileTooLarge
	}

	now := a.Clock.Now()

	tx := a.DB.Begin()

	attachment := database.Attachment{
		TaskID:     task.ID,
		Name:       filename,
		StorageKey: key,
		Size:       written,
	}
	if err := tx.Create(&attachment).Error; err != nil {
		tx.Rollback()
		a.Files.Remove(key)
		return zero, errors.Wrap(err, "inserting attachment")
	}

	ledger, err := getOrCreateLedger(tx, account.ID)
	if err != nil {
		tx.Rollback()
		a.Files.Remove(key)
		return zero, err
	}

	uploadedToday := dailyCount(ledger.UploadedFilesCount, ledger.LastUploadedAt, now)
	if err := tx.Model(&ledger).Updates(map[string]interface{}{
		"uploaded_files_count": uploadedToday + 1,
		"last_uploaded_at":     &now,
	}).Error; err != nil {
		tx.Rollback()
		a.Files.Remove(key)
		return zero, errors.Wrap(err, "updating usage ledger")
	}

	tx.Commit()

	return attachment, nil
}

// DownloadAttachment opens the payload for the given attachment, stamps the
// access time and counts the download against the daily cap. The caller is
// responsible for closing the reader.
func (a *App) DownloadAttachment(account database.Account, attachment database.Attachment) (io.ReadCloser, error) {
	limits, err := getLimits(a.DB, account)
	if err != nil {
		return nil, err
	}

	now := a.Clock.Now()

	ledger, err := getOrCreateLedger(a.DB, account.ID)
	if err != nil {
		return nil, err
	}

	downloadedToday := dailyCount(ledger.DownloadedFilesCount, ledger.LastDownloadedAt, now)
	if downloadedToday >= limits.MaxDownloadsPerDay {
		return nil, ErrFileQuotaExceeded
	}

	f, err := a.Files.Open(attachment.StorageKey)
	if stderrors.Is(errors.Cause(err), filestore.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	tx := a.DB.Begin()
	if err := tx.Model(&attachment).Update("last_accessed_at", &now).Error; err != nil {
		tx.Rollback()
		f.Close()
		return nil, errors.Wrap(err, "updating attachment access time")
	}
	if err := tx.Model(&ledger).Updates(map[string]interface{}{
		"downloaded_files_count": downloadedToday + 1,
		"last_downloaded_at":     &now,
	}).Error; err != nil {
		tx.Rollback()
		f.Close()
		return nil, errors.Wrap(err, "updating usage ledger")
	}
	tx.Commit()

	return f, nil
}

// DeleteAttachment marks the attachment deleted and removes its stored
// payload. The record survives as a tombstone; every read and quota path
// filters on the deleted flag, so the freed capacity is reusable. The flag
// is persisted before the unlink: a soft-deleted record with orphaned bytes
// is invisible to readers, while bytes gone before the flag would surface
// as a broken download.
func (a *App) DeleteAttachment(attachment database.Attachment) error {
	if err := a.DB.Model(&attachment).Update("deleted", true).Error; err != nil {
		return errors.Wrap(err, "marking attachment deleted")
	}

	if err := a.Files.Remove(attachment.StorageKey); err != nil {
		return errors.Wrap(err, "removing attachment payload")
	}

	return nil
}
