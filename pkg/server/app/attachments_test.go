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
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/assert"
	"github.com/tasknest/tasknest/pkg/clock"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/testutils"
)

func setupTaskData(t *testing.T, a App, account database.Account, title string) database.Task {
	task, err := a.CreateTask(account, CreateTaskParams{Title: title})
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating task"))
	}

	return task
}

func TestUploadAttachment(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	task := setupTaskData(t, a, account, "write report")

	attachment, err := a.UploadAttachment(account, task, "notes.txt", strings.NewReader("meeting notes"))
	if err != nil {
		t.Fatal(errors.Wrap(err, "uploading attachment"))
	}

	assert.Equal(t, attachment.TaskID, task.ID, "attachment task_id mismatch")
	assert.Equal(t, attachment.Name, "notes.txt", "attachment name mismatch")
	assert.Equal(t, attachment.Size, int64(len("meeting notes")), "attachment size mismatch")
	assert.NotEqual(t, attachment.StorageKey, "", "storage key should have been generated")

	f, err := a.Files.Open(attachment.StorageKey)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening stored payload"))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading stored payload"))
	}
	assert.Equal(t, string(content), "meeting notes", "stored payload mismatch")

	var ledger database.UsageLedger
	testutils.MustExec(t, db.Where("account_id = ?", account.ID).First(&ledger), "finding ledger")
	assert.Equal(t, ledger.UploadedFilesCount, 1, "ledger uploaded_files_count mismatch")
	if ledger.LastUploadedAt == nil {
		t.Error("last_uploaded_at should have been stamped")
	}
}

func TestUploadAttachmentPerTaskCap(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	testutils.SetTierLimits(t, db, account, database.SubscriptionLimits{
		MaxTasks:         50,
		MaxFiles:         100,
		FilesPerTask:     2,
		MaxFileSize:      1024,
		MaxUploadsPerDay: 20,
	})
	task := setupTaskData(t, a, account, "write report")

	for i := 0; i < 2; i++ {
		name := fmt.Sprintf("notes-%d.txt", i)
		if _, err := a.UploadAttachment(account, task, name, strings.NewReader("notes")); err != nil {
			t.Fatal(errors.Wrap(err, "uploading attachment within cap"))
		}
	}

	_, err := a.UploadAttachment(account, task, "one-too-many.txt", strings.NewReader("notes"))
	assert.Equal(t, err, ErrFileQuotaExceeded, "error mismatch")

	var count int64
	testutils.MustExec(t, db.Model(database.Attachment{}).Count(&count), "counting attachments")
	assert.Equal(t, count, int64(2), "the rejected attachment should not have been inserted")
}

func TestUploadAttachmentAccountCap(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	testutils.SetTierLimits(t, db, account, database.SubscriptionLimits{
		MaxTasks:         50,
		MaxFiles:         2,
		FilesPerTask:     5,
		MaxFileSize:      1024,
		MaxUploadsPerDay: 20,
	})

	first := setupTaskData(t, a, account, "write report")
	second := setupTaskData(t, a, account, "book flights")

	if _, err := a.UploadAttachment(account, first, "a.txt", strings.NewReader("a")); err != nil {
		t.Fatal(errors.Wrap(err, "uploading first attachment"))
	}
	if _, err := a.UploadAttachment(account, second, "b.txt", strings.NewReader("b")); err != nil {
		t.Fatal(errors.Wrap(err, "uploading second attachment"))
	}

	_, err := a.UploadAttachment(account, second, "c.txt", strings.NewReader("c"))
	assert.Equal(t, err, ErrFileQuotaExceeded, "error mismatch")
}

func TestUploadAttachmentTooLarge(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	testutils.SetTierLimits(t, db, account, database.SubscriptionLimits{
		MaxTasks:         50,
		MaxFiles:         100,
		FilesPerTask:     5,
		MaxFileSize:      8,
		MaxUploadsPerDay: 20,
	})
	task := setupTaskData(t, a, account, "write report")

	if _, err := a.UploadAttachment(account, task, "at-cap.txt", strings.NewReader("12345678")); err != nil {
		t.Fatal(errors.Wrap(err, "uploading attachment at the size cap"))
	}

	_, err := a.UploadAttachment(account, task, "over-cap.txt", strings.NewReader("123456789"))
	assert.Equal(t, err, ErrFileTooLarge, "error mismatch")

	var count int64
	testutils.MustExec(t, db.Model(database.Attachment{}).Count(&count), "counting attachments")
	assert.Equal(t, count, int64(1), "the oversized attachment should not have been inserted")
}

func TestUploadAttachmentDailyCap(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	testutils.SetTierLimits(t, db, account, database.SubscriptionLimits{
		MaxTasks:         50,
		MaxFiles:         100,
		FilesPerTask:     10,
		MaxFileSize:      1024,
		MaxUploadsPerDay: 2,
	})
	task := setupTaskData(t, a, account, "write report")

	for i := 0; i < 2; i++ {
		name := fmt.Sprintf("notes-%d.txt", i)
		if _, err := a.UploadAttachment(account, task, name, strings.NewReader("notes")); err != nil {
			t.Fatal(errors.Wrap(err, "uploading attachment within the daily cap"))
		}
	}

	_, err := a.UploadAttachment(account, task, "third.txt", strings.NewReader("notes"))
	assert.Equal(t, err, ErrFileQuotaExceeded, "error mismatch")

	// the cap resets on the next day
	c := a.Clock.(*clock.Mock)
	c.SetNow(c.Now().Add(24 * time.Hour))

	if _, err := a.UploadAttachment(account, task, "third.txt", strings.NewReader("notes")); err != nil {
		t.Fatal(errors.Wrap(err, "uploading attachment after the daily reset"))
	}
}

func TestDownloadAttachment(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	task := setupTaskData(t, a, account, "write report")

	attachment, err := a.UploadAttachment(account, task, "notes.txt", strings.NewReader("meeting notes"))
	if err != nil {
		t.Fatal(errors.Wrap(err, "uploading attachment"))
	}

	f, err := a.DownloadAttachment(account, attachment)
	if err != nil {
		t.Fatal(errors.Wrap(err, "downloading attachment"))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading payload"))
	}
	assert.Equal(t, string(content), "meeting notes", "payload mismatch")

	var ledger database.UsageLedger
	testutils.MustExec(t, db.Where("account_id = ?", account.ID).First(&ledger), "finding ledger")
	assert.Equal(t, ledger.DownloadedFilesCount, 1, "ledger downloaded_files_count mismatch")

	var record database.Attachment
	testutils.MustExec(t, db.Where("id = ?", attachment.ID).First(&record), "finding attachment")
	if record.LastAccessedAt == nil {
		t.Error("last_accessed_at should have been stamped")
	}
}

func TestDownloadAttachmentDailyCap(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	testutils.SetTierLimits(t, db, account, database.SubscriptionLimits{
		MaxTasks:           50,
		MaxFiles:           100,
		FilesPerTask:       10,
		MaxFileSize:        1024,
		MaxUploadsPerDay:   20,
		MaxDownloadsPerDay: 2,
	})
	task := setupTaskData(t, a, account, "write report")

	attachment, err := a.UploadAttachment(account, task, "notes.txt", strings.NewReader("meeting notes"))
	if err != nil {
		t.Fatal(errors.Wrap(err, "uploading attachment"))
	}

	for i := 0; i < 2; i++ {
		f, err := a.DownloadAttachment(account, attachment)
		if err != nil {
			t.Fatal(errors.Wrap(err, "downloading within the daily cap"))
		}
		f.Close()
	}

	_, err = a.DownloadAttachment(account, attachment)
	assert.Equal(t, err, ErrFileQuotaExceeded, "error mismatch")
}

func TestDeleteAttachment(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	task := setupTaskData(t, a, account, "write report")

	attachment, err := a.UploadAttachment(account, task, "notes.txt", strings.NewReader("meeting notes"))
	if err != nil {
		t.Fatal(errors.Wrap(err, "uploading attachment"))
	}

	if err := a.DeleteAttachment(attachment); err != nil {
		t.Fatal(errors.Wrap(err, "deleting attachment"))
	}

	var record database.Attachment
	testutils.MustExec(t, db.Where("id = ?", attachment.ID).First(&record), "finding attachment")
	assert.Equal(t, record.Deleted, true, "attachment should have been marked deleted")

	_, err = a.GetTaskAttachmentByID(task.ID, attachment.ID)
	assert.Equal(t, errors.Cause(err), ErrNotFound, "deleted attachment should not be readable")

	if _, err := a.Files.Open(attachment.StorageKey); err == nil {
		t.Error("stored payload should have been removed")
	}
}

func TestDeleteAttachmentRestoresQuota(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	testutils.SetTierLimits(t, db, account, database.SubscriptionLimits{
		MaxTasks:         100,
		MaxFiles:         100,
		FilesPerTask:     1,
		MaxFileSize:      1024,
		MaxUploadsPerDay: 100,
	})
	task := setupTaskData(t, a, account, "write report")

	attachment, err := a.UploadAttachment(account, task, "notes.txt", strings.NewReader("meeting notes"))
	if err != nil {
		t.Fatal(errors.Wrap(err, "uploading attachment"))
	}

	if _, err := a.UploadAttachment(account, task, "extra.txt", strings.NewReader("over the cap")); errors.Cause(err) != ErrFileQuotaExceeded {
		t.Fatalf("expected quota error, got %v", err)
	}

	if err := a.DeleteAttachment(attachment); err != nil {
		t.Fatal(errors.Wrap(err, "deleting attachment"))
	}

	// the tombstone does not count against the per-task cap
	if _, err := a.UploadAttachment(account, task, "extra.txt", strings.NewReader("fits again")); err != nil {
		t.Fatal(errors.Wrap(err, "uploading after delete"))
	}
}

func TestGetTaskAttachmentByID(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	a := NewTest(t, db)

	account := testutils.SetupAccountData(db, "alice@example.com", "pass1234")
	task := setupTaskData(t, a, account, "write report")
	other := setupTaskData(t, a, account, "book flights")

	attachment, err := a.UploadAttachment(account, task, "notes.txt", strings.NewReader("meeting notes"))
	if err != nil {
		t.Fatal(errors.Wrap(err, "uploading attachment"))
	}

	found, err := a.GetTaskAttachmentByID(task.ID, attachment.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "finding attachment"))
	}
	assert.Equal(t, found.ID, attachment.ID, "attachment id mismatch")

	// an attachment cannot be reached through a different task
	_, err = a.GetTaskAttachmentByID(other.ID, attachment.ID)
	assert.Equal(t, err, ErrNotFound, "error mismatch")
}
