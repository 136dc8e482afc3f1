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
	"github.com/tasknest/tasknest/pkg/server/log"
	"gorm.io/gorm"
)

// CreateTaskParams is the parameters for creating a task
type CreateTaskParams struct {
	Title       string
	Description string
	DueAt       *time.Time
}

// CreateTask creates a task for the account after passing the quota gate.
// The ledger increment and the task insert run in one transaction, so a
// failed insert does not leak quota.
func (a *App) CreateTask(account database.Account, p CreateTaskParams) (database.Task, error) {
	if p.Title == "" {
		return database.Task{}, ErrTitleRequired
	}

	limits, err := getLimits(a.DB, account)
	if err != nil {
		return database.Task{}, err
	}

	tx := a.DB.Begin()

	if err := incrementTaskCount(tx, account.ID, limits.MaxTasks); err != nil {
		tx.Rollback()
		return database.Task{}, err
	}

	task := database.Task{
		AccountID:   account.ID,
		Title:       p.Title,
		Description: p.Description,
		DueAt:       p.DueAt,
	}
	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		return database.Task{}, errors.Wrap(err, "inserting task")
	}

	tx.Commit()

	return task, nil
}

// UpdateTaskParams is the parameters for partially updating a task.
// Nil fields are left unchanged.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	DueAt       *time.Time
	Completed   *bool
}

// UpdateTask applies a partial update to the task. Completing a task stamps
// completion time with the current clock; un-completing clears it.
func (a *App) UpdateTask(account database.Account, task database.Task, p UpdateTaskParams) (database.Task, error) {
	if p.Title != nil {
		if *p.Title == "" {
			return task, ErrTitleRequired
		}
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.DueAt != nil {
		task.DueAt = p.DueAt
	}
	if p.Completed != nil && *p.Completed != task.Completed {
		task.Completed = *p.Completed

		if task.Completed {
			now := a.Clock.Now()
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}

	task.UpdatedAt = a.Clock.Now()

	// Save with Select so that clearing completed_at to NULL persists
	if err := a.DB.Model(&task).
		Select("title", "description", "due_at", "completed", "completed_at", "updated_at").
		Updates(map[string]interface{}{
			"title":        task.Title,
			"description":  task.Description,
			"due_at":       task.DueAt,
			"completed":    task.Completed,
			"completed_at": task.CompletedAt,
			"updated_at":   task.UpdatedAt,
		}).Error; err != nil {
		return task, errors.Wrap(err, "updating task")
	}

	return task, nil
}

// DeleteTask deletes the task, its attachments and their stored payloads,
// and releases the quota capacity. Record deletion and the ledger decrement
// run in one transaction. Payloads are unlinked only after the commit, so a
// failed unlink can never leave committed-away records pointing at bytes
// that are already gone; filestore.Remove tolerates missing files, keeping
// the unlinks repeatable.
func (a *App) DeleteTask(account database.Account, task database.Task) error {
	var attachments []database.Attachment
	if err := a.DB.Where("task_id = ?", task.ID).Find(&attachments).Error; err != nil {
		return errors.Wrap(err, "finding attachments")
	}

	tx := a.DB.Begin()

	if err := tx.Where("task_id = ?", task.ID).Delete(&database.Attachment{}).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "deleting attachments")
	}
	if err := tx.Where("id = ? AND account_id = ?", task.ID, account.ID).Delete(&database.Task{}).Error; err != nil {
		tx.Rollback()
		return errors.Wrap(err, "deleting task")
	}
	if err := decrementTaskCount(tx, account.ID); err != nil {
		tx.Rollback()
		return err
	}

	tx.Commit()

	for _, attachment := range attachments {
		if err := a.Files.Remove(attachment.StorageKey); err != nil {
			log.ErrorWrap(err, "removing attachment payload")
		}
	}

	return nil
}

// GetAccountTaskByID retrieves a task scoped by both the task id and the
// account id, so that a non-owner cannot tell an existing task from a
// missing one.
func (a *App) GetAccountTaskByID(accountID, taskID int) (database.Task, error) {
	var task database.Task
	err := a.DB.Where("id = ? AND account_id = ?", taskID, accountID).First(&task).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return task, ErrNotFound
	} else if err != nil {
		return task, errors.Wrap(err, "finding task")
	}

	return task, nil
}

// GetTasksParams is params for finding tasks
type GetTasksParams struct {
	Search  string
	Page    int
	PerPage int
}

// GetTasksResult is the result of getting tasks
type GetTasksResult struct {
	Tasks []database.Task
	Total int64
}

func getTasksBaseQuery(db *gorm.DB, accountID int, q GetTasksParams) *gorm.DB {
	conn := db.Where("tasks.account_id = ?", accountID)

	if q.Search != "" {
		conn = conn.Where("tasks.title LIKE ?", "%"+q.Search+"%")
	}

	return conn
}

func paginate(conn *gorm.DB, page, perPage int) *gorm.DB {
	if page > 0 {
		offset := perPage * (page - 1)
		conn = conn.Offset(offset)
	}

	return conn.Limit(perPage)
}

// GetTasks returns a page of matching tasks along with the total count
func (a *App) GetTasks(accountID int, params GetTasksParams) (GetTasksResult, error) {
	if params.PerPage <= 0 {
		params.PerPage = 5
	}

	conn := getTasksBaseQuery(a.DB, accountID, params)

	var total int64
	if err := conn.Model(database.Task{}).Count(&total).Error; err != nil {
		return GetTasksResult{}, errors.Wrap(err, "counting total")
	}

	tasks := []database.Task{}
	if total != 0 {
		conn = conn.Order("tasks.updated_at DESC, tasks.id DESC")
		conn = paginate(conn, params.Page, params.PerPage)

		if err := conn.Find(&tasks).Error; err != nil {
			return GetTasksResult{}, errors.Wrap(err, "finding tasks")
		}
	}

	return GetTasksResult{
		Tasks: tasks,
		Total: total,
	}, nil
}
