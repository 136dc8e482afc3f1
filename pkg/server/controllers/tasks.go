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
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/app"
	"github.com/tasknest/tasknest/pkg/server/context"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/presenters"
)

// NewTasks creates a new Tasks controller
func NewTasks(app *app.App) *Tasks {
	return &Tasks{
		app: app,
	}
}

// Tasks is a controller for the task CRUD
type Tasks struct {
	app *app.App
}

// getTaskFromPath resolves the {taskID} path variable into a task owned by
// the authenticated account
func getTaskFromPath(a *app.App, r *http.Request) (database.Task, error) {
	account := context.Account(r.Context())

	vars := mux.Vars(r)
	taskID, err := strconv.Atoi(vars["taskID"])
	if err != nil {
		return database.Task{}, app.ErrNotFound
	}

	return a.GetAccountTaskByID(account.ID, taskID)
}

type createTaskPayload struct {
	Title       string     `schema:"title" json:"title"`
	Description string     `schema:"description" json:"description"`
	DueAt       *time.Time `schema:"due_at" json:"due_at"`
}

// Create handles task creation
func (t *Tasks) Create(w http.ResponseWriter, r *http.Request) {
	account := context.Account(r.Context())

	var form createTaskPayload
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	task, err := t.app.CreateTask(*account, app.CreateTaskParams{
		Title:       form.Title,
		Description: form.Description,
		DueAt:       form.DueAt,
	})
	if err != nil {
		handleJSONError(w, err, "creating task")
		return
	}

	respondJSON(w, http.StatusCreated, payload{
		"task": presenters.PresentTask(task),
	}, "task created")
}

// Index handles task listing with search and pagination
func (t *Tasks) Index(w http.ResponseWriter, r *http.Request) {
	account := context.Account(r.Context())

	params := app.GetTasksParams{
		Search:  r.URL.Query().Get("search"),
		Page:    getIntQuery(r, "page"),
		PerPage: getIntQuery(r, "per_page"),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = 5
	}

	result, err := t.app.GetTasks(account.ID, params)
	if err != nil {
		handleJSONError(w, err, "getting tasks")
		return
	}

	from := (params.Page-1)*params.PerPage + 1
	if result.Total == 0 {
		from = 0
	}
	to := from + len(result.Tasks) - 1
	if to < 0 {
		to = 0
	}

	respondJSON(w, http.StatusOK, payload{
		"tasks": presenters.PresentTasks(result.Tasks),
		"total": result.Total,
		"from":  from,
		"to":    to,
	}, "tasks")
}

// Show handles fetching a single task
func (t *Tasks) Show(w http.ResponseWriter, r *http.Request) {
	task, err := getTaskFromPath(t.app, r)
	if err != nil {
		handleJSONError(w, err, "finding task")
		return
	}

	respondJSON(w, http.StatusOK, payload{
		"task": presenters.PresentTask(task),
	}, "task")
}

type updateTaskPayload struct {
	Title       *string    `schema:"title" json:"title"`
	Description *string    `schema:"description" json:"description"`
	DueAt       *time.Time `schema:"due_at" json:"due_at"`
	Completed   *bool      `schema:"completed" json:"completed"`
}

// Update handles a partial task update
func (t *Tasks) Update(w http.ResponseWriter, r *http.Request) {
	account := context.Account(r.Context())

	task, err := getTaskFromPath(t.app, r)
	if err != nil {
		handleJSONError(w, err, "finding task")
		return
	}

	var form updateTaskPayload
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	task, err = t.app.UpdateTask(*account, task, app.UpdateTaskParams{
		Title:       form.Title,
		Description: form.Description,
		DueAt:       form.DueAt,
		Completed:   form.Completed,
	})
	if err != nil {
		handleJSONError(w, err, "updating task")
		return
	}

	respondJSON(w, http.StatusOK, payload{
		"task": presenters.PresentTask(task),
	}, "task updated")
}

// Delete handles task deletion
func (t *Tasks) Delete(w http.ResponseWriter, r *http.Request) {
	account := context.Account(r.Context())

	task, err := getTaskFromPath(t.app, r)
	if err != nil {
		handleJSONError(w, err, "finding task")
		return
	}

	if err := t.app.DeleteTask(*account, task); err != nil {
		handleJSONError(w, errors.Wrap(err, "deleting task"), "deleting task")
		return
	}

	respondJSON(w, http.StatusOK, nil, "task deleted")
}
