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
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tasknest/tasknest/pkg/server/app"
	"github.com/tasknest/tasknest/pkg/server/context"
	"github.com/tasknest/tasknest/pkg/server/database"
	"github.com/tasknest/tasknest/pkg/server/log"
	"github.com/tasknest/tasknest/pkg/server/presenters"
)

// multipartMaxMemory caps how much of an upload is buffered in memory before
// spilling to a temp file
const multipartMaxMemory = 8 << 20

// NewAttachments creates a new Attachments controller
func NewAttachments(app *app.App) *Attachments {
	return &Attachments{
		app: app,
	}
}

// Attachments is a controller for task file attachments
type Attachments struct {
	app *app.App
}

func getAttachmentFromPath(a *app.App, r *http.Request, task database.Task) (database.Attachment, error) {
	vars := mux.Vars(r)
	fileID, err := strconv.Atoi(vars["fileID"])
	if err != nil {
		return database.Attachment{}, app.ErrNotFound
	}

	return a.GetTaskAttachmentByID(task.ID, fileID)
}

// Create handles a multipart attachment upload
func (c *Attachments) Create(w http.ResponseWriter, r *http.Request) {
	account := context.Account(r.Context())

	task, err := getTaskFromPath(c.app, r)
	if err != nil {
		handleJSONError(w, err, "finding task")
		return
	}

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		respondError(w, "invalid multipart payload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "the file field is missing", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	attachment, err := c.app.UploadAttachment(*account, task, name, file)
	if err != nil {
		handleJSONError(w, err, "uploading attachment")
		return
	}

	respondJSON(w, http.StatusCreated, payload{
		"file": presenters.PresentAttachment(attachment),
	}, "file uploaded")
}

// Show streams the attachment payload back to the client
func (c *Attachments) Show(w http.ResponseWriter, r *http.Request) {
	account := context.Account(r.Context())

	task, err := getTaskFromPath(c.app, r)
	if err != nil {
		handleJSONError(w, err, "finding task")
		return
	}

	attachment, err := getAttachmentFromPath(c.app, r, task)
	if err != nil {
		handleJSONError(w, err, "finding attachment")
		return
	}

	f, err := c.app.DownloadAttachment(*account, attachment)
	if err != nil {
		handleJSONError(w, err, "downloading attachment")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Name))

	if _, err := io.Copy(w, f); err != nil {
		log.ErrorWrap(err, "streaming attachment")
	}
}

// Delete removes an attachment and its stored payload
func (c *Attachments) Delete(w http.ResponseWriter, r *http.Request) {
	task, err := getTaskFromPath(c.app, r)
	if err != nil {
		handleJSONError(w, err, "finding task")
		return
	}

	attachment, err := getAttachmentFromPath(c.app, r, task)
	if err != nil {
		handleJSONError(w, err, "finding attachment")
		return
	}

	if err := c.app.DeleteAttachment(attachment); err != nil {
		handleJSONError(w, err, "deleting attachment")
		return
	}

	respondJSON(w, http.StatusOK, nil, "file deleted")
}
