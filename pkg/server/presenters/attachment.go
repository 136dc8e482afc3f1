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

package presenters

import (
	"time"

	"github.com/tasknest/tasknest/pkg/server/database"
)

// Attachment is a result of PresentAttachment
type Attachment struct {
	ID             int        `json:"id"`
	TaskID         int        `json:"task_id"`
	Name           string     `json:"name"`
	Size           int64      `json:"size"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	UploadedAt     time.Time  `json:"uploaded_at"`
}

// PresentAttachment presents an attachment
func PresentAttachment(attachment database.Attachment) Attachment {
	return Attachment{
		ID:             attachment.ID,
		TaskID:         attachment.TaskID,
		Name:           attachment.Name,
		Size:           attachment.Size,
		LastAccessedAt: formatTSPtr(attachment.LastAccessedAt),
		UploadedAt:     FormatTS(attachment.CreatedAt),
	}
}

// PresentAttachments presents attachments
func PresentAttachments(attachments []database.Attachment) []Attachment {
	ret := []Attachment{}

	for _, attachment := range attachments {
		p := PresentAttachment(attachment)
		ret = append(ret, p)
	}

	return ret
}
