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

// Task is a result of PresentTask
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PresentTask presents a task
func PresentTask(task database.Task) Task {
	return Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		DueAt:       formatTSPtr(task.DueAt),
		Completed:   task.Completed,
		CompletedAt: formatTSPtr(task.CompletedAt),
		CreatedAt:   FormatTS(task.CreatedAt),
		UpdatedAt:   FormatTS(task.UpdatedAt),
	}
}

// PresentTasks presents tasks
func PresentTasks(tasks []database.Task) []Task {
	ret := []Task{}

	for _, task := range tasks {
		p := PresentTask(task)
		ret = append(ret, p)
	}

	return ret
}
