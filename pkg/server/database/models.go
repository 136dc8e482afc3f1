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

package database

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// NullString wraps sql.NullString so that it serializes to a plain JSON string
type NullString struct {
	sql.NullString
}

// ToNullString builds a valid NullString from the given string
func ToNullString(s string) NullString {
	return NullString{sql.NullString{String: s, Valid: true}}
}

// MarshalJSON implements json.Marshaler
func (s NullString) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}

	return json.Marshal(s.String)
}

// UnmarshalJSON implements json.Unmarshaler
func (s *NullString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		s.Valid = false
		s.String = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	s.String = str
	s.Valid = true
	return nil
}

// SubscriptionTier is a model for a pricing plan
type SubscriptionTier struct {
	Model
	Name     string `json:"name" gorm:"uniqueIndex;type:text"`
	Price    int    `json:"price" gorm:"default:0"`
	Currency string `json:"currency" gorm:"default:USD"`
}

// SubscriptionLimits is a model for the per-tier usage caps. Each tier
// has exactly one limits row.
type SubscriptionLimits struct {
	Model
	TierID             int   `json:"tier_id" gorm:"uniqueIndex"`
	MaxTasks           int   `json:"max_tasks" gorm:"default:0"`
	MaxFiles           int   `json:"max_files" gorm:"default:0"`
	FilesPerTask       int   `json:"files_per_task" gorm:"default:0"`
	MaxFileSize        int64 `json:"max_file_size" gorm:"default:0"`
	MaxUploadsPerDay   int   `json:"max_uploads_per_day" gorm:"default:0"`
	MaxDownloadsPerDay int   `json:"max_downloads_per_day" gorm:"default:0"`
	RetentionSecs      int   `json:"retention_secs" gorm:"default:0"`
}

// Account is a model for a registered user
type Account struct {
	Model
	UUID          string     `json:"uuid" gorm:"type:text;index"`
	Email         NullString `json:"email" gorm:"uniqueIndex"`
	Password      NullString `json:"-"`
	TierID        int        `json:"-" gorm:"index"`
	EmailVerified bool       `json:"email_verified" gorm:"default:false"`
	OAuth         bool       `json:"-" gorm:"column:oauth;default:false"`
	LastLoginAt   *time.Time `json:"-"`
}

// UsageLedger is a model for the per-account running usage counters.
// The counters, not a COUNT over the tasks table, are the source of
// truth for quota enforcement.
type UsageLedger struct {
	Model
	AccountID            int        `json:"account_id" gorm:"uniqueIndex"`
	TotalTasks           int        `json:"total_tasks" gorm:"default:0"`
	UploadedFilesCount   int        `json:"uploaded_files_count" gorm:"default:0"`
	DownloadedFilesCount int        `json:"downloaded_files_count" gorm:"default:0"`
	LastUploadedAt       *time.Time `json:"last_uploaded_at"`
	LastDownloadedAt     *time.Time `json:"last_downloaded_at"`
}

// Session is a model for the single live credential of an account.
// The unique index on AccountID enforces at most one live session
// per account; re-login replaces the row.
type Session struct {
	Model
	AccountID int       `gorm:"uniqueIndex"`
	Key       string    `gorm:"index"`
	ExpiresAt time.Time
}

// Token is a model for a single-use email token
type Token struct {
	Model
	AccountID int    `gorm:"index"`
	Value     string `gorm:"index"`
	Type      string
	UsedAt    *time.Time
}

// Task is a model for a to-do item
type Task struct {
	Model
	AccountID   int        `json:"account_id" gorm:"index"`
	Title       string     `json:"title" gorm:"index"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
}

// Attachment is a model for a file bound to a task
type Attachment struct {
	Model
	TaskID         int        `json:"task_id" gorm:"index"`
	Name           string     `json:"name"`
	StorageKey     string     `json:"-" gorm:"uniqueIndex;type:text"`
	Size           int64      `json:"size"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	Deleted        bool       `json:"-" gorm:"default:false"`
}
