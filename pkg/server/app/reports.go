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
	"time"

	"github.com/pkg/errors"
	"github.com/tasknest/tasknest/pkg/server/database"
)

// ReportKind identifies a named aggregation over an account's task history
type ReportKind int

const (
	// ReportTasksStatus is a summary of completed vs incomplete task counts
	ReportTasksStatus ReportKind = iota
	// ReportTasksCompletionAvg is the average number of tasks completed per
	// distinct completion date
	ReportTasksCompletionAvg
	// ReportIncompleteTasksCount is the count of incomplete tasks
	ReportIncompleteTasksCount
	// ReportMaxCompletionDay is the completion date with the most completed tasks
	ReportMaxCompletionDay
	// ReportMaxCreatedWeekday is the per-weekday breakdown of task creation
	ReportMaxCreatedWeekday
)

// reportNames maps the wire name of each report to its kind
var reportNames = map[string]ReportKind{
	"tasks-status":                  ReportTasksStatus,
	"tasks-completion-avg":          ReportTasksCompletionAvg,
	"incomplete-tasks-count":        ReportIncompleteTasksCount,
	"max-completion-count-day-wise": ReportMaxCompletionDay,
	"max-created-count-day-wise":    ReportMaxCreatedWeekday,
}

// ParseReportKind resolves a report name into a kind. An unknown name is
// ErrInvalidReportName, distinct from a valid report over zero tasks.
func ParseReportKind(name string) (ReportKind, error) {
	kind, ok := reportNames[name]
	if !ok {
		return 0, ErrInvalidReportName
	}

	return kind, nil
}

func (k ReportKind) String() string {
	for name, kind := range reportNames {
		if kind == k {
			return name
		}
	}

	return "unknown"
}

// TasksStatusReport is a summary of an account's task completion status
type TasksStatusReport struct {
	Total      int64 `json:"total"`
	Complete   int64 `json:"complete"`
	Incomplete int64 `json:"incomplete"`
}

// TasksCompletionAvgReport is the average number of completed tasks per
// distinct completion date
type TasksCompletionAvgReport struct {
	Average float64 `json:"day_wise_completion_avg"`
}

// IncompleteTasksCountReport is the count of an account's incomplete tasks
type IncompleteTasksCountReport struct {
	Count int64 `json:"incomplete_tasks_count"`
}

// MaxCompletionDayReport is the completion date with the highest completed
// task count. Date is empty when the account has no completed tasks.
type MaxCompletionDayReport struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CreatedWeekdayReport maps weekday abbreviations (Sun..Sat) to the number
// of tasks created on that weekday
type CreatedWeekdayReport map[string]int

// GenerateReport runs the aggregation of the given kind for the account
func (a *App) GenerateReport(account database.Account, kind ReportKind) (interface{}, error) {
	switch kind {
	case ReportTasksStatus:
		return a.genTasksStatusReport(account)
	case ReportTasksCompletionAvg:
		return a.genTasksCompletionAvgReport(account)
	case ReportIncompleteTasksCount:
		return a.genIncompleteTasksCountReport(account)
	case ReportMaxCompletionDay:
		return a.genMaxCompletionDayReport(account)
	case ReportMaxCreatedWeekday:
		return a.genMaxCreatedWeekdayReport(account)
	}

	return nil, ErrInvalidReportName
}

func (a *App) genTasksStatusReport(account database.Account) (TasksStatusReport, error) {
	var report TasksStatusReport

	if err := a.DB.Model(&database.Task{}).
		Where("account_id = ? AND completed = ?", account.ID, true).
		Count(&report.Complete).Error; err != nil {
		return report, errors.Wrap(err, "counting completed tasks")
	}
	if err := a.DB.Model(&database.Task{}).
		Where("account_id = ? AND completed = ?", account.ID, false).
		Count(&report.Incomplete).Error; err != nil {
		return report, errors.Wrap(err, "counting incomplete tasks")
	}

	report.Total = report.Complete + report.Incomplete

	return report, nil
}

// completionDates returns the completion timestamps of the account's
// completed tasks
func (a *App) completionDates(account database.Account) ([]time.Time, error) {
	var dates []time.Time
	if err := a.DB.Model(&database.Task{}).
		Where("account_id = ? AND completed = ? AND completed_at IS NOT NULL", account.ID, true).
		Pluck("completed_at", &dates).Error; err != nil {
		return nil, errors.Wrap(err, "fetching completion dates")
	}

	return dates, nil
}

// bucketByDate groups timestamps into UTC calendar-date buckets
func bucketByDate(timestamps []time.Time) map[string]int {
	buckets := map[string]int{}
	for _, ts := range timestamps {
		buckets[ts.UTC().Format("2006-01-02")]++
	}

	return buckets
}

func (a *App) genTasksCompletionAvgReport(account database.Account) (TasksCompletionAvgReport, error) {
	dates, err := a.completionDates(account)
	if err != nil {
		return TasksCompletionAvgReport{}, err
	}

	buckets := bucketByDate(dates)
	if len(buckets) == 0 {
		return TasksCompletionAvgReport{}, nil
	}

	return TasksCompletionAvgReport{
		Average: float64(len(dates)) / float64(len(buckets)),
	}, nil
}

func (a *App) genIncompleteTasksCountReport(account database.Account) (IncompleteTasksCountReport, error) {
	var report IncompleteTasksCountReport
	if err := a.DB.Model(&database.Task{}).
		Where("account_id = ? AND completed = ?", account.ID, false).
		Count(&report.Count).Error; err != nil {
		return report, errors.Wrap(err, "counting incomplete tasks")
	}

	return report, nil
}

func (a *App) genMaxCompletionDayReport(account database.Account) (MaxCompletionDayReport, error) {
	dates, err := a.completionDates(account)
	if err != nil {
		return MaxCompletionDayReport{}, err
	}

	var report MaxCompletionDayReport
	// Earliest date wins a tie so that the result is deterministic
	for date, count := range bucketByDate(dates) {
		if count > report.Count || (count == report.Count && (report.Date == "" || date < report.Date)) {
			report.Date = date
			report.Count = count
		}
	}

	return report, nil
}

var weekdayAbbrs = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (a *App) genMaxCreatedWeekdayReport(account database.Account) (CreatedWeekdayReport, error) {
	var dates []time.Time
	if err := a.DB.Model(&database.Task{}).
		Where("account_id = ?", account.ID).
		Pluck("created_at", &dates).Error; err != nil {
		return nil, errors.Wrap(err, "fetching creation dates")
	}

	report := CreatedWeekdayReport{}
	for _, abbr := range weekdayAbbrs {
		report[abbr] = 0
	}
	for _, ts := range dates {
		report[weekdayAbbrs[int(ts.UTC().Weekday())]]++
	}

	return report, nil
}
