package schedule

import (
	"time"

	"github.com/0-Luminous/taskflow/internal/model"
)

type ValidationError string

const (
	InvalidTimeRange ValidationError = "invalid_time_range"
	TaskTooShort     ValidationError = "task_too_short"
	TaskTooLong      ValidationError = "task_too_long"
)

type ValidationWarning string

const (
	ShortTask        ValidationWarning = "short_task"
	LateNightTask    ValidationWarning = "late_night_task"
	EarlyMorningTask ValidationWarning = "early_morning_task"
)

// ValidationResult separates blocking errors from informational
// warnings. Warnings never prevent a write.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Policy holds the duration and time-of-day limits a task is checked
// against.
type Policy struct {
	MinDuration     time.Duration
	MaxDuration     time.Duration
	ShortThreshold  time.Duration
	LateNightHour   int
	EarlyMorningEnd int
}

func DefaultPolicy() Policy {
	return Policy{
		MinDuration:     time.Minute,
		MaxDuration:     12 * time.Hour,
		ShortThreshold:  15 * time.Minute,
		LateNightHour:   22,
		EarlyMorningEnd: 6,
	}
}

// Validate checks a single task against the policy. It has no side
// effects and never consults other tasks.
func Validate(task model.Task, policy Policy) ValidationResult {
	var result ValidationResult

	if !task.EndTime.After(task.StartTime) {
		result.Errors = append(result.Errors, InvalidTimeRange)
		return result
	}

	duration := task.Duration()
	if duration < policy.MinDuration {
		result.Errors = append(result.Errors, TaskTooShort)
	}
	if duration > policy.MaxDuration {
		result.Errors = append(result.Errors, TaskTooLong)
	}

	if duration < policy.ShortThreshold {
		result.Warnings = append(result.Warnings, ShortTask)
	}
	if task.StartTime.Hour() >= policy.LateNightHour {
		result.Warnings = append(result.Warnings, LateNightTask)
	}
	if task.StartTime.Hour() < policy.EarlyMorningEnd {
		result.Warnings = append(result.Warnings, EarlyMorningTask)
	}

	return result
}
