package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/0-Luminous/taskflow/internal/model"
)

func taskBetween(start, end time.Time) model.Task {
	return model.Task{ID: uuid.New(), Title: "t", StartTime: start, EndTime: end}
}

func dayAt(hour, minute int) time.Time {
	return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
}

func TestValidateRejectsEndBeforeStart(t *testing.T) {
	result := Validate(taskBetween(dayAt(10, 0), dayAt(9, 30)), DefaultPolicy())

	assert.False(t, result.IsValid())
	assert.Contains(t, result.Errors, InvalidTimeRange)
}

func TestValidateRejectsZeroDuration(t *testing.T) {
	result := Validate(taskBetween(dayAt(10, 0), dayAt(10, 0)), DefaultPolicy())

	assert.False(t, result.IsValid())
	assert.Contains(t, result.Errors, InvalidTimeRange)
}

func TestValidateRejectsTooShort(t *testing.T) {
	start := dayAt(10, 0)
	result := Validate(taskBetween(start, start.Add(30*time.Second)), DefaultPolicy())

	assert.False(t, result.IsValid())
	assert.Contains(t, result.Errors, TaskTooShort)
}

func TestValidateRejectsTooLong(t *testing.T) {
	result := Validate(taskBetween(dayAt(8, 0), dayAt(21, 0)), DefaultPolicy())

	assert.False(t, result.IsValid())
	assert.Contains(t, result.Errors, TaskTooLong)
}

func TestValidateWarningsDoNotBlock(t *testing.T) {
	result := Validate(taskBetween(dayAt(23, 0), dayAt(23, 10)), DefaultPolicy())

	assert.True(t, result.IsValid())
	assert.Contains(t, result.Warnings, ShortTask)
	assert.Contains(t, result.Warnings, LateNightTask)
}

func TestValidateEarlyMorningWarning(t *testing.T) {
	result := Validate(taskBetween(dayAt(5, 0), dayAt(6, 0)), DefaultPolicy())

	assert.True(t, result.IsValid())
	assert.Contains(t, result.Warnings, EarlyMorningTask)
}

func TestValidateCleanTask(t *testing.T) {
	result := Validate(taskBetween(dayAt(9, 0), dayAt(10, 0)), DefaultPolicy())

	assert.True(t, result.IsValid())
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateCustomPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxDuration = 2 * time.Hour

	result := Validate(taskBetween(dayAt(9, 0), dayAt(12, 0)), policy)

	assert.Contains(t, result.Errors, TaskTooLong)
}
