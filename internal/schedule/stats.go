package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/0-Luminous/taskflow/internal/model"
)

const secondsPerDay = 24 * 60 * 60

// TaskStatistics summarizes one day's schedule. BusyPercentage is not
// clamped: overlapping tasks are a valid transient state before
// resolution and can push it past 100.
type TaskStatistics struct {
	Date                 time.Time
	TotalTasks           int
	CompletedTasks       int
	TotalDuration        time.Duration
	CompletedDuration    time.Duration
	AverageTaskDuration  time.Duration
	BusyPercentage       float64
	CategoryDistribution map[uuid.UUID]int
	FreeTimeSlots        []model.TimeSlot
}

// CategoryStatistics summarizes one category's share of a day.
// PeakUsageTime is the start of the category's longest task, the first
// one encountered winning ties.
type CategoryStatistics struct {
	CategoryID        uuid.UUID
	TotalTasks        int
	CompletedTasks    int
	TotalDuration     time.Duration
	CompletionRate    float64
	PeakUsageTime     *time.Time
	peakUsageDuration time.Duration
}

// DailyStatistics aggregates the given day's tasks.
func DailyStatistics(date time.Time, tasks []model.Task) TaskStatistics {
	stats := TaskStatistics{
		Date:                 date,
		TotalTasks:           len(tasks),
		CategoryDistribution: make(map[uuid.UUID]int),
	}

	for _, task := range tasks {
		stats.TotalDuration += task.Duration()
		if task.IsCompleted {
			stats.CompletedTasks++
			stats.CompletedDuration += task.Duration()
		}
		stats.CategoryDistribution[task.CategoryID]++
	}

	if stats.TotalTasks > 0 {
		stats.AverageTaskDuration = stats.TotalDuration / time.Duration(stats.TotalTasks)
	}
	stats.BusyPercentage = stats.TotalDuration.Seconds() / secondsPerDay * 100

	stats.FreeTimeSlots = ListFreeSlots(FreeSlotProbe, BoundsFor(date), tasks)

	return stats
}

// CategoryBreakdown aggregates the day's tasks per category.
func CategoryBreakdown(date time.Time, tasks []model.Task) map[uuid.UUID]CategoryStatistics {
	byCategory := make(map[uuid.UUID]CategoryStatistics)

	for _, task := range tasks {
		entry := byCategory[task.CategoryID]
		entry.CategoryID = task.CategoryID
		entry.TotalTasks++
		entry.TotalDuration += task.Duration()
		if task.IsCompleted {
			entry.CompletedTasks++
		}
		if entry.PeakUsageTime == nil || task.Duration() > entry.peakUsageDuration {
			start := task.StartTime
			entry.PeakUsageTime = &start
			entry.peakUsageDuration = task.Duration()
		}
		byCategory[task.CategoryID] = entry
	}

	for id, entry := range byCategory {
		entry.CompletionRate = float64(entry.CompletedTasks) / float64(entry.TotalTasks)
		byCategory[id] = entry
	}

	return byCategory
}
