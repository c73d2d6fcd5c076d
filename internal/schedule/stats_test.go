package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0-Luminous/taskflow/internal/model"
)

func categorized(category uuid.UUID, start, end time.Time, completed bool) model.Task {
	task := taskBetween(start, end)
	task.CategoryID = category
	task.IsCompleted = completed
	return task
}

func TestDailyStatisticsEmptyDay(t *testing.T) {
	stats := DailyStatistics(dayAt(0, 0), nil)

	assert.Zero(t, stats.TotalTasks)
	assert.Zero(t, stats.AverageTaskDuration, "average must not divide by zero")
	assert.Zero(t, stats.BusyPercentage)
	require.Len(t, stats.FreeTimeSlots, 1)
	assert.True(t, stats.FreeTimeSlots[0].StartTime.Equal(dayAt(0, 0)))
}

func TestDailyStatisticsTotals(t *testing.T) {
	work := uuid.New()
	home := uuid.New()
	tasks := []model.Task{
		categorized(work, dayAt(9, 0), dayAt(10, 0), true),
		categorized(work, dayAt(10, 0), dayAt(12, 0), false),
		categorized(home, dayAt(13, 0), dayAt(13, 30), false),
	}

	stats := DailyStatistics(dayAt(0, 0), tasks)

	assert.Equal(t, 3, stats.TotalTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 3*time.Hour+30*time.Minute, stats.TotalDuration)
	assert.Equal(t, time.Hour, stats.CompletedDuration)
	assert.Equal(t, 70*time.Minute, stats.AverageTaskDuration)
	assert.InDelta(t, 3.5/24*100, stats.BusyPercentage, 1e-9)
	assert.Equal(t, 2, stats.CategoryDistribution[work])
	assert.Equal(t, 1, stats.CategoryDistribution[home])

	assert.LessOrEqual(t, stats.CompletedDuration, stats.TotalDuration)
	assert.LessOrEqual(t, stats.CompletedTasks, stats.TotalTasks)
}

func TestDailyStatisticsBusyPercentageUnclamped(t *testing.T) {
	category := uuid.New()
	var tasks []model.Task
	for hour := 0; hour < 23; hour += 2 {
		// Three stacked copies of each block push the scheduled total
		// past 24 hours.
		for i := 0; i < 3; i++ {
			tasks = append(tasks, categorized(category, dayAt(hour, 0), dayAt(hour+2, 0), false))
		}
	}

	stats := DailyStatistics(dayAt(0, 0), tasks)

	assert.Greater(t, stats.BusyPercentage, 100.0)
}

func TestCategoryBreakdownCompletionRate(t *testing.T) {
	work := uuid.New()
	tasks := []model.Task{
		categorized(work, dayAt(9, 0), dayAt(10, 0), true),
		categorized(work, dayAt(10, 0), dayAt(11, 0), false),
	}

	breakdown := CategoryBreakdown(dayAt(0, 0), tasks)

	entry, ok := breakdown[work]
	require.True(t, ok)
	assert.Equal(t, 2, entry.TotalTasks)
	assert.Equal(t, 1, entry.CompletedTasks)
	assert.InDelta(t, 0.5, entry.CompletionRate, 1e-9)
	assert.Equal(t, 2*time.Hour, entry.TotalDuration)
}

func TestCategoryBreakdownPeakUsageLongestTask(t *testing.T) {
	work := uuid.New()
	tasks := []model.Task{
		categorized(work, dayAt(9, 0), dayAt(9, 30), false),
		categorized(work, dayAt(14, 0), dayAt(16, 0), false),
		categorized(work, dayAt(18, 0), dayAt(19, 0), false),
	}

	breakdown := CategoryBreakdown(dayAt(0, 0), tasks)

	entry := breakdown[work]
	require.NotNil(t, entry.PeakUsageTime)
	assert.True(t, entry.PeakUsageTime.Equal(dayAt(14, 0)))
}

func TestCategoryBreakdownPeakUsageTieBreak(t *testing.T) {
	work := uuid.New()
	tasks := []model.Task{
		categorized(work, dayAt(9, 0), dayAt(10, 0), false),
		categorized(work, dayAt(14, 0), dayAt(15, 0), false),
	}

	breakdown := CategoryBreakdown(dayAt(0, 0), tasks)

	entry := breakdown[work]
	require.NotNil(t, entry.PeakUsageTime)
	assert.True(t, entry.PeakUsageTime.Equal(dayAt(9, 0)), "first encountered wins ties")
}
