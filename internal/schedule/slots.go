package schedule

import (
	"sort"
	"time"

	"github.com/0-Luminous/taskflow/internal/model"
)

const (
	radialStep      = 15 * time.Minute
	radialMaxRadius = 12 * time.Hour

	// FreeSlotProbe is the granularity used when listing a day's free
	// time for statistics.
	FreeSlotProbe = 15 * time.Minute
)

// DayBounds delimits the searchable window of a single day. End is the
// last admissible instant, not the first instant of the next day, so a
// slot can never nominally spill past midnight.
type DayBounds struct {
	Start time.Time
	End   time.Time
}

// BoundsFor returns the default bounds for day: 00:00 through 23:59.
func BoundsFor(day time.Time) DayBounds {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return DayBounds{Start: start, End: start.Add(24*time.Hour - time.Minute)}
}

// FindFreeSlot finds a free slot of exactly duration, preferring the
// requested start. Preference order: the preferred slot itself, then a
// radial search around it (15-minute steps, later side first, out to a
// 12-hour radius), then the day's first gap wide enough. Returns false
// when the day has no room.
func FindFreeSlot(duration time.Duration, preferred time.Time, bounds DayBounds, tasks []model.Task) (model.TimeSlot, bool) {
	if duration <= 0 {
		return model.TimeSlot{}, false
	}

	if slotFree(preferred, duration, bounds, tasks) {
		return slotAt(preferred, duration), true
	}

	for offset := radialStep; offset <= radialMaxRadius; offset += radialStep {
		if after := preferred.Add(offset); slotFree(after, duration, bounds, tasks) {
			return slotAt(after, duration), true
		}
		if before := preferred.Add(-offset); slotFree(before, duration, bounds, tasks) {
			return slotAt(before, duration), true
		}
	}

	return scanGaps(duration, preferred, bounds, tasks)
}

// ListFreeSlots returns every gap of at least duration between
// bounds.Start and bounds.End, in chronological order. The returned
// slots are the whole gaps, not trimmed to duration.
func ListFreeSlots(duration time.Duration, bounds DayBounds, tasks []model.Task) []model.TimeSlot {
	if duration <= 0 {
		return nil
	}

	sorted := sortedByStart(tasks)
	var slots []model.TimeSlot

	cursor := bounds.Start
	for _, task := range sorted {
		if task.StartTime.After(cursor) {
			gap := model.TimeSlot{StartTime: cursor, EndTime: task.StartTime}
			if gap.Duration() >= duration {
				slots = append(slots, gap)
			}
		}
		if task.EndTime.After(cursor) {
			cursor = task.EndTime
		}
	}

	if bounds.End.After(cursor) {
		gap := model.TimeSlot{StartTime: cursor, EndTime: bounds.End}
		if gap.Duration() >= duration {
			slots = append(slots, gap)
		}
	}

	return slots
}

func scanGaps(duration time.Duration, preferred time.Time, bounds DayBounds, tasks []model.Task) (model.TimeSlot, bool) {
	if len(tasks) == 0 {
		start := bounds.Start
		if preferred.After(start) {
			start = preferred
		}
		if slotFits(start, duration, bounds) {
			return slotAt(start, duration), true
		}
		return model.TimeSlot{}, false
	}

	sorted := sortedByStart(tasks)

	cursor := bounds.Start
	for _, task := range sorted {
		if task.StartTime.Sub(cursor) >= duration && slotFits(cursor, duration, bounds) {
			return slotAt(cursor, duration), true
		}
		if task.EndTime.After(cursor) {
			cursor = task.EndTime
		}
	}

	if bounds.End.Sub(cursor) >= duration && slotFits(cursor, duration, bounds) {
		return slotAt(cursor, duration), true
	}

	return model.TimeSlot{}, false
}

func slotFree(start time.Time, duration time.Duration, bounds DayBounds, tasks []model.Task) bool {
	if !slotFits(start, duration, bounds) {
		return false
	}
	end := start.Add(duration)
	for _, task := range tasks {
		if Overlaps(start, end, task.StartTime, task.EndTime) {
			return false
		}
	}
	return true
}

func slotFits(start time.Time, duration time.Duration, bounds DayBounds) bool {
	return !start.Before(bounds.Start) && !start.Add(duration).After(bounds.End)
}

func slotAt(start time.Time, duration time.Duration) model.TimeSlot {
	return model.TimeSlot{StartTime: start, EndTime: start.Add(duration)}
}

func sortedByStart(tasks []model.Task) []model.Task {
	sorted := make([]model.Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}
