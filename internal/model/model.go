package model

import (
	"time"

	"github.com/google/uuid"
)

// Task is an entry on the 24-hour ring. Color and Icon are copied from
// the category at creation time and intentionally do not follow later
// category edits.
type Task struct {
	ID          uuid.UUID
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	IsCompleted bool
	CategoryID  uuid.UUID
	Color       string
	Icon        string
	ReminderAt  *time.Time
}

func (t Task) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

type Category struct {
	ID    uuid.UUID
	Name  string
	Icon  string
	Color string
}

// TimeSlot is an ephemeral free interval, never persisted.
type TimeSlot struct {
	StartTime time.Time
	EndTime   time.Time
}

func (s TimeSlot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
