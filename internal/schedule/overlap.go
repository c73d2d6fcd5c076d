package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/0-Luminous/taskflow/internal/model"
)

const (
	mediumDurationMin = 20 * time.Minute
	mediumDurationMax = 40 * time.Minute

	// DefaultMarkerProximity is how close another medium task's edge
	// must be for a long task to pick up fine-grained markers.
	DefaultMarkerProximity = 15 * time.Minute
)

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not count.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

func TasksOverlap(a, b model.Task) bool {
	return Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
}

// FindOverlaps returns every candidate that intersects task, skipping
// the task itself and anything in excluding. The result keeps the
// candidates' input order.
func FindOverlaps(task model.Task, candidates []model.Task, excluding map[uuid.UUID]struct{}) []model.Task {
	var overlaps []model.Task
	for _, other := range candidates {
		if other.ID == task.ID {
			continue
		}
		if _, skip := excluding[other.ID]; skip {
			continue
		}
		if TasksOverlap(task, other) {
			overlaps = append(overlaps, other)
		}
	}
	return overlaps
}

// IsMediumDuration reports whether a task falls in the 20-40 minute
// band that always gets fine-grained time markers.
func IsMediumDuration(task model.Task) bool {
	d := task.Duration()
	return d >= mediumDurationMin && d < mediumDurationMax
}

// NeedsFineMarkers decides whether a task is drawn with fine-grained
// time markers. Medium tasks always qualify; longer tasks qualify only
// when some other medium task's start or end lies within proximity of
// this task's start or end.
func NeedsFineMarkers(task model.Task, others []model.Task, proximity time.Duration) bool {
	if IsMediumDuration(task) {
		return true
	}
	if task.Duration() < mediumDurationMax {
		return false
	}

	for _, other := range others {
		if other.ID == task.ID || !IsMediumDuration(other) {
			continue
		}
		edges := [4]time.Duration{
			absDuration(task.StartTime.Sub(other.StartTime)),
			absDuration(task.StartTime.Sub(other.EndTime)),
			absDuration(task.EndTime.Sub(other.StartTime)),
			absDuration(task.EndTime.Sub(other.EndTime)),
		}
		for _, gap := range edges {
			if gap <= proximity {
				return true
			}
		}
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
