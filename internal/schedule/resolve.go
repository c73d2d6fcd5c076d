package schedule

import (
	"github.com/0-Luminous/taskflow/internal/model"
)

// Strategy selects how a scheduling conflict is eliminated.
type Strategy string

const (
	// MoveConflictingTasks, ShrinkConflictingTasks and
	// SplitConflictingTasks are reserved strategies: they are accepted
	// but currently perform no mutation.
	MoveConflictingTasks   Strategy = "move_conflicting_tasks"
	ShrinkConflictingTasks Strategy = "shrink_conflicting_tasks"
	SplitConflictingTasks  Strategy = "split_conflicting_tasks"

	// FindAlternativeSlot relocates the incoming task to the nearest
	// free slot and leaves existing tasks untouched.
	FindAlternativeSlot Strategy = "find_alternative_slot"

	// Manual signals that the caller resolves the conflict by hand.
	Manual Strategy = "manual"
)

// Resolution is the outcome of a resolution attempt. Task carries the
// incoming task, possibly with new times; Mutated lists the other
// tasks that were changed. Applied is false when the strategy is a
// no-op or no resolution was possible.
type Resolution struct {
	Task    model.Task
	Mutated []model.Task
	Applied bool
}

// Resolve eliminates the conflict between task and all according to
// strategy. Only FindAlternativeSlot is currently effective; the
// remaining strategies return an empty mutation set.
func Resolve(task model.Task, strategy Strategy, all []model.Task, bounds DayBounds) Resolution {
	switch strategy {
	case FindAlternativeSlot:
		return resolveAlternativeSlot(task, all, bounds)
	case MoveConflictingTasks, ShrinkConflictingTasks, SplitConflictingTasks, Manual:
		return Resolution{Task: task}
	default:
		return Resolution{Task: task}
	}
}

func resolveAlternativeSlot(task model.Task, all []model.Task, bounds DayBounds) Resolution {
	conflicts := FindOverlaps(task, all, nil)
	if len(conflicts) == 0 {
		return Resolution{Task: task, Applied: true}
	}

	others := make([]model.Task, 0, len(all))
	for _, other := range all {
		if other.ID != task.ID {
			others = append(others, other)
		}
	}

	slot, ok := FindFreeSlot(task.Duration(), task.StartTime, bounds, others)
	if !ok {
		return Resolution{Task: task}
	}

	task.StartTime = slot.StartTime
	task.EndTime = slot.EndTime
	return Resolution{Task: task, Applied: true}
}
