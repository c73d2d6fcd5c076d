package repo

import (
	"github.com/0-Luminous/taskflow/internal/model"
	"github.com/0-Luminous/taskflow/internal/schedule"
)

// Event is something the facade tells its observers about. Events are
// only delivered after the corresponding store operation succeeded,
// except ValidationFailed which never reaches the store.
type Event interface {
	Kind() string
}

type TasksUpdated struct {
	Tasks []model.Task
}

func (TasksUpdated) Kind() string { return "tasks_updated" }

type TaskAdded struct {
	Task model.Task
}

func (TaskAdded) Kind() string { return "task_added" }

type TaskRemoved struct {
	Task model.Task
}

func (TaskRemoved) Kind() string { return "task_removed" }

type ValidationFailed struct {
	Task   model.Task
	Errors []schedule.ValidationError
}

func (ValidationFailed) Kind() string { return "validation_failed" }

// Observer receives facade events. Delivery order relative to other
// observers is unspecified.
type Observer func(Event)
