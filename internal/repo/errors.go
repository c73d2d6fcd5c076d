package repo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/0-Luminous/taskflow/internal/schedule"
)

var (
	// ErrTaskNotFound is returned when an update or remove targets an
	// id absent from the store.
	ErrTaskNotFound = errors.New("task not found")

	ErrCategoryNotFound = errors.New("category not found")

	// ErrClosed is returned for operations dispatched after the facade
	// was shut down.
	ErrClosed = errors.New("repository is closed")
)

// ValidationError carries the blocking errors that rejected a write.
// It is computed before any persistence attempt.
type ValidationError struct {
	TaskID uuid.UUID
	Errors []schedule.ValidationError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("task %s failed validation: %v", e.TaskID, e.Errors)
}
