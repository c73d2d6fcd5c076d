package tui

import (
	"fmt"

	"github.com/0-Luminous/taskflow/internal/model"
	"github.com/0-Luminous/taskflow/internal/ring"
	"github.com/0-Luminous/taskflow/internal/schedule"
)

func formatTaskLine(task model.Task, dayTasks []model.Task, zeroPosition float64, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	done := " "
	if task.IsCompleted {
		done = "x"
	}
	markers := ""
	if schedule.NeedsFineMarkers(task, dayTasks, schedule.DefaultMarkerProximity) {
		markers = " ·fine"
	}
	return fmt.Sprintf("%s[%s] %s-%s %s (%.1f°)%s",
		cursor, done,
		task.StartTime.Format("15:04"), task.EndTime.Format("15:04"),
		task.Title,
		ring.TimeToAngle(task.StartTime, zeroPosition),
		markers)
}

func formatSlotLine(slot model.TimeSlot) string {
	return fmt.Sprintf("%s-%s (%s)",
		slot.StartTime.Format("15:04"), slot.EndTime.Format("15:04"), slot.Duration())
}
