package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/0-Luminous/taskflow/internal/config"
	"github.com/0-Luminous/taskflow/internal/model"
	"github.com/0-Luminous/taskflow/internal/repo"
	"github.com/0-Luminous/taskflow/internal/ring"
	"github.com/0-Luminous/taskflow/internal/schedule"
)

type Server struct {
	facade   *repo.Facade
	settings *config.Settings
	log      *logrus.Entry
}

func NewServer(facade *repo.Facade, settings *config.Settings, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{facade: facade, settings: settings, log: logger.WithField("component", "web")}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", s.tasksHandler)
	mux.HandleFunc("/api/tasks/", s.taskHandler)
	mux.HandleFunc("/api/slots", s.slotsHandler)
	mux.HandleFunc("/api/stats", s.statsHandler)
	mux.HandleFunc("/api/zero-position", s.zeroPositionHandler)
	return mux
}

type taskPayload struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	CategoryID  string  `json:"category_id,omitempty"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Completed   bool    `json:"completed"`
	Color       string  `json:"color,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	ReminderAt  string  `json:"reminder_at,omitempty"`
	StartAngle  float64 `json:"start_angle"`
	EndAngle    float64 `json:"end_angle"`
	FineMarkers bool    `json:"fine_markers"`
}

func (s *Server) tasksHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		date, err := dateFromRequest(r, s.facade.SelectedDate())
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		tasks := s.facade.TasksOn(date)
		writeJSON(w, s.taskPayloads(tasks))
	case http.MethodPost:
		s.createTask(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	task, err := taskFromPayload(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := s.facade.Add(r.Context(), task)
	if err != nil {
		status := http.StatusInternalServerError
		if _, ok := err.(*repo.ValidationError); ok {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}

	s.log.WithField("task", created.ID).Info("task created")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, s.taskPayload(created, s.facade.TasksOn(created.StartTime)))
}

func (s *Server) taskHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	rest = strings.Trim(rest, "/")
	parts := strings.Split(rest, "/")

	id, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("invalid task id"))
		return
	}

	switch {
	case r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "toggle":
		task, err := s.facade.ToggleCompleted(r.Context(), id)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, s.taskPayload(task, s.facade.TasksOn(task.StartTime)))
	case r.Method == http.MethodDelete && len(parts) == 1:
		if err := s.facade.Remove(r.Context(), id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) slotsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	duration, err := time.ParseDuration(r.URL.Query().Get("duration"))
	if err != nil || duration <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("duration is required, e.g. 30m"))
		return
	}

	date, err := dateFromRequest(r, s.facade.SelectedDate())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tasks := s.facade.TasksOn(date)
	bounds := schedule.BoundsFor(date)

	if preferred := r.URL.Query().Get("preferred"); preferred != "" {
		at, err := timeOfDayOn(date, preferred)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		slot, ok := schedule.FindFreeSlot(duration, at, bounds, tasks)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Errorf("no free slot of %s", duration))
			return
		}
		writeJSON(w, slotPayloadFrom(slot))
		return
	}

	slots := schedule.ListFreeSlots(duration, bounds, tasks)
	payloads := make([]slotPayload, 0, len(slots))
	for _, slot := range slots {
		payloads = append(payloads, slotPayloadFrom(slot))
	}
	writeJSON(w, payloads)
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	date, err := dateFromRequest(r, s.facade.SelectedDate())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tasks := s.facade.TasksOn(date)
	stats := schedule.DailyStatistics(date, tasks)
	breakdown := schedule.CategoryBreakdown(date, tasks)

	writeJSON(w, statsPayloadFrom(stats, breakdown))
}

func (s *Server) zeroPositionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, map[string]float64{"zero_position": s.settings.ZeroPosition()})
	case http.MethodPut:
		var payload struct {
			ZeroPosition float64 `json:"zero_position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.settings.SetZeroPosition(payload.ZeroPosition)
		writeJSON(w, map[string]float64{"zero_position": s.settings.ZeroPosition()})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) taskPayloads(tasks []model.Task) []taskPayload {
	payloads := make([]taskPayload, 0, len(tasks))
	for _, task := range tasks {
		payloads = append(payloads, s.taskPayload(task, tasks))
	}
	return payloads
}

func (s *Server) taskPayload(task model.Task, dayTasks []model.Task) taskPayload {
	zero := s.settings.ZeroPosition()
	payload := taskPayload{
		ID:          task.ID.String(),
		Title:       task.Title,
		Start:       task.StartTime.Format(time.RFC3339),
		End:         task.EndTime.Format(time.RFC3339),
		Completed:   task.IsCompleted,
		Color:       task.Color,
		Icon:        task.Icon,
		StartAngle:  ring.TimeToAngle(task.StartTime, zero),
		EndAngle:    ring.TimeToAngle(task.EndTime, zero),
		FineMarkers: schedule.NeedsFineMarkers(task, dayTasks, schedule.DefaultMarkerProximity),
	}
	if task.CategoryID != uuid.Nil {
		payload.CategoryID = task.CategoryID.String()
	}
	if task.ReminderAt != nil {
		payload.ReminderAt = task.ReminderAt.Format(time.RFC3339)
	}
	return payload
}

type slotPayload struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Duration string `json:"duration"`
}

func slotPayloadFrom(slot model.TimeSlot) slotPayload {
	return slotPayload{
		Start:    slot.StartTime.Format(time.RFC3339),
		End:      slot.EndTime.Format(time.RFC3339),
		Duration: slot.Duration().String(),
	}
}

type statsPayload struct {
	Date              string                   `json:"date"`
	TotalTasks        int                      `json:"total_tasks"`
	CompletedTasks    int                      `json:"completed_tasks"`
	TotalDuration     string                   `json:"total_duration"`
	CompletedDuration string                   `json:"completed_duration"`
	AverageDuration   string                   `json:"average_duration"`
	BusyPercentage    float64                  `json:"busy_percentage"`
	Categories        map[string]categoryStats `json:"categories"`
	FreeSlots         []slotPayload            `json:"free_slots"`
}

type categoryStats struct {
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	TotalDuration  string  `json:"total_duration"`
	CompletionRate float64 `json:"completion_rate"`
	PeakUsageTime  string  `json:"peak_usage_time,omitempty"`
}

func statsPayloadFrom(stats schedule.TaskStatistics, breakdown map[uuid.UUID]schedule.CategoryStatistics) statsPayload {
	payload := statsPayload{
		Date:              stats.Date.Format("2006-01-02"),
		TotalTasks:        stats.TotalTasks,
		CompletedTasks:    stats.CompletedTasks,
		TotalDuration:     stats.TotalDuration.String(),
		CompletedDuration: stats.CompletedDuration.String(),
		AverageDuration:   stats.AverageTaskDuration.String(),
		BusyPercentage:    stats.BusyPercentage,
		Categories:        make(map[string]categoryStats, len(breakdown)),
	}
	for id, entry := range breakdown {
		cs := categoryStats{
			TotalTasks:     entry.TotalTasks,
			CompletedTasks: entry.CompletedTasks,
			TotalDuration:  entry.TotalDuration.String(),
			CompletionRate: entry.CompletionRate,
		}
		if entry.PeakUsageTime != nil {
			cs.PeakUsageTime = entry.PeakUsageTime.Format("15:04")
		}
		payload.Categories[id.String()] = cs
	}
	for _, slot := range stats.FreeTimeSlots {
		payload.FreeSlots = append(payload.FreeSlots, slotPayloadFrom(slot))
	}
	return payload
}

func taskFromPayload(payload taskPayload) (model.Task, error) {
	task := model.Task{Title: strings.TrimSpace(payload.Title)}
	if task.Title == "" {
		return model.Task{}, fmt.Errorf("title is required")
	}

	var err error
	if task.StartTime, err = time.Parse(time.RFC3339, payload.Start); err != nil {
		return model.Task{}, fmt.Errorf("parse start: %w", err)
	}
	if task.EndTime, err = time.Parse(time.RFC3339, payload.End); err != nil {
		return model.Task{}, fmt.Errorf("parse end: %w", err)
	}
	if payload.CategoryID != "" {
		if task.CategoryID, err = uuid.Parse(payload.CategoryID); err != nil {
			return model.Task{}, fmt.Errorf("parse category id: %w", err)
		}
	}
	if payload.ReminderAt != "" {
		at, err := time.Parse(time.RFC3339, payload.ReminderAt)
		if err != nil {
			return model.Task{}, fmt.Errorf("parse reminder: %w", err)
		}
		task.ReminderAt = &at
	}
	task.Color = payload.Color
	task.Icon = payload.Icon
	return task, nil
}

func dateFromRequest(r *http.Request, fallback time.Time) (time.Time, error) {
	value := strings.TrimSpace(r.URL.Query().Get("date"))
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, fallback.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date: %w", err)
	}
	return parsed, nil
}

func timeOfDayOn(date time.Time, value string) (time.Time, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

func statusFor(err error) int {
	if errors.Is(err, repo.ErrTaskNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
