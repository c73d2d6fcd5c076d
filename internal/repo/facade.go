// Package repo orchestrates task CRUD against a persistent store. It
// owns the in-memory mirror of persisted tasks; the algorithm packages
// only ever see snapshots of it. Store writes for one facade instance
// run on a single worker goroutine, so they never interleave.
package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/0-Luminous/taskflow/internal/model"
	"github.com/0-Luminous/taskflow/internal/schedule"
)

// Store is the external persistence boundary.
type Store interface {
	FetchAll(ctx context.Context) ([]model.Task, error)
	FetchByID(ctx context.Context, id uuid.UUID) (model.Task, error)
	Insert(ctx context.Context, task model.Task) error
	Update(ctx context.Context, task model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error

	Categories(ctx context.Context) ([]model.Category, error)
	CategoryByID(ctx context.Context, id uuid.UUID) (model.Category, error)
	CategoryByName(ctx context.Context, name string) (model.Category, error)
	InsertCategory(ctx context.Context, category model.Category) error
}

// ReminderFunc is the boundary callback consumed by an external
// reminder scheduler. The facade never talks to OS notifications.
type ReminderFunc func(taskID uuid.UUID, title string, at time.Time)

type job struct {
	fn    func(context.Context) error
	reply chan error
}

type Facade struct {
	store  Store
	policy schedule.Policy
	log    *logrus.Entry

	jobs      chan job
	done      chan struct{}
	closeOnce sync.Once

	mu           sync.RWMutex
	mirror       map[uuid.UUID]model.Task
	observers    map[int]Observer
	nextObserver int
	selectedDate time.Time
	reminder     ReminderFunc
}

func New(store Store, logger *logrus.Logger) *Facade {
	if logger == nil {
		logger = logrus.New()
	}
	f := &Facade{
		store:        store,
		policy:       schedule.DefaultPolicy(),
		log:          logger.WithField("component", "repo"),
		jobs:         make(chan job),
		done:         make(chan struct{}),
		mirror:       make(map[uuid.UUID]model.Task),
		observers:    make(map[int]Observer),
		selectedDate: time.Now(),
	}
	go f.run()
	return f
}

// Close shuts the persistence worker down. Operations dispatched after
// Close fail with ErrClosed.
func (f *Facade) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

func (f *Facade) SetPolicy(policy schedule.Policy) {
	f.mu.Lock()
	f.policy = policy
	f.mu.Unlock()
}

func (f *Facade) SetReminderFunc(fn ReminderFunc) {
	f.mu.Lock()
	f.reminder = fn
	f.mu.Unlock()
}

func (f *Facade) SelectedDate() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selectedDate
}

func (f *Facade) SetSelectedDate(date time.Time) {
	f.mu.Lock()
	f.selectedDate = date
	f.mu.Unlock()
}

// Subscribe registers an observer and returns its unsubscribe func.
func (f *Facade) Subscribe(observer Observer) func() {
	f.mu.Lock()
	id := f.nextObserver
	f.nextObserver++
	f.observers[id] = observer
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.observers, id)
		f.mu.Unlock()
	}
}

// Load populates the mirror from the store and notifies observers.
func (f *Facade) Load(ctx context.Context) error {
	var tasks []model.Task
	err := f.dispatch(ctx, func(ctx context.Context) error {
		var err error
		tasks, err = f.store.FetchAll(ctx)
		return err
	})
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.mirror = make(map[uuid.UUID]model.Task, len(tasks))
	for _, task := range tasks {
		f.mirror[task.ID] = task
	}
	f.mu.Unlock()

	f.notify(TasksUpdated{Tasks: f.Tasks()})
	return nil
}

// Add validates, persists and mirrors a new task. Start and end are
// truncated to whole minutes first. On validation failure nothing is
// persisted and a ValidationFailed event fires instead of TaskAdded.
func (f *Facade) Add(ctx context.Context, task model.Task) (model.Task, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	task.StartTime = normalizeMinute(task.StartTime)
	task.EndTime = normalizeMinute(task.EndTime)

	if rejected, err := f.checkValid(task); rejected {
		return model.Task{}, err
	}

	err := f.dispatch(ctx, func(ctx context.Context) error {
		f.fillPresentation(ctx, &task)
		return f.store.Insert(ctx, task)
	})
	if err != nil {
		f.log.WithError(err).WithField("task", task.ID).Warn("insert failed")
		return model.Task{}, err
	}

	f.mu.Lock()
	f.mirror[task.ID] = task
	f.mu.Unlock()

	f.notify(TaskAdded{Task: task})
	f.notify(TasksUpdated{Tasks: f.Tasks()})
	f.fireReminder(task)
	return task, nil
}

// AddBatch adds tasks one by one and stops at the first failure.
// Already persisted tasks stay persisted.
func (f *Facade) AddBatch(ctx context.Context, tasks []model.Task) ([]model.Task, error) {
	added := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		created, err := f.Add(ctx, task)
		if err != nil {
			return added, err
		}
		added = append(added, created)
	}
	return added, nil
}

// Update re-normalizes, re-validates and persists a changed task.
func (f *Facade) Update(ctx context.Context, task model.Task) (model.Task, error) {
	task.StartTime = normalizeMinute(task.StartTime)
	task.EndTime = normalizeMinute(task.EndTime)

	if rejected, err := f.checkValid(task); rejected {
		return model.Task{}, err
	}

	err := f.dispatch(ctx, func(ctx context.Context) error {
		return f.store.Update(ctx, task)
	})
	if err != nil {
		f.log.WithError(err).WithField("task", task.ID).Warn("update failed")
		return model.Task{}, err
	}

	f.mu.Lock()
	f.mirror[task.ID] = task
	f.mu.Unlock()

	f.notify(TasksUpdated{Tasks: f.Tasks()})
	f.fireReminder(task)
	return task, nil
}

// UpdateStart replaces the start's time of day, pinning the task to the
// selected date and keeping the end's time of day.
func (f *Facade) UpdateStart(ctx context.Context, id uuid.UUID, start time.Time) (model.Task, error) {
	task, ok := f.taskByID(id)
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	task.StartTime = f.pinToSelectedDate(start)
	task.EndTime = f.pinToSelectedDate(task.EndTime)
	return f.Update(ctx, task)
}

// UpdateEnd replaces the end's time of day, keeping the start's.
func (f *Facade) UpdateEnd(ctx context.Context, id uuid.UUID, end time.Time) (model.Task, error) {
	task, ok := f.taskByID(id)
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	task.StartTime = f.pinToSelectedDate(task.StartTime)
	task.EndTime = f.pinToSelectedDate(end)
	return f.Update(ctx, task)
}

// UpdateWhole replaces both times of day on the selected date.
func (f *Facade) UpdateWhole(ctx context.Context, id uuid.UUID, start, end time.Time) (model.Task, error) {
	task, ok := f.taskByID(id)
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	task.StartTime = f.pinToSelectedDate(start)
	task.EndTime = f.pinToSelectedDate(end)
	return f.Update(ctx, task)
}

// ToggleCompleted flips a task's completion flag.
func (f *Facade) ToggleCompleted(ctx context.Context, id uuid.UUID) (model.Task, error) {
	task, ok := f.taskByID(id)
	if !ok {
		return model.Task{}, ErrTaskNotFound
	}
	task.IsCompleted = !task.IsCompleted
	return f.Update(ctx, task)
}

// Remove hard-deletes a task from the store and the mirror.
func (f *Facade) Remove(ctx context.Context, id uuid.UUID) error {
	task, _ := f.taskByID(id)

	err := f.dispatch(ctx, func(ctx context.Context) error {
		return f.store.Delete(ctx, id)
	})
	if err != nil {
		f.log.WithError(err).WithField("task", id).Warn("delete failed")
		return err
	}

	f.mu.Lock()
	delete(f.mirror, id)
	f.mu.Unlock()

	f.notify(TaskRemoved{Task: task})
	f.notify(TasksUpdated{Tasks: f.Tasks()})
	return nil
}

// RemoveBatch removes tasks one by one and stops at the first failure.
func (f *Facade) RemoveBatch(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if err := f.Remove(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Tasks returns a snapshot of the mirror sorted by start time.
func (f *Facade) Tasks() []model.Task {
	f.mu.RLock()
	tasks := make([]model.Task, 0, len(f.mirror))
	for _, task := range f.mirror {
		tasks = append(tasks, task)
	}
	f.mu.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].StartTime.Before(tasks[j].StartTime)
	})
	return tasks
}

// TasksOn returns the mirror's tasks starting on the given calendar
// day, sorted by start time.
func (f *Facade) TasksOn(date time.Time) []model.Task {
	year, month, day := date.Date()
	var tasks []model.Task
	for _, task := range f.Tasks() {
		y, m, d := task.StartTime.Date()
		if y == year && m == month && d == day {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

func (f *Facade) TasksForSelectedDate() []model.Task {
	return f.TasksOn(f.SelectedDate())
}

// FindFreeSlot searches the selected date for a free slot.
func (f *Facade) FindFreeSlot(duration time.Duration, preferred time.Time) (model.TimeSlot, bool) {
	date := f.SelectedDate()
	return schedule.FindFreeSlot(duration, preferred, schedule.BoundsFor(date), f.TasksOn(date))
}

// OverlapsFor returns the mirror tasks conflicting with task.
func (f *Facade) OverlapsFor(task model.Task) []model.Task {
	return schedule.FindOverlaps(task, f.Tasks(), nil)
}

// Resolve runs a conflict-resolution strategy against a snapshot of
// the selected date. Persisting the outcome is the caller's decision.
func (f *Facade) Resolve(task model.Task, strategy schedule.Strategy) schedule.Resolution {
	date := f.SelectedDate()
	return schedule.Resolve(task, strategy, f.TasksOn(date), schedule.BoundsFor(date))
}

// DailyStatistics aggregates the selected date.
func (f *Facade) DailyStatistics() schedule.TaskStatistics {
	date := f.SelectedDate()
	return schedule.DailyStatistics(date, f.TasksOn(date))
}

// CategoryBreakdown aggregates the selected date per category.
func (f *Facade) CategoryBreakdown() map[uuid.UUID]schedule.CategoryStatistics {
	date := f.SelectedDate()
	return schedule.CategoryBreakdown(date, f.TasksOn(date))
}

func (f *Facade) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := f.dispatch(ctx, func(ctx context.Context) error {
		var err error
		categories, err = f.store.Categories(ctx)
		return err
	})
	return categories, err
}

func (f *Facade) AddCategory(ctx context.Context, category model.Category) (model.Category, error) {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	err := f.dispatch(ctx, func(ctx context.Context) error {
		return f.store.InsertCategory(ctx, category)
	})
	return category, err
}

func (f *Facade) run() {
	for {
		select {
		case j := <-f.jobs:
			j.reply <- j.fn(context.Background())
		case <-f.done:
			return
		}
	}
}

// dispatch hands fn to the persistence worker and waits for the
// result. Once running, fn is never cancelled mid-flight.
func (f *Facade) dispatch(ctx context.Context, fn func(context.Context) error) error {
	reply := make(chan error, 1)
	select {
	case f.jobs <- job{fn: fn, reply: reply}:
	case <-f.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-f.done:
		return ErrClosed
	}
}

func (f *Facade) checkValid(task model.Task) (bool, error) {
	f.mu.RLock()
	policy := f.policy
	f.mu.RUnlock()

	result := schedule.Validate(task, policy)
	if result.IsValid() {
		return false, nil
	}
	f.notify(ValidationFailed{Task: task, Errors: result.Errors})
	return true, &ValidationError{TaskID: task.ID, Errors: result.Errors}
}

// fillPresentation copies color and icon from the category when the
// task carries none. Runs on the persistence worker.
func (f *Facade) fillPresentation(ctx context.Context, task *model.Task) {
	if task.CategoryID == uuid.Nil || (task.Color != "" && task.Icon != "") {
		return
	}
	category, err := f.store.CategoryByID(ctx, task.CategoryID)
	if err != nil {
		return
	}
	if task.Color == "" {
		task.Color = category.Color
	}
	if task.Icon == "" {
		task.Icon = category.Icon
	}
}

func (f *Facade) fireReminder(task model.Task) {
	if task.ReminderAt == nil {
		return
	}
	f.mu.RLock()
	fn := f.reminder
	f.mu.RUnlock()
	if fn != nil {
		fn(task.ID, task.Title, *task.ReminderAt)
	}
}

func (f *Facade) taskByID(id uuid.UUID) (model.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	task, ok := f.mirror[id]
	return task, ok
}

func (f *Facade) pinToSelectedDate(t time.Time) time.Time {
	date := f.SelectedDate()
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

func (f *Facade) notify(event Event) {
	f.mu.RLock()
	observers := make([]Observer, 0, len(f.observers))
	for _, observer := range f.observers {
		observers = append(observers, observer)
	}
	f.mu.RUnlock()

	for _, observer := range observers {
		observer(event)
	}
}

func normalizeMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}
