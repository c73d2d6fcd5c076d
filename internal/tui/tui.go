package tui

import (
	"context"
	"fmt"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/0-Luminous/taskflow/internal/config"
	"github.com/0-Luminous/taskflow/internal/model"
	"github.com/0-Luminous/taskflow/internal/repo"
)

const (
	viewHeader   = "header"
	viewSchedule = "schedule"
	viewSlots    = "slots"
	viewStats    = "stats"
	viewFooter   = "footer"
)

type UI struct {
	facade   *repo.Facade
	settings *config.Settings
	gui      *gocui.Gui

	tasks    []model.Task
	slots    []model.TimeSlot
	selected int
	status   string
}

func Run(facade *repo.Facade, settings *config.Settings) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := &UI{facade: facade, settings: settings, gui: gui}

	unsubscribe := facade.Subscribe(func(event repo.Event) {
		gui.Update(func(g *gocui.Gui) error {
			ui.refresh()
			return nil
		})
	})
	defer unsubscribe()

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	ui.refresh()

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'j', gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'k', gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'h', gocui.ModNone, u.prevDay); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyArrowLeft, gocui.ModNone, u.prevDay); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'l', gocui.ModNone, u.nextDay); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyArrowRight, gocui.ModNone, u.nextDay); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'x', gocui.ModNone, u.toggleDone); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeySpace, gocui.ModNone, u.toggleDone); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'd', gocui.ModNone, u.deleteTask); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '[', gocui.ModNone, u.rotateBack); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", ']', gocui.ModNone, u.rotateForward); err != nil {
		return err
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	u.renderHeader(headerView)

	footerY := maxY - 2
	if footerY < 1 {
		footerY = 1
	}
	footerView, err := gui.SetView(viewFooter, 0, footerY, maxX-1, maxY-1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY - 1
	if bodyBottom < bodyTop {
		return nil
	}

	leftX1 := maxX * 2 / 3
	scheduleView, err := gui.SetView(viewSchedule, 0, bodyTop, leftX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		scheduleView.Title = "Schedule"
	}
	u.renderSchedule(scheduleView)

	rightX0 := leftX1 + 1
	slotsY1 := bodyTop + (bodyBottom-bodyTop)/2
	slotsView, err := gui.SetView(viewSlots, rightX0, bodyTop, maxX-1, slotsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		slotsView.Title = "Free"
	}
	u.renderSlots(slotsView)

	statsView, err := gui.SetView(viewStats, rightX0, slotsY1+1, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		statsView.Title = "Stats"
	}
	u.renderStats(statsView)

	return nil
}

func (u *UI) refresh() {
	u.tasks = u.facade.TasksForSelectedDate()
	u.slots = u.facade.DailyStatistics().FreeTimeSlots
	if u.selected >= len(u.tasks) {
		u.selected = len(u.tasks) - 1
	}
	if u.selected < 0 {
		u.selected = 0
	}
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	date := u.facade.SelectedDate().Format("Mon 2006-01-02")
	fmt.Fprintf(view, " taskflow | %s | zero %.0f°", date, u.settings.ZeroPosition())
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	help := "q quit | h/l day | j/k select | x done | d delete | [/] rotate | r reload"
	if u.status != "" {
		help = u.status + " | " + help
	}
	fmt.Fprint(view, " "+help)
}

func (u *UI) renderSchedule(view *gocui.View) {
	view.Clear()
	if len(u.tasks) == 0 {
		fmt.Fprintln(view, " (no tasks)")
		return
	}
	for i, task := range u.tasks {
		fmt.Fprintln(view, formatTaskLine(task, u.tasks, u.settings.ZeroPosition(), i == u.selected))
	}
}

func (u *UI) renderSlots(view *gocui.View) {
	view.Clear()
	if len(u.slots) == 0 {
		fmt.Fprintln(view, " (none)")
		return
	}
	for _, slot := range u.slots {
		fmt.Fprintln(view, " "+formatSlotLine(slot))
	}
}

func (u *UI) renderStats(view *gocui.View) {
	view.Clear()
	stats := u.facade.DailyStatistics()
	fmt.Fprintf(view, " tasks     %d (%d done)\n", stats.TotalTasks, stats.CompletedTasks)
	fmt.Fprintf(view, " scheduled %s\n", stats.TotalDuration)
	fmt.Fprintf(view, " busy      %.1f%%\n", stats.BusyPercentage)
	if stats.TotalTasks > 0 {
		fmt.Fprintf(view, " average   %s\n", stats.AverageTaskDuration)
	}
}

func (u *UI) quit(gui *gocui.Gui, view *gocui.View) error {
	return gocui.ErrQuit
}

func (u *UI) reload(gui *gocui.Gui, view *gocui.View) error {
	if err := u.facade.Load(context.Background()); err != nil {
		u.status = err.Error()
	}
	u.refresh()
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, view *gocui.View) error {
	if u.selected < len(u.tasks)-1 {
		u.selected++
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, view *gocui.View) error {
	if u.selected > 0 {
		u.selected--
	}
	return nil
}

func (u *UI) prevDay(gui *gocui.Gui, view *gocui.View) error {
	u.facade.SetSelectedDate(u.facade.SelectedDate().AddDate(0, 0, -1))
	u.refresh()
	return nil
}

func (u *UI) nextDay(gui *gocui.Gui, view *gocui.View) error {
	u.facade.SetSelectedDate(u.facade.SelectedDate().AddDate(0, 0, 1))
	u.refresh()
	return nil
}

func (u *UI) toggleDone(gui *gocui.Gui, view *gocui.View) error {
	task, ok := u.selectedTask()
	if !ok {
		return nil
	}
	if _, err := u.facade.ToggleCompleted(context.Background(), task.ID); err != nil {
		u.status = err.Error()
	}
	u.refresh()
	return nil
}

func (u *UI) deleteTask(gui *gocui.Gui, view *gocui.View) error {
	task, ok := u.selectedTask()
	if !ok {
		return nil
	}
	if err := u.facade.Remove(context.Background(), task.ID); err != nil {
		u.status = err.Error()
	}
	u.refresh()
	return nil
}

func (u *UI) rotateBack(gui *gocui.Gui, view *gocui.View) error {
	u.settings.SetZeroPosition(u.settings.ZeroPosition() - 15)
	return nil
}

func (u *UI) rotateForward(gui *gocui.Gui, view *gocui.View) error {
	u.settings.SetZeroPosition(u.settings.ZeroPosition() + 15)
	return nil
}

func (u *UI) selectedTask() (model.Task, bool) {
	if u.selected < 0 || u.selected >= len(u.tasks) {
		return model.Task{}, false
	}
	return u.tasks[u.selected], true
}
