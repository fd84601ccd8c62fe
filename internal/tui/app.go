// internal/tui/app.go
//
// The plan administration screen. It follows bubbletea's Elm architecture:
// key presses become manager operations, requests run as tea.Cmds, and their
// responses come back as messages that are applied to the manager before the
// next render.

package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/plandesk/internal/config"
	"github.com/kingrea/plandesk/internal/logbook"
	"github.com/kingrea/plandesk/internal/manager"
	"github.com/kingrea/plandesk/internal/plan"
	"github.com/kingrea/plandesk/internal/planapi"
)

// focusArea is where key presses are routed.
type focusArea int

const (
	focusTable focusArea = iota
	focusAdd
	focusEdit
)

type loadedMsg struct {
	plans []plan.Plan
	err   error
}

type createdMsg struct {
	plan plan.Plan
	err  error
}

type savedMsg struct {
	id   int64
	plan plan.Plan
	err  error
}

type deletedMsg struct {
	id  int64
	err error
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithAPI replaces the REST client built from config.
func WithAPI(api manager.API) AppOption {
	return func(a *App) {
		if api != nil {
			a.api = api
		}
	}
}

// WithLogbook replaces the journal opened from config.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		if lb != nil {
			a.logbook = lb
		}
	}
}

// WithContext sets the parent context of every request.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	ctx     context.Context
	config  *config.Config
	api     manager.API
	logbook *logbook.Logbook
	plans   *manager.Manager

	keys keyMap
	help help.Model

	focus     focusArea
	selection int
	addForm   planForm
	editForm  planForm

	statusMsg string
	statusErr bool

	width  int
	height int
}

// NewApp wires the screen to the backend and journal named by cfg.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	if cfg == nil {
		return nil, errors.New("tui: config is required")
	}
	app := &App{
		ctx:      context.Background(),
		config:   cfg,
		keys:     defaultKeyMap(),
		help:     help.New(),
		addForm:  newPlanForm(cfg.Currency()),
		editForm: newPlanForm(cfg.Currency()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if app.api == nil {
		client, err := planapi.New(cfg.BaseURL(), planapi.WithTimeout(cfg.Timeout()))
		if err != nil {
			return nil, err
		}
		app.api = client
	}
	if app.logbook == nil {
		lb, err := logbook.New(cfg.JournalPath())
		if err != nil {
			return nil, err
		}
		app.logbook = lb
	}
	app.plans = manager.New(manager.WithRecorder(manager.RecorderFunc(app.journal)))
	app.logbook.Info("Session opened · backend %s", cfg.BaseURL())
	return app, nil
}

func (a *App) journal(r manager.Result) {
	if r.OK() {
		a.logbook.Info("%s", r.Message())
		return
	}
	a.logbook.Error("%s", r.Message())
}

func (a *App) setStatus(msg string, isErr bool) {
	a.statusMsg = msg
	a.statusErr = isErr
}

func (a *App) report(r manager.Result) {
	a.setStatus(r.Message(), !r.OK())
}

// Init is called once when the program starts: the mount-time load.
func (a *App) Init() tea.Cmd {
	return a.reload()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		cellWidth := max(8, a.columnWidth()-2)
		a.addForm.setWidth(cellWidth)
		a.editForm.setWidth(cellWidth)
		return a, nil

	case loadedMsg:
		a.report(a.plans.FinishLoad(msg.plans, msg.err))
		if _, editing := a.plans.EditingID(); !editing {
			a.editForm.reset()
			a.editForm.blur()
			if a.focus == focusEdit {
				a.focus = focusTable
			}
		}
		a.clampSelection()
		return a, nil

	case createdMsg:
		res := a.plans.FinishCreate(msg.plan, msg.err)
		a.report(res)
		if res.OK() {
			a.addForm.reset()
			a.addForm.blur()
			if a.focus == focusAdd {
				a.focus = focusTable
			}
			a.selection = len(a.plans.Plans()) - 1
		}
		return a, nil

	case savedMsg:
		res := a.plans.FinishSave(msg.id, msg.plan, msg.err)
		a.report(res)
		if res.OK() && a.focus == focusEdit {
			if _, editing := a.plans.EditingID(); !editing {
				a.editForm.blur()
				a.focus = focusTable
			}
		}
		return a, nil

	case deletedMsg:
		res := a.plans.FinishDelete(msg.id, msg.err)
		a.report(res)
		if _, editing := a.plans.EditingID(); !editing && a.focus == focusEdit {
			a.focus = focusTable
		}
		a.clampSelection()
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Abort) {
			return a, tea.Quit
		}
		switch a.focus {
		case focusAdd:
			return a, a.handleAddKey(msg)
		case focusEdit:
			return a, a.handleEditKey(msg)
		default:
			return a.handleTableKey(msg)
		}
	}
	return a, nil
}

func (a *App) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := a.plans.Plans()
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		if a.selection > 0 {
			a.selection--
		}
	case key.Matches(msg, a.keys.Down):
		if a.selection < len(rows)-1 {
			a.selection++
		}
	case key.Matches(msg, a.keys.Add):
		a.openAdd()
	case key.Matches(msg, a.keys.Edit):
		if p, ok := a.selectedPlan(); ok {
			if id, editing := a.plans.EditingID(); editing && id == p.ID {
				a.focusEditForm()
				return a, nil
			}
			a.beginEdit(p.ID)
		}
	case key.Matches(msg, a.keys.Delete):
		if p, ok := a.selectedPlan(); ok {
			return a, a.deletePlan(p.ID)
		}
	case key.Matches(msg, a.keys.Reload):
		return a, a.reload()
	case key.Matches(msg, a.keys.Cancel):
		if _, editing := a.plans.EditingID(); editing {
			a.cancelEdit()
		}
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return a, nil
}

func (a *App) handleAddKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Submit):
		return a.submitAdd()
	case key.Matches(msg, a.keys.Cancel):
		a.cancelAdd()
		return nil
	case key.Matches(msg, a.keys.Next):
		a.addForm.next()
		return nil
	case key.Matches(msg, a.keys.Prev):
		a.addForm.prev()
		return nil
	case key.Matches(msg, a.keys.Table):
		a.addForm.blur()
		a.focus = focusTable
		return nil
	}
	cmd := a.addForm.update(msg)
	a.plans.SetDraft(a.addForm.fields())
	return cmd
}

func (a *App) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Submit):
		return a.saveEdit()
	case key.Matches(msg, a.keys.Cancel):
		a.cancelEdit()
		return nil
	case key.Matches(msg, a.keys.Next):
		a.editForm.next()
		return nil
	case key.Matches(msg, a.keys.Prev):
		a.editForm.prev()
		return nil
	case key.Matches(msg, a.keys.Table):
		a.editForm.blur()
		a.focus = focusTable
		return nil
	}
	if a.plans.Saving() {
		return nil
	}
	cmd := a.editForm.update(msg)
	a.plans.SetEditBuffer(a.editForm.fields())
	return cmd
}

func (a *App) reload() tea.Cmd {
	if err := a.plans.BeginLoad(); err != nil {
		return nil
	}
	a.setStatus("Loading plans…", false)
	ctx, api := a.ctx, a.api
	return func() tea.Msg {
		plans, err := api.List(ctx)
		return loadedMsg{plans: plans, err: err}
	}
}

func (a *App) openAdd() {
	a.plans.OpenAdd()
	a.editForm.blur()
	a.addForm.focusField(a.addForm.focus)
	a.focus = focusAdd
}

func (a *App) cancelAdd() {
	a.plans.CancelAdd()
	a.addForm.reset()
	a.addForm.blur()
	a.focus = focusTable
	a.setStatus("", false)
}

func (a *App) submitAdd() tea.Cmd {
	a.plans.SetDraft(a.addForm.fields())
	in, err := a.plans.BeginCreate()
	if err != nil {
		a.reportFormError("Adding plan", err)
		return nil
	}
	a.setStatus("Saving plan…", false)
	ctx, api := a.ctx, a.api
	return func() tea.Msg {
		created, err := api.Create(ctx, in)
		return createdMsg{plan: created, err: err}
	}
}

func (a *App) beginEdit(id int64) {
	if err := a.plans.BeginEdit(id); err != nil {
		a.reportFormError("Editing plan", err)
		return
	}
	a.editForm.setFields(a.plans.EditBuffer())
	a.focusEditForm()
}

func (a *App) focusEditForm() {
	a.addForm.blur()
	a.editForm.focusField(fieldName)
	a.focus = focusEdit
}

func (a *App) cancelEdit() {
	if a.plans.Saving() {
		return
	}
	a.plans.CancelEdit()
	a.editForm.reset()
	a.editForm.blur()
	a.focus = focusTable
	a.setStatus("", false)
}

func (a *App) saveEdit() tea.Cmd {
	a.plans.SetEditBuffer(a.editForm.fields())
	id, in, err := a.plans.BeginSave()
	if err != nil {
		a.reportFormError("Saving plan", err)
		return nil
	}
	a.setStatus(fmt.Sprintf("Saving plan #%d…", id), false)
	ctx, api := a.ctx, a.api
	return func() tea.Msg {
		updated, err := api.Update(ctx, id, in)
		return savedMsg{id: id, plan: updated, err: err}
	}
}

func (a *App) deletePlan(id int64) tea.Cmd {
	if err := a.plans.BeginDelete(id); err != nil {
		a.reportFormError("Deleting plan", err)
		return nil
	}
	a.setStatus(fmt.Sprintf("Deleting plan #%d…", id), false)
	ctx, api := a.ctx, a.api
	return func() tea.Msg {
		return deletedMsg{id: id, err: api.Delete(ctx, id)}
	}
}

// reportFormError surfaces checks that stop a request from being sent and
// journals them as warnings.
func (a *App) reportFormError(subject string, err error) {
	if errors.Is(err, manager.ErrBusy) {
		a.setStatus(subject+": still waiting for the server", false)
		a.logbook.Warn("%s ignored: request already in flight", subject)
		return
	}
	a.setStatus(fmt.Sprintf("%s: %v", subject, err), true)
	a.logbook.Warn("%s refused: %v", subject, err)
}

func (a *App) selectedPlan() (plan.Plan, bool) {
	rows := a.plans.Plans()
	if a.selection < 0 || a.selection >= len(rows) {
		return plan.Plan{}, false
	}
	return rows[a.selection], true
}

func (a *App) clampSelection() {
	n := len(a.plans.Plans())
	if a.selection >= n {
		a.selection = n - 1
	}
	if a.selection < 0 {
		a.selection = 0
	}
}
