// Package manager holds the state of the plan administration screen.
//
// Every request-backed operation is split into Begin and Finish halves so a
// UI can issue the request asynchronously and apply the response later. The
// Load/Create/Save/Delete helpers run both halves synchronously against an API.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/kingrea/plandesk/internal/plan"
)

var (
	// ErrBusy means the same form or row already has a request in flight.
	ErrBusy = errors.New("request already in flight")
	// ErrUnknownPlan means the id is not in the displayed list.
	ErrUnknownPlan = errors.New("plan not in list")
	// ErrNotEditing means save was requested with no row in edit mode.
	ErrNotEditing = errors.New("no plan is being edited")
	// ErrNotAdding means create was requested while the add form is closed.
	ErrNotAdding = errors.New("add form is not open")
)

// API is the subset of the REST client the manager drives.
type API interface {
	List(ctx context.Context) ([]plan.Plan, error)
	Create(ctx context.Context, in plan.Input) (plan.Plan, error)
	Update(ctx context.Context, id int64, in plan.Input) (plan.Plan, error)
	Delete(ctx context.Context, id int64) error
}

// Recorder receives the outcome of every finished operation.
type Recorder interface {
	Record(Result)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Result)

func (f RecorderFunc) Record(r Result) { f(r) }

// Manager mirrors the server's plan list plus the local form state.
// It is not safe for concurrent use; callers serialize access the way a UI
// event loop does.
type Manager struct {
	plans []plan.Plan
	draft plan.Draft

	isAdding  bool
	editing   bool
	editingID int64
	buffer    plan.EditBuffer

	loading  bool
	creating bool
	saving   bool
	deleting map[int64]struct{}

	recorder Recorder
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRecorder forwards operation results, e.g. to a logbook.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// New returns an empty manager. The list is populated by the first load.
func New(opts ...Option) *Manager {
	m := &Manager{deleting: map[int64]struct{}{}}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Plans returns a copy of the displayed list in server order.
func (m *Manager) Plans() []plan.Plan {
	out := make([]plan.Plan, len(m.plans))
	copy(out, m.plans)
	return out
}

// Plan looks up a displayed plan by id.
func (m *Manager) Plan(id int64) (plan.Plan, bool) {
	if idx := m.indexOf(id); idx >= 0 {
		return m.plans[idx], true
	}
	return plan.Plan{}, false
}

func (m *Manager) Draft() plan.Draft           { return m.draft }
func (m *Manager) IsAdding() bool              { return m.isAdding }
func (m *Manager) EditBuffer() plan.EditBuffer { return m.buffer }
func (m *Manager) Loading() bool               { return m.loading }
func (m *Manager) Creating() bool              { return m.creating }
func (m *Manager) Saving() bool                { return m.saving }

// EditingID reports which row is in edit mode, if any.
func (m *Manager) EditingID() (int64, bool) {
	return m.editingID, m.editing
}

// IsEditing reports whether id is the row in edit mode.
func (m *Manager) IsEditing(id int64) bool {
	return m.editing && m.editingID == id
}

// Deleting reports whether a delete for id is in flight.
func (m *Manager) Deleting(id int64) bool {
	_, ok := m.deleting[id]
	return ok
}

// BeginLoad marks a full reload as in flight.
func (m *Manager) BeginLoad() error {
	if m.loading {
		return ErrBusy
	}
	m.loading = true
	return nil
}

// FinishLoad replaces the list wholesale on success and keeps it on failure.
// An edit whose row is missing from the new list is dropped.
func (m *Manager) FinishLoad(plans []plan.Plan, err error) Result {
	m.loading = false
	if err == nil {
		m.plans = append([]plan.Plan(nil), plans...)
		if m.editing && !m.saving && m.indexOf(m.editingID) < 0 {
			m.editing = false
			m.editingID = 0
			m.buffer = plan.EditBuffer{}
		}
	}
	return m.record(Result{Op: OpLoad, Count: len(plans), Err: err})
}

// OpenAdd shows the add form. The draft is kept from any earlier failed attempt.
func (m *Manager) OpenAdd() {
	m.isAdding = true
}

// CancelAdd hides the add form and discards the draft.
func (m *Manager) CancelAdd() {
	m.isAdding = false
	m.draft = plan.Draft{}
}

// SetDraft replaces the add-form text.
func (m *Manager) SetDraft(d plan.Draft) {
	m.draft = d
}

// BeginCreate checks the draft and marks a create as in flight.
// A form error leaves everything untouched and sends nothing.
func (m *Manager) BeginCreate() (plan.Input, error) {
	if !m.isAdding {
		return plan.Input{}, ErrNotAdding
	}
	if m.creating {
		return plan.Input{}, ErrBusy
	}
	in, err := m.draft.Input()
	if err != nil {
		return plan.Input{}, err
	}
	m.creating = true
	return in, nil
}

// FinishCreate appends the server's record, clears the draft and hides the
// form. On failure the form stays open with the typed values.
func (m *Manager) FinishCreate(created plan.Plan, err error) Result {
	m.creating = false
	if err != nil {
		return m.record(Result{Op: OpCreate, Err: err})
	}
	m.plans = append(m.plans, created)
	m.draft = plan.Draft{}
	m.isAdding = false
	return m.record(Result{Op: OpCreate, PlanID: created.ID, Name: created.Name})
}

// BeginEdit puts the row in edit mode seeded with its displayed values.
// Any other row's unsaved buffer is dropped.
func (m *Manager) BeginEdit(id int64) error {
	p, ok := m.Plan(id)
	if !ok {
		return fmt.Errorf("edit %d: %w", id, ErrUnknownPlan)
	}
	if m.saving && m.editingID != id {
		return ErrBusy
	}
	m.editing = true
	m.editingID = id
	m.buffer = plan.BufferFrom(p)
	return nil
}

// SetEditBuffer replaces the working copy of the row being edited.
func (m *Manager) SetEditBuffer(b plan.EditBuffer) {
	if m.editing {
		m.buffer = b
	}
}

// CancelEdit leaves edit mode and discards the buffer without a request.
func (m *Manager) CancelEdit() {
	if m.saving {
		return
	}
	m.editing = false
	m.editingID = 0
	m.buffer = plan.EditBuffer{}
}

// BeginSave checks the buffer and marks the replace request as in flight.
func (m *Manager) BeginSave() (int64, plan.Input, error) {
	if !m.editing {
		return 0, plan.Input{}, ErrNotEditing
	}
	if m.saving {
		return 0, plan.Input{}, ErrBusy
	}
	in, err := m.buffer.Input()
	if err != nil {
		return 0, plan.Input{}, err
	}
	m.saving = true
	return m.editingID, in, nil
}

// FinishSave swaps in the server's record and leaves edit mode. On failure
// the row stays in edit mode so the user can retry.
func (m *Manager) FinishSave(id int64, updated plan.Plan, err error) Result {
	m.saving = false
	if err != nil {
		return m.record(Result{Op: OpSave, PlanID: id, Err: err})
	}
	if idx := m.indexOf(id); idx >= 0 {
		m.plans[idx] = updated
	}
	if m.editing && m.editingID == id {
		m.editing = false
		m.editingID = 0
		m.buffer = plan.EditBuffer{}
	}
	return m.record(Result{Op: OpSave, PlanID: id, Name: updated.Name})
}

// BeginDelete marks a delete for id as in flight.
func (m *Manager) BeginDelete(id int64) error {
	if m.indexOf(id) < 0 {
		return fmt.Errorf("delete %d: %w", id, ErrUnknownPlan)
	}
	if m.Deleting(id) {
		return ErrBusy
	}
	m.deleting[id] = struct{}{}
	return nil
}

// FinishDelete drops the row once the server confirms. A failed delete
// leaves the row displayed.
func (m *Manager) FinishDelete(id int64, err error) Result {
	delete(m.deleting, id)
	if err != nil {
		return m.record(Result{Op: OpDelete, PlanID: id, Err: err})
	}
	name := ""
	kept := m.plans[:0]
	for _, p := range m.plans {
		if p.ID == id {
			name = p.Name
			continue
		}
		kept = append(kept, p)
	}
	m.plans = kept
	if m.editing && m.editingID == id && !m.saving {
		m.editing = false
		m.editingID = 0
		m.buffer = plan.EditBuffer{}
	}
	return m.record(Result{Op: OpDelete, PlanID: id, Name: name})
}

func (m *Manager) indexOf(id int64) int {
	for i, p := range m.plans {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) record(r Result) Result {
	if m.recorder != nil {
		m.recorder.Record(r)
	}
	return r
}
