package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/kingrea/plandesk/internal/config"
	"github.com/kingrea/plandesk/internal/plan"
)

type apiCall struct {
	method string
	id     int64
	input  plan.Input
}

type fakeAPI struct {
	plans   []plan.Plan
	nextID  int64
	calls   []apiCall
	failing map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		plans: []plan.Plan{
			{ID: 3, Name: "Silver", DurationDays: 90, Price: decimal.NewFromInt(249)},
			{ID: 1, Name: "Basic", DurationDays: 7, Price: decimal.NewFromInt(49)},
			{ID: 5, Name: "Trial", DurationDays: 3, Price: decimal.Zero},
		},
		nextID:  7,
		failing: map[string]error{},
	}
}

func (f *fakeAPI) List(ctx context.Context) ([]plan.Plan, error) {
	f.calls = append(f.calls, apiCall{method: "GET"})
	if err := f.failing["GET"]; err != nil {
		return nil, err
	}
	return append([]plan.Plan(nil), f.plans...), nil
}

func (f *fakeAPI) Create(ctx context.Context, in plan.Input) (plan.Plan, error) {
	f.calls = append(f.calls, apiCall{method: "POST", input: in})
	if err := f.failing["POST"]; err != nil {
		return plan.Plan{}, err
	}
	p := toPlan(f.nextID, in)
	f.nextID++
	f.plans = append(f.plans, p)
	return p, nil
}

func (f *fakeAPI) Update(ctx context.Context, id int64, in plan.Input) (plan.Plan, error) {
	f.calls = append(f.calls, apiCall{method: "PUT", id: id, input: in})
	if err := f.failing["PUT"]; err != nil {
		return plan.Plan{}, err
	}
	return toPlan(id, in), nil
}

func (f *fakeAPI) Delete(ctx context.Context, id int64) error {
	f.calls = append(f.calls, apiCall{method: "DELETE", id: id})
	return f.failing["DELETE"]
}

func (f *fakeAPI) mutations() []apiCall {
	var out []apiCall
	for _, c := range f.calls {
		if c.method != "GET" {
			out = append(out, c)
		}
	}
	return out
}

func toPlan(id int64, in plan.Input) plan.Plan {
	days, _ := in.DurationDays.Int64()
	return plan.Plan{ID: id, Name: in.Name, DurationDays: int(days), Price: decimal.RequireFromString(in.Price.String())}
}

func newTestApp(t *testing.T, api *fakeAPI) *App {
	t.Helper()
	for _, key := range []string{"PLANDESK_API_URL", "PLANDESK_TIMEOUT", "PLANDESK_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	cfg, err := config.NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	app, err := NewApp(cfg, WithAPI(api))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	app = runCommands(t, app, app.Init())
	return app
}

func runCommands(t *testing.T, model tea.Model, cmd tea.Cmd) *App {
	t.Helper()
	app, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			break
		}
		if _, quit := msg.(tea.QuitMsg); quit {
			break
		}
		nextModel, nextCmd := app.Update(msg)
		var ok bool
		app, ok = nextModel.(*App)
		if !ok {
			t.Fatalf("unexpected model type: %T", nextModel)
		}
		cmd = nextCmd
	}
	return app
}

func press(t *testing.T, app *App, msgs ...tea.KeyMsg) *App {
	t.Helper()
	for _, msg := range msgs {
		model, cmd := app.Update(msg)
		app = runCommands(t, model, cmd)
	}
	return app
}

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyCtrlT = tea.KeyMsg{Type: tea.KeyCtrlT}
)

func rowIDs(app *App) []int64 {
	var ids []int64
	for _, p := range app.plans.Plans() {
		ids = append(ids, p.ID)
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInitLoadsRowsInResponseOrder(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	if got := rowIDs(app); !equalIDs(got, []int64{3, 1, 5}) {
		t.Fatalf("rows = %v, want [3 1 5]", got)
	}
	if len(api.calls) != 1 || api.calls[0].method != "GET" {
		t.Fatalf("expected one list call, got %+v", api.calls)
	}
	view := app.View()
	for _, want := range []string{"Silver", "Basic", "Trial", "Price (₹)", "+ Add New Plan"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestInitLoadFailureIsReported(t *testing.T) {
	api := newFakeAPI()
	api.failing["GET"] = errors.New("connection refused")
	app := newTestApp(t, api)
	if len(app.plans.Plans()) != 0 {
		t.Fatalf("expected empty table after failed load")
	}
	if !app.statusErr || !strings.Contains(app.statusMsg, "connection refused") {
		t.Fatalf("expected error banner, got %q", app.statusMsg)
	}
	lines, _ := app.logbook.Tail(5)
	if !strings.Contains(strings.Join(lines, "\n"), "ERROR") {
		t.Fatalf("failure should be journaled, got %v", lines)
	}
}

func TestAddPlanAppendsServerRecord(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, typed("a"), typed("Gold"), keyTab, typed("30"), keyTab, typed("499"), keyEnter)

	muts := api.mutations()
	if len(muts) != 1 || muts[0].method != "POST" {
		t.Fatalf("expected one create, got %+v", muts)
	}
	if muts[0].input != (plan.Input{Name: "Gold", DurationDays: "30", Price: "499"}) {
		t.Fatalf("unexpected body %+v", muts[0].input)
	}
	if got := rowIDs(app); !equalIDs(got, []int64{3, 1, 5, 7}) {
		t.Fatalf("rows = %v, want new id 7 last", got)
	}
	if app.plans.IsAdding() || !app.plans.Draft().IsZero() {
		t.Fatalf("add form should be hidden and draft cleared")
	}
	if app.focus != focusTable {
		t.Fatalf("focus should return to the table")
	}
	if app.addForm.fields() != (plan.Fields{}) {
		t.Fatalf("inputs should be cleared, got %+v", app.addForm.fields())
	}
}

func TestAddFailureKeepsFormOpen(t *testing.T) {
	api := newFakeAPI()
	api.failing["POST"] = errors.New("500 Internal Server Error")
	app := newTestApp(t, api)
	app = press(t, app, typed("a"), typed("Gold"), keyTab, typed("30"), keyTab, typed("499"), keyEnter)

	if !app.plans.IsAdding() {
		t.Fatalf("form should stay open")
	}
	want := plan.Fields{Name: "Gold", DurationDays: "30", Price: "499"}
	if app.addForm.fields() != want || app.plans.Draft() != want {
		t.Fatalf("typed values lost: %+v", app.addForm.fields())
	}
	if !app.statusErr {
		t.Fatalf("failure should be surfaced")
	}
	if len(app.plans.Plans()) != 3 {
		t.Fatalf("no row should be added")
	}
}

func TestAddRequiresAllFields(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, typed("a"), typed("Gold"), keyEnter)
	if len(api.mutations()) != 0 {
		t.Fatalf("incomplete form must not be sent")
	}
	if !app.statusErr || !strings.Contains(app.statusMsg, "duration_days") {
		t.Fatalf("expected field error, got %q", app.statusMsg)
	}
	lines, _ := app.logbook.Tail(1)
	if len(lines) != 1 || !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[0], "Adding plan refused: duration_days is required") {
		t.Fatalf("refusal should be journaled as a warning, got %v", lines)
	}
}

func TestDoubleSubmitSendsOneCreate(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, typed("a"), typed("Gold"), keyTab, typed("30"), keyTab, typed("499"))
	_, first := app.Update(keyEnter)
	_, second := app.Update(keyEnter)
	if first == nil {
		t.Fatalf("first submit should issue a request")
	}
	if second != nil {
		t.Fatalf("second submit while in flight should be ignored")
	}
	lines, _ := app.logbook.Tail(1)
	if len(lines) != 1 || !strings.Contains(lines[0], "WARN") || !strings.Contains(lines[0], "already in flight") {
		t.Fatalf("ignored submit should be journaled as a warning, got %v", lines)
	}
	app = runCommands(t, app, first)
	if len(api.mutations()) != 1 {
		t.Fatalf("expected exactly one create, got %d", len(api.mutations()))
	}
}

func TestNumericInputsDropLetters(t *testing.T) {
	app := newTestApp(t, newFakeAPI())
	app = press(t, app, typed("a"), typed("Gold"), keyTab, typed("3x0"), keyTab, typed("4₹9.5"))
	got := app.addForm.fields()
	if got.DurationDays != "30" || got.Price != "49.5" {
		t.Fatalf("numeric filtering failed: %+v", got)
	}
}

func TestCancelAddSendsNothing(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, typed("a"), typed("Half"), keyEsc)
	if app.plans.IsAdding() || app.addForm.fields() != (plan.Fields{}) {
		t.Fatalf("cancel should hide the form and discard input")
	}
	if len(api.mutations()) != 0 {
		t.Fatalf("cancel must not send requests")
	}
}

func TestEditSwitchDiscardsPreviousBuffer(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, typed("e"))
	if !app.plans.IsEditing(3) {
		t.Fatalf("first row should be in edit mode")
	}
	if app.editForm.fields() != (plan.Fields{Name: "Silver", DurationDays: "90", Price: "249"}) {
		t.Fatalf("edit inputs not seeded: %+v", app.editForm.fields())
	}
	if !strings.Contains(app.View(), "[Save]") {
		t.Fatalf("edited row should offer Save")
	}
	app = press(t, app, typed(" Plus"), keyCtrlT, keyDown, typed("e"))
	if !app.plans.IsEditing(1) || app.plans.IsEditing(3) {
		t.Fatalf("edit should move to the second row")
	}
	if app.editForm.fields().Name != "Basic" {
		t.Fatalf("second row inputs not seeded: %+v", app.editForm.fields())
	}
	first, _ := app.plans.Plan(3)
	if first.Name != "Silver" {
		t.Fatalf("abandoned edit must not touch the row, got %q", first.Name)
	}
	if len(api.mutations()) != 0 {
		t.Fatalf("switching rows must not send requests")
	}
}

func TestSaveEditSendsOnePut(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, typed("e"), keyTab, keyTab)
	app.editForm.inputs[fieldPrice].SetValue("")
	app = press(t, app, typed("199"), keyEnter)

	muts := api.mutations()
	if len(muts) != 1 {
		t.Fatalf("expected one request, got %+v", muts)
	}
	want := apiCall{method: "PUT", id: 3, input: plan.Input{Name: "Silver", DurationDays: "90", Price: "199"}}
	if muts[0] != want {
		t.Fatalf("request = %+v, want %+v", muts[0], want)
	}
	if _, editing := app.plans.EditingID(); editing {
		t.Fatalf("row should leave edit mode")
	}
	p, _ := app.plans.Plan(3)
	if !p.Price.Equal(decimal.NewFromInt(199)) {
		t.Fatalf("row should show server value, got %s", p.Price)
	}
}

func TestUnchangedEditSendsRowAsDisplayed(t *testing.T) {
	api := newFakeAPI()
	longName := strings.Repeat("Enterprise ", 13)
	api.plans[0] = plan.Plan{ID: 3, Name: longName, DurationDays: 1234567890, Price: decimal.RequireFromString("123456789012345.5")}
	app := newTestApp(t, api)
	app = press(t, app, typed("e"), keyEnter)

	muts := api.mutations()
	if len(muts) != 1 {
		t.Fatalf("expected one request, got %+v", muts)
	}
	want := plan.Input{Name: longName, DurationDays: "1234567890", Price: "123456789012345.5"}
	if muts[0].input != want {
		t.Fatalf("request = %+v, want %+v", muts[0].input, want)
	}
}

func TestSaveEditFailureKeepsTypedValues(t *testing.T) {
	api := newFakeAPI()
	api.failing["PUT"] = errors.New("timeout")
	app := newTestApp(t, api)
	app = press(t, app, typed("e"), keyTab, keyTab)
	app.editForm.inputs[fieldPrice].SetValue("")
	app = press(t, app, typed("150"), keyEnter)

	if !app.plans.IsEditing(3) {
		t.Fatalf("row should stay in edit mode")
	}
	if app.editForm.fields().Price != "150" {
		t.Fatalf("typed value lost: %+v", app.editForm.fields())
	}
	if !app.statusErr {
		t.Fatalf("failure should be surfaced")
	}
	delete(api.failing, "PUT")
	app = press(t, app, keyEnter)
	if app.plans.IsEditing(3) || len(api.mutations()) != 2 {
		t.Fatalf("retry should succeed with a second request")
	}
}

func TestCancelEditSendsNothing(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, typed("e"), typed("zzz"), keyEsc)
	if _, editing := app.plans.EditingID(); editing {
		t.Fatalf("cancel should leave edit mode")
	}
	p, _ := app.plans.Plan(3)
	if p.Name != "Silver" {
		t.Fatalf("cancel must discard typed values")
	}
	if len(api.mutations()) != 0 {
		t.Fatalf("cancel must not send requests")
	}
}

func TestDeleteRemovesRowOnSuccess(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, keyDown, keyDown, typed("d"))
	muts := api.mutations()
	if len(muts) != 1 || muts[0] != (apiCall{method: "DELETE", id: 5}) {
		t.Fatalf("expected DELETE 5, got %+v", muts)
	}
	if got := rowIDs(app); !equalIDs(got, []int64{3, 1}) {
		t.Fatalf("rows = %v", got)
	}
	if app.selection != 1 {
		t.Fatalf("selection should clamp to the last row, got %d", app.selection)
	}
}

func TestDeleteFailureKeepsRow(t *testing.T) {
	api := newFakeAPI()
	api.failing["DELETE"] = errors.New("404 Not Found")
	app := newTestApp(t, api)
	app = press(t, app, keyDown, keyDown, typed("d"))
	if got := rowIDs(app); !equalIDs(got, []int64{3, 1, 5}) {
		t.Fatalf("row must stay after failed delete, got %v", got)
	}
	if !app.statusErr {
		t.Fatalf("failure should be surfaced")
	}
}

func TestAddAndEditCanBeOpenTogether(t *testing.T) {
	app := newTestApp(t, newFakeAPI())
	app = press(t, app, typed("a"), typed("Gold"), keyCtrlT, typed("e"))
	if !app.plans.IsAdding() || !app.plans.IsEditing(3) {
		t.Fatalf("add form and row edit should coexist")
	}
	if app.addForm.fields().Name != "Gold" {
		t.Fatalf("add draft should survive editing another row")
	}
}

func TestReloadDropsEditOfVanishedRow(t *testing.T) {
	api := newFakeAPI()
	app := newTestApp(t, api)
	app = press(t, app, keyDown, keyDown, typed("e"))
	if !app.plans.IsEditing(5) {
		t.Fatalf("row 5 should be in edit mode")
	}
	api.plans = api.plans[:2]
	app = press(t, app, keyCtrlT, typed("r"))

	if _, editing := app.plans.EditingID(); editing {
		t.Fatalf("edit of a vanished row should be dropped")
	}
	if app.focus != focusTable {
		t.Fatalf("focus should be on the table")
	}
	app = press(t, app, keyEnter)
	if len(api.mutations()) != 0 {
		t.Fatalf("no request should target the vanished row, got %+v", api.mutations())
	}
}

func TestQuitFromTable(t *testing.T) {
	app := newTestApp(t, newFakeAPI())
	_, cmd := app.Update(typed("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
