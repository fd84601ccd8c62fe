package tui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/plandesk/internal/plan"
)

const (
	fieldName = iota
	fieldDuration
	fieldPrice
	fieldCount
)

// planForm is the three-input editor shared by the add form and the edited row.
type planForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
}

func newPlanForm(currency string) planForm {
	var f planForm
	placeholders := [fieldCount]string{"Plan Name", "Duration (days)", "Price (" + currency + ")"}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		// Unlimited, so seeded row values reach the PUT unchanged.
		ti.CharLimit = 0
		ti.Width = 18
		ti.Cursor.SetMode(cursor.CursorStatic)
		ti.PlaceholderStyle = placeholderStyle
		f.inputs[i] = ti
	}
	return f
}

func (f *planForm) setFields(fields plan.Fields) {
	f.inputs[fieldName].SetValue(fields.Name)
	f.inputs[fieldDuration].SetValue(fields.DurationDays)
	f.inputs[fieldPrice].SetValue(fields.Price)
}

func (f planForm) fields() plan.Fields {
	return plan.Fields{
		Name:         f.inputs[fieldName].Value(),
		DurationDays: f.inputs[fieldDuration].Value(),
		Price:        f.inputs[fieldPrice].Value(),
	}
}

func (f *planForm) reset() {
	f.setFields(plan.Fields{})
	f.focusField(fieldName)
}

func (f *planForm) focusField(idx int) {
	if idx < 0 {
		idx = fieldCount - 1
	}
	f.focus = idx % fieldCount
	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *planForm) blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *planForm) next() { f.focusField(f.focus + 1) }
func (f *planForm) prev() { f.focusField(f.focus - 1) }

func (f *planForm) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(4, width)
	}
}

// update feeds a message to the focused input. Numeric fields drop
// keystrokes a number input would refuse.
func (f *planForm) update(msg tea.Msg) tea.Cmd {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && f.focus != fieldName && keyMsg.Type == tea.KeyRunes {
		kept := keyMsg.Runes[:0:0]
		for _, r := range keyMsg.Runes {
			if plan.IsNumericRune(r) {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			return nil
		}
		keyMsg.Runes = kept
		msg = keyMsg
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f planForm) view(idx int) string {
	return f.inputs[idx].View()
}
