package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/plandesk/internal/plan"
)

const (
	defaultWidth = 100
	logPanelRows = 6
	actionsWidth = 26
)

// View renders the current state to a string.
func (a *App) View() string {
	sections := []string{
		titleStyle.Render("Plans"),
		a.renderTable(),
		a.renderAddArea(),
	}
	if status := a.renderStatus(); status != "" {
		sections = append(sections, status)
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.help.View(a.keys.forFocus(a.focus)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) totalWidth() int {
	if a.width <= 0 {
		return defaultWidth
	}
	return a.width
}

// columnWidth is the width of each of the three data columns.
func (a *App) columnWidth() int {
	return max(12, (a.totalWidth()-actionsWidth-6)/3)
}

func (a *App) renderTable() string {
	w := a.columnWidth()
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		headerCellStyle.Width(2).Render(""),
		headerCellStyle.Width(w).Render("Name"),
		headerCellStyle.Width(w).Render("Duration (days)"),
		headerCellStyle.Width(w).Render(fmt.Sprintf("Price (%s)", a.config.Currency())),
		headerCellStyle.Width(actionsWidth).Render("Actions"),
	)
	rows := a.plans.Plans()
	lines := []string{header}
	if len(rows) == 0 {
		empty := "No plans yet."
		if a.plans.Loading() {
			empty = "Loading plans…"
		}
		lines = append(lines, mutedStyle.Render(empty))
	}
	for i, p := range rows {
		lines = append(lines, a.renderRow(i, p, w))
	}
	style := panelStyle
	if a.focus != focusAdd {
		style = focusedPanelStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (a *App) renderRow(idx int, p plan.Plan, w int) string {
	selected := idx == a.selection && a.focus == focusTable
	style := cellStyle
	marker := "  "
	if selected {
		style = selectedCellStyle
		marker = "› "
	}
	var name, days, price string
	if a.plans.IsEditing(p.ID) {
		name = a.editForm.view(fieldName)
		days = a.editForm.view(fieldDuration)
		price = a.editForm.view(fieldPrice)
	} else {
		name = p.Name
		days = strconv.Itoa(p.DurationDays)
		price = p.Price.StringFixed(2)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		style.Width(2).Render(marker),
		style.Width(w).MaxHeight(1).Render(name),
		style.Width(w).MaxHeight(1).Render(days),
		style.Width(w).MaxHeight(1).Render(price),
		lipgloss.NewStyle().Width(actionsWidth).Render(a.renderActions(p)),
	)
}

func (a *App) renderActions(p plan.Plan) string {
	if a.plans.Deleting(p.ID) {
		return pendingStyle.Render("deleting…")
	}
	if a.plans.IsEditing(p.ID) {
		if a.plans.Saving() {
			return pendingStyle.Render("saving…")
		}
		return editButtonStyle.Render("[Save]") + " " + cancelButtonStyle.Render("[Cancel]") + " " + deleteButtonStyle.Render("[Delete]")
	}
	return editButtonStyle.Render("[Edit]") + " " + deleteButtonStyle.Render("[Delete]")
}

func (a *App) renderAddArea() string {
	if !a.plans.IsAdding() {
		return addButtonStyle.Render("+ Add New Plan") + mutedStyle.Render("  (a)")
	}
	w := a.columnWidth()
	fields := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(w).Render(a.addForm.view(fieldName)),
		lipgloss.NewStyle().Width(w).Render(a.addForm.view(fieldDuration)),
		lipgloss.NewStyle().Width(w).Render(a.addForm.view(fieldPrice)),
	)
	buttons := addButtonStyle.Render("[Save Plan]") + " " + cancelButtonStyle.Render("[Cancel]")
	if a.plans.Creating() {
		buttons = pendingStyle.Render("saving…")
	}
	style := panelStyle
	if a.focus == focusAdd {
		style = focusedPanelStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, fields, buttons))
}

func (a *App) renderStatus() string {
	if strings.TrimSpace(a.statusMsg) == "" {
		return ""
	}
	if a.statusErr {
		return errorStyle.Render("⚠ " + a.statusMsg)
	}
	return successStyle.Render(a.statusMsg)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logPanelRows)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := logHeadStyle.Render(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	body := logBodyStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Width(max(20, a.totalWidth()-2)).Render(head + "\n" + body)
}
