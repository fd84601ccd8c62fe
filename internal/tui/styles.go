package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4CAF50")).
			MarginBottom(1)
	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4CAF50"))
	cellStyle         = lipgloss.NewStyle()
	selectedCellStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	editButtonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9800"))
	deleteButtonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F44336"))
	addButtonStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	cancelButtonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	pendingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Italic(true)
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	placeholderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	successStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	panelStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#444444")).
				Padding(0, 1)
	focusedPanelStyle = panelStyle.BorderForeground(lipgloss.Color("#5B8DEF"))
	logHeadStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	logBodyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
)
