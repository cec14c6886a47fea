package tui

import "github.com/charmbracelet/lipgloss"

var (
	// General
	AppStyle   = lipgloss.NewStyle().Padding(0, 1)
	TitleStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("63")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "244"})

	// Look-ahead selector
	WindowOptionStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "244"}).Padding(0, 1)
	ActiveWindowOptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("99")).Bold(true).Padding(0, 1)

	// Meetings table and empty state
	TableBoxStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).BorderForeground(lipgloss.Color("240"))
	FocusedBoxStyle = TableBoxStyle.BorderForeground(lipgloss.Color("99"))
	EmptyStateStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2)

	// Note editor
	TemplateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Notices
	NoticeSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	NoticeErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	NoticeInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "15"})

	// Blocking error view
	BlockedStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("196")).Padding(1, 2)

	// Status Bar
	StatusBarSuccessStyle = lipgloss.NewStyle().Background(lipgloss.Color("28")).Foreground(lipgloss.Color("255")).Padding(0, 1)
	StatusBarNormalStyle  = lipgloss.NewStyle().Background(lipgloss.Color("235")).Foreground(lipgloss.Color("250")).Padding(0, 1)
	StatusBarErrorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("196")).Foreground(lipgloss.Color("255")).Padding(0, 1)
)
