package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bassamadnan/meetingmate/config"
	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
	"github.com/bassamadnan/meetingmate/workflow"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type viewState int

const (
	viewLoading viewState = iota
	viewDashboard
	viewBlocked
)

type focusArea int

const (
	focusTable focusArea = iota
	focusNote
)

const (
	maxNotices     = 6
	noteHeight     = 3
	minTableHeight = 3
	selectColWidth = 6
)

// Model is the bubbletea renderer of the selection workflow. It keeps its
// own copy of the loaded meetings and selection so that View never reads
// the workflow while a command is running against it.
type Model struct {
	ctx      context.Context
	workflow *workflow.Workflow
	settings *config.Manager
	notices  <-chan reminder.Notice
	owner    string
	loc      *time.Location

	table table.Model
	note  textarea.Model
	focus focusArea

	windowDays int
	meetings   []meeting.Meeting
	selected   []bool
	noticeLog  []reminder.Notice
	loadErr    error
	authErr    error
	busy       bool

	currentView viewState

	width, height int
	statusBarText string
	statusIsError bool
	statusIsTemp  bool
}

// NewInitialModel returns a model that loads the default window on start.
func NewInitialModel(ctx context.Context, wf *workflow.Workflow, cfgManager *config.Manager, notices <-chan reminder.Notice, owner string) Model {
	settings := cfgManager.Settings()
	loc, err := settings.Location()
	if err != nil {
		loc = time.Local
	}

	ta := textarea.New()
	ta.Placeholder = wf.DefaultNote()
	ta.ShowLineNumbers = false
	ta.CharLimit = 2000
	ta.SetHeight(noteHeight)
	ta.SetValue(wf.Note())
	ta.Blur()

	t := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(minTableHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("231")).Background(lipgloss.Color("99"))
	t.SetStyles(styles)

	return Model{
		ctx:           ctx,
		workflow:      wf,
		settings:      cfgManager,
		notices:       notices,
		owner:         owner,
		loc:           loc,
		table:         t,
		note:          ta,
		windowDays:    settings.DefaultWindowDays,
		busy:          true,
		currentView:   viewLoading,
		statusBarText: "Connecting to Google Calendar...",
	}
}

// NewBlockedModel returns a model that only shows a credential failure.
func NewBlockedModel(err error) Model {
	return Model{
		authErr:       err,
		currentView:   viewBlocked,
		statusBarText: "Authentication required",
		statusIsError: true,
	}
}

func (m Model) Init() tea.Cmd {
	log.Println("TUI Model Init called")
	if m.currentView == viewBlocked {
		return nil
	}
	return tea.Batch(
		loadMeetingsCmd(m.ctx, m.workflow, m.windowDays),
		waitForNoticeCmd(m.notices),
		statusTickCmd(1*time.Second),
	)
}

func tableColumns(width int) []table.Column {
	participants := width - 12 - 10 - 10 - selectColWidth - 10
	if participants < 20 {
		participants = 20
	}
	return []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Start Time", Width: 10},
		{Title: "End Time", Width: 10},
		{Title: "Participants", Width: participants},
		{Title: "Select", Width: selectColWidth},
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		if m.currentView == viewBlocked {
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				return m, tea.Quit
			}
			return m, nil
		}
		return m.handleKey(msg)

	case meetingsLoadedMsg:
		m.busy = false
		m.currentView = viewDashboard
		m.windowDays = msg.days
		if msg.err != nil {
			m.loadErr = msg.err
			m.meetings = nil
			m.selected = nil
			var srcErr *workflow.SourceError
			if errors.As(msg.err, &srcErr) {
				m.updateStatusError(srcErr.Error())
			} else {
				m.updateStatusError(fmt.Sprintf("Error: %v", msg.err))
			}
			log.Printf("TUI: load failed: %v", msg.err)
			break
		}
		m.loadErr = nil
		m.meetings = msg.meetings
		m.selected = make([]bool, len(msg.meetings))
		m.refreshRows()
		m.table.SetCursor(0)
		m.setStandardStatus()

	case dispatchDoneMsg:
		m.busy = false
		for i := range m.selected {
			m.selected[i] = false
		}
		m.refreshRows()
		summary, failed := dispatchSummary(msg.results)
		if failed {
			m.updateStatusError(summary)
		} else {
			m.showTemporaryStatus(summary, 4*time.Second, &cmds)
		}

	case NoticeMsg:
		m.addNotice(reminder.Notice(msg))
		cmds = append(cmds, waitForNoticeCmd(m.notices))

	case noticesClosedMsg:
		log.Println("TUI: notice channel closed.")

	case ErrorMsg:
		m.busy = false
		if errors.Is(msg.Err, workflow.ErrEmptySelection) {
			m.addNotice(reminder.Notice{Level: reminder.LevelError, Text: msg.Err.Error()})
			m.updateStatusError(msg.Err.Error())
			break
		}
		m.updateStatusError(fmt.Sprintf("Error: %v", msg.Err))

	case StatusTickMsg:
		if !m.statusIsTemp && !m.statusIsError && m.currentView == viewDashboard {
			m.setStandardStatus()
		}
		cmds = append(cmds, statusTickCmd(1*time.Second))

	case clearTempStatusMsg:
		if m.statusIsTemp {
			m.statusIsTemp = false
			m.setStandardStatus()
		}

	default:
		if m.focus == focusNote {
			var cmd tea.Cmd
			m.note, cmd = m.note.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+s":
		return m.send()
	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusNote {
		if msg.String() == "esc" {
			m.toggleFocus()
			return m, nil
		}
		var cmd tea.Cmd
		m.note, cmd = m.note.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case " ", "x":
		m.toggleSelected()
		return m, nil
	case "c":
		m.clearSelection()
		return m, nil
	case "p":
		m.switchPolicy()
		return m, nil
	case "s":
		return m.send()
	case "r":
		return m.reload(m.windowDays)
	case "left", "[":
		return m.reload(m.shiftWindow(-1))
	case "right", "]":
		return m.reload(m.shiftWindow(1))
	case "1", "2", "3", "4":
		idx := int(msg.Runes[0] - '1')
		return m.reload(meeting.WindowChoices[idx])
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == focusTable {
		m.focus = focusNote
		m.table.Blur()
		m.note.Focus()
	} else {
		m.focus = focusTable
		m.note.Blur()
		m.table.Focus()
	}
	m.setStandardStatus()
}

func (m *Model) toggleSelected() {
	if m.busy || len(m.meetings) == 0 {
		return
	}
	idx := m.table.Cursor()
	if err := m.workflow.Toggle(idx); err != nil {
		m.updateStatusError(fmt.Sprintf("Error: %v", err))
		return
	}
	m.selected[idx] = !m.selected[idx]
	m.refreshRows()
	m.setStandardStatus()
}

func (m *Model) clearSelection() {
	if m.busy || len(m.meetings) == 0 {
		return
	}
	m.workflow.ClearSelection()
	for i := range m.selected {
		m.selected[i] = false
	}
	m.refreshRows()
	m.setStandardStatus()
}

func (m *Model) switchPolicy() {
	if m.busy {
		return
	}
	policy, err := nextPolicy(m.settings, m.workflow)
	if err != nil {
		m.updateStatusError(fmt.Sprintf("Error: %v", err))
		return
	}
	m.addNotice(reminder.Notice{Level: reminder.LevelInfo, Text: policyLabel(policy)})
	m.setStandardStatus()
}

func (m Model) shiftWindow(delta int) int {
	idx := windowIndex(m.windowDays) + delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(meeting.WindowChoices) {
		idx = len(meeting.WindowChoices) - 1
	}
	return meeting.WindowChoices[idx]
}

func (m Model) reload(days int) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if days != m.windowDays {
		if err := m.settings.SetDefaultWindow(days); err != nil {
			log.Printf("TUI: unable to save look-ahead: %v", err)
		}
	}
	m.busy = true
	m.windowDays = days
	m.updateStatusBar(fmt.Sprintf("Loading meetings for the next %s...", windowLabel(days)))
	return m, loadMeetingsCmd(m.ctx, m.workflow, days)
}

func (m Model) send() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if !m.anySelected() {
		m.addNotice(reminder.Notice{Level: reminder.LevelError, Text: workflow.ErrEmptySelection.Error()})
		m.updateStatusError(workflow.ErrEmptySelection.Error())
		return m, nil
	}
	m.workflow.SetNote(m.note.Value())
	m.busy = true
	m.updateStatusBar("Sending reminders...")
	return m, sendRemindersCmd(m.ctx, m.workflow)
}

func (m Model) anySelected() bool {
	for _, s := range m.selected {
		if s {
			return true
		}
	}
	return false
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.meetings))
	for i, mt := range m.meetings {
		rows = append(rows, append(meetingRow(mt, m.loc), selectMark(m.selected[i])))
	}
	m.table.SetRows(rows)
}

func (m *Model) addNotice(n reminder.Notice) {
	m.noticeLog = append(m.noticeLog, n)
	if len(m.noticeLog) > maxNotices {
		m.noticeLog = m.noticeLog[len(m.noticeLog)-maxNotices:]
	}
}

// resize lays out the table and note editor for the current terminal size.
func (m *Model) resize() {
	if m.currentView == viewBlocked {
		return
	}
	innerWidth := m.width - AppStyle.GetHorizontalPadding() - 2
	if innerWidth < 40 {
		innerWidth = 40
	}
	m.table.SetColumns(tableColumns(innerWidth))
	m.table.SetWidth(innerWidth)
	m.note.SetWidth(innerWidth)

	// title, selector, note block, notices and status bar
	reserved := 1 + 2 + (noteHeight + 5) + (maxNotices + 1) + 1 + 4
	tableHeight := m.height - reserved
	if tableHeight < minTableHeight {
		tableHeight = minTableHeight
	}
	m.table.SetHeight(tableHeight)
}

func (m *Model) showTemporaryStatus(text string, duration time.Duration, cmds *[]tea.Cmd) {
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = true
	*cmds = append(*cmds, tea.Tick(duration, func(t time.Time) tea.Msg {
		return clearTempStatusMsg{}
	}))
}

func (m *Model) updateStatusBar(text string) {
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = false
}

func (m *Model) updateStatusError(text string) {
	m.statusBarText = text
	m.statusIsError = true
	m.statusIsTemp = false
}

func (m *Model) setStandardStatus() {
	if m.statusIsTemp {
		return
	}

	selected := 0
	for _, s := range m.selected {
		if s {
			selected++
		}
	}
	account := ""
	if m.owner != "" {
		account = m.owner + " | "
	}
	statusMsg := fmt.Sprintf(" %s%s | %d meetings, %d selected ",
		account, time.Now().Format("15:04:05"), len(m.meetings), selected)

	keyHints := "[Ctrl+C]:Quit | [Tab]:Note"
	if m.focus == focusTable {
		keyHints = "[Q]:Quit | [↑↓]:Nav | [Space]:Select | [C]:Clear | [P]:Recipients | [←→/1-4]:Window | [S]:Send Reminder | [Tab]:Note"
	} else {
		keyHints += " | [Esc]:Table | [Ctrl+S]:Send Reminder"
	}
	m.updateStatusBar(statusMsg + "| " + keyHints)
}

func (m Model) View() string {
	if m.currentView == viewBlocked {
		return m.renderBlocked()
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing terminal size..."
	}

	var sections []string
	sections = append(sections, TitleStyle.Render("MeetingMate · Upcoming One-on-One Meetings"))
	sections = append(sections, m.renderWindowSelector())

	switch {
	case m.currentView == viewLoading:
		sections = append(sections, DimStyle.Render("Loading meetings..."))
	case m.loadErr != nil:
		sections = append(sections, NoticeErrorStyle.Render(fmt.Sprintf("Unable to show meetings: %v", m.loadErr)))
	case len(m.meetings) == 0:
		sections = append(sections, EmptyStateStyle.Render(noMeetingsText(m.windowDays)))
	default:
		box := TableBoxStyle
		if m.focus == focusTable {
			box = FocusedBoxStyle
		}
		sections = append(sections, box.Render(m.table.View()))
		sections = append(sections, m.renderNoteEditor())
	}

	if notices := m.renderNotices(); notices != "" {
		sections = append(sections, notices)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar()))
}

func (m Model) renderWindowSelector() string {
	parts := []string{DimStyle.Render("Look-ahead:")}
	for i, d := range meeting.WindowChoices {
		label := fmt.Sprintf("%d %s", i+1, windowLabel(d))
		if d == m.windowDays {
			parts = append(parts, ActiveWindowOptionStyle.Render(label))
		} else {
			parts = append(parts, WindowOptionStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "\n"
}

func (m Model) renderNoteEditor() string {
	signature := m.settings.Settings().Signature
	if signature == "" {
		signature = reminder.DefaultSignature
	}
	box := TableBoxStyle
	if m.focus == focusNote {
		box = FocusedBoxStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		TemplateStyle.Render(templatePreview()),
		box.Render(m.note.View()),
		TemplateStyle.Render("Best regards,\n"+signature),
	)
}

func (m Model) renderNotices() string {
	if len(m.noticeLog) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.noticeLog))
	for _, n := range m.noticeLog {
		switch n.Level {
		case reminder.LevelSuccess:
			lines = append(lines, NoticeSuccessStyle.Render("✓ "+n.Text))
		case reminder.LevelError:
			lines = append(lines, NoticeErrorStyle.Render("✗ "+n.Text))
		default:
			lines = append(lines, NoticeInfoStyle.Render("• "+n.Text))
		}
	}
	return "\n" + strings.Join(lines, "\n")
}

func (m Model) renderBlocked() string {
	text := fmt.Sprintf("Authentication failed\n\n%v\n\nMeetingMate cannot read your calendar or send mail until this is resolved.\nCheck credentials.json and remove a stale token.json, then restart.\n\nPress Q to quit.", m.authErr)
	if m.width == 0 || m.height == 0 {
		return BlockedStyle.Render(text)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, BlockedStyle.Render(text))
}

func (m Model) renderStatusBar() string {
	styleToUse := StatusBarNormalStyle
	if m.statusIsError {
		styleToUse = StatusBarErrorStyle
	} else if m.statusIsTemp {
		styleToUse = StatusBarSuccessStyle
	}
	width := m.width - AppStyle.GetHorizontalPadding()
	return styleToUse.Width(width).Render(truncate(m.statusBarText, width))
}
