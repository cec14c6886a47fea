package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	PageDashboard = "dashboard"
	PageBlocked   = "blocked"
)

var columnTitles = []string{"Date", "Start Time", "End Time", "Participants", "Select"}

// MeetingTable lists the loaded one-on-one meetings with a select column.
type MeetingTable struct {
	*tview.Table
	loc      *time.Location
	meetings []meeting.Meeting
	selected []bool
	days     int
}

func NewMeetingTable(loc *time.Location) *MeetingTable {
	table := tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	table.SetBackgroundColor(tcell.ColorDefault)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorSteelBlue).
		Attributes(tcell.AttrBold))
	table.SetBorder(true).SetTitle("Upcoming One-on-One Meetings")

	mt := &MeetingTable{Table: table, loc: loc}
	mt.render()
	return mt
}

// SetMeetings replaces the rows and clears the select column.
func (mt *MeetingTable) SetMeetings(meetings []meeting.Meeting, days int) {
	mt.meetings = meetings
	mt.selected = make([]bool, len(meetings))
	mt.days = days
	mt.render()
	if len(meetings) > 0 {
		mt.Select(1, 0)
	}
}

// CurrentIndex returns the meeting index under the cursor, or -1.
func (mt *MeetingTable) CurrentIndex() int {
	row, _ := mt.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(mt.meetings) {
		return -1
	}
	return idx
}

// Toggle flips the select mark of a row.
func (mt *MeetingTable) Toggle(idx int) {
	if idx < 0 || idx >= len(mt.selected) {
		return
	}
	mt.selected[idx] = !mt.selected[idx]
	mt.SetCell(idx+1, len(columnTitles)-1, selectCell(mt.selected[idx]))
}

func (mt *MeetingTable) ClearSelection() {
	for i := range mt.selected {
		mt.selected[i] = false
	}
	mt.render()
}

func (mt *MeetingTable) SelectedCount() int {
	n := 0
	for _, s := range mt.selected {
		if s {
			n++
		}
	}
	return n
}

func (mt *MeetingTable) render() {
	mt.Clear()
	for col, title := range columnTitles {
		mt.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false))
	}
	for i, m := range mt.meetings {
		for col, text := range meetingRow(m, mt.loc) {
			cell := tview.NewTableCell(text)
			if col == 3 {
				cell.SetExpansion(1)
			}
			mt.SetCell(i+1, col, cell)
		}
		mt.SetCell(i+1, len(columnTitles)-1, selectCell(mt.selected[i]))
	}
	if len(mt.meetings) == 0 && mt.days > 0 {
		mt.SetCell(1, 0, tview.NewTableCell(strings.ReplaceAll(noMeetingsText(mt.days), "\n", " ")).
			SetTextColor(tcell.ColorDimGray).
			SetSelectable(false))
	}
}

func selectCell(selected bool) *tview.TableCell {
	cell := tview.NewTableCell(selectMark(selected)).SetAlign(tview.AlignCenter)
	if selected {
		cell.SetTextColor(tcell.ColorGreen)
	}
	return cell
}

// ComposePane shows the reminder template around an editable note.
type ComposePane struct {
	*tview.Flex
	note *tview.TextArea
}

func NewComposePane(note, defaultNote, signature string) *ComposePane {
	header := tview.NewTextView().SetDynamicColors(true).SetText("[orange]" + tview.Escape(templatePreview()))
	header.SetBackgroundColor(tcell.ColorDefault)

	area := tview.NewTextArea().SetPlaceholder(defaultNote)
	area.SetText(note, false)
	area.SetBorder(true).SetTitle("Note")

	footer := tview.NewTextView().SetDynamicColors(true).SetText("[orange]Best regards,\n" + tview.Escape(signature))
	footer.SetBackgroundColor(tcell.ColorDefault)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 2, 0, false).
		AddItem(area, 0, 1, true).
		AddItem(footer, 2, 0, false)
	flex.SetBackgroundColor(tcell.ColorDefault)

	return &ComposePane{Flex: flex, note: area}
}

func (cp *ComposePane) Note() string { return cp.note.GetText() }

// NoticePane keeps the latest dispatcher notices.
type NoticePane struct {
	*tview.TextView
	lines []string
}

func NewNoticePane() *NoticePane {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	tv.SetBackgroundColor(tcell.ColorDefault)
	tv.SetBorder(true).SetTitle("Notices")
	return &NoticePane{TextView: tv}
}

func (np *NoticePane) Add(n reminder.Notice) {
	var line string
	switch n.Level {
	case reminder.LevelSuccess:
		line = fmt.Sprintf("[green]✓ %s[-]", tview.Escape(n.Text))
	case reminder.LevelError:
		line = fmt.Sprintf("[red]✗ %s[-]", tview.Escape(n.Text))
	default:
		line = "• " + tview.Escape(n.Text)
	}
	np.lines = append(np.lines, line)
	if len(np.lines) > maxNotices {
		np.lines = np.lines[len(np.lines)-maxNotices:]
	}
	np.SetText(strings.Join(np.lines, "\n")).ScrollToEnd()
}
