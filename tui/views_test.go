package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
)

func tableMeetings() []meeting.Meeting {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return []meeting.Meeting{
		{ID: "a", Start: start, End: start.Add(time.Hour),
			Attendees: []meeting.Attendee{{Email: "alice@example.com"}, {Email: "bob@example.com"}}},
		{ID: "b", Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour),
			Attendees: []meeting.Attendee{{Email: "carol@example.com"}, {Email: "dave@example.com"}}},
	}
}

func TestMeetingTable_SetMeetings(t *testing.T) {
	mt := NewMeetingTable(time.UTC)
	assert.Equal(t, -1, mt.CurrentIndex())
	assert.Equal(t, 1, mt.GetRowCount())

	mt.SetMeetings(tableMeetings(), 7)
	require.Equal(t, 3, mt.GetRowCount())
	assert.Equal(t, len(columnTitles), mt.GetColumnCount())
	assert.Equal(t, "Participants", mt.GetCell(0, 3).Text)
	assert.Equal(t, "2024-01-01", mt.GetCell(1, 0).Text)
	assert.Equal(t, "10:00 AM", mt.GetCell(1, 1).Text)
	assert.Equal(t, "alice@example.com, bob@example.com", mt.GetCell(1, 3).Text)
	assert.Equal(t, "[ ]", mt.GetCell(1, 4).Text)
	assert.Equal(t, 0, mt.CurrentIndex())
}

func TestMeetingTable_Toggle(t *testing.T) {
	mt := NewMeetingTable(time.UTC)
	mt.SetMeetings(tableMeetings(), 7)

	mt.Select(2, 0)
	require.Equal(t, 1, mt.CurrentIndex())
	mt.Toggle(mt.CurrentIndex())
	assert.Equal(t, "[x]", mt.GetCell(2, 4).Text)
	assert.Equal(t, "[ ]", mt.GetCell(1, 4).Text)
	assert.Equal(t, 1, mt.SelectedCount())

	mt.Toggle(5)
	mt.Toggle(-1)
	assert.Equal(t, 1, mt.SelectedCount())

	mt.ClearSelection()
	assert.Equal(t, 0, mt.SelectedCount())
	assert.Equal(t, "[ ]", mt.GetCell(2, 4).Text)

	// a reload resets the marks
	mt.Toggle(0)
	mt.SetMeetings(tableMeetings(), 7)
	assert.Equal(t, 0, mt.SelectedCount())
}

func TestMeetingTable_Empty(t *testing.T) {
	mt := NewMeetingTable(time.UTC)
	mt.SetMeetings(nil, 15)
	assert.Equal(t, -1, mt.CurrentIndex())
	assert.Contains(t, mt.GetCell(1, 0).Text, "No Upcoming Meetings Scheduled")
	assert.Contains(t, mt.GetCell(1, 0).Text, "15 days")
}

func TestNoticePane_KeepsLatest(t *testing.T) {
	np := NewNoticePane()
	np.Add(reminder.Notice{Level: reminder.LevelError, Text: "An error occurred while sending email to bob@example.com: quota"})
	assert.Contains(t, np.GetText(true), "✗ An error occurred")

	for i := 0; i < maxNotices+3; i++ {
		np.Add(reminder.Notice{Level: reminder.LevelSuccess, Text: "Reminder email sent to alice@example.com"})
	}
	assert.Len(t, np.lines, maxNotices)
	assert.NotContains(t, np.GetText(true), "An error occurred")
}
