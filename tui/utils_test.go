package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
)

func TestMeetingRow(t *testing.T) {
	m := meeting.Meeting{
		Start: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC),
		Attendees: []meeting.Attendee{
			{Email: "alice@example.com"},
			{Email: "bob@example.com"},
		},
	}
	assert.Equal(t, []string{"2024-01-01", "10:00 AM", "02:30 PM", "alice@example.com, bob@example.com"}, meetingRow(m, time.UTC))
}

func TestMeetingRowAllDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	m := meeting.Meeting{
		Start:     day,
		End:       day.AddDate(0, 0, 1),
		AllDay:    true,
		Attendees: []meeting.Attendee{{Email: "alice@example.com"}, {Email: "bob@example.com"}},
	}
	assert.Equal(t, []string{"2024-01-02", "All day", "", "alice@example.com, bob@example.com"}, meetingRow(m, ny))

	m.AllDay = false
	m.Start = time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	m.End = m.Start.Add(time.Hour)
	assert.Equal(t, []string{"2024-01-01", "10:00 PM", "11:00 PM", "alice@example.com, bob@example.com"}, meetingRow(m, ny))
}

func TestDispatchSummary(t *testing.T) {
	tests := []struct {
		name    string
		results []reminder.DispatchResult
		want    string
		failed  bool
	}{
		{"all sent", []reminder.DispatchResult{{Outcome: reminder.Sent}, {Outcome: reminder.Sent}}, "Sent 2 reminders", false},
		{"one failed", []reminder.DispatchResult{{Outcome: reminder.Sent}, {Outcome: reminder.Failed, Reason: errors.New("x").Error()}}, "Sent 1 reminders, 1 failed", true},
		{"empty", nil, "Sent 0 reminders", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, failed := dispatchSummary(tt.results)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.failed, failed)
		})
	}
}

func TestWindowHelpers(t *testing.T) {
	assert.Equal(t, "1 day", windowLabel(1))
	assert.Equal(t, "30 days", windowLabel(30))
	assert.Equal(t, 2, windowIndex(15))
	assert.Equal(t, 0, windowIndex(99))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("ab", 7))
}
