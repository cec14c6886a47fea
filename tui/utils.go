package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bassamadnan/meetingmate/config"
	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
	"github.com/bassamadnan/meetingmate/workflow"
)

const (
	timeLayout = "03:04 PM"
	allDayText = "All day"
)

// truncate shortens a string to a max length, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// meetingRow renders the Date, Start Time, End Time and Participants cells.
func meetingRow(m meeting.Meeting, loc *time.Location) []string {
	participants := strings.Join(m.Emails(), ", ")
	if m.AllDay {
		return []string{m.Date(loc), allDayText, "", participants}
	}
	return []string{
		m.Date(loc),
		m.Start.In(loc).Format(timeLayout),
		m.End.In(loc).Format(timeLayout),
		participants,
	}
}

func selectMark(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}

func windowLabel(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func windowIndex(days int) int {
	for i, d := range meeting.WindowChoices {
		if d == days {
			return i
		}
	}
	return 0
}

// nextPolicy switches the recipient policy, persists it and hands the
// rebuilt composer to the workflow.
func nextPolicy(settings *config.Manager, wf *workflow.Workflow) (reminder.RecipientPolicy, error) {
	current, err := reminder.ParseRecipientPolicy(settings.Settings().RecipientPolicy)
	if err != nil {
		return "", err
	}
	next := reminder.NonOrganizers
	if current == reminder.NonOrganizers {
		next = reminder.AllAttendees
	}
	if err := settings.SetRecipientPolicy(next); err != nil {
		return "", err
	}
	composer, err := settings.Settings().Composer()
	if err != nil {
		return "", err
	}
	if err := wf.SetComposer(composer); err != nil {
		return "", err
	}
	return next, nil
}

func policyLabel(p reminder.RecipientPolicy) string {
	if p == reminder.NonOrganizers {
		return "Recipients: non-organizers"
	}
	return "Recipients: all attendees"
}

// templatePreview shows the fixed parts of the reminder around the note.
func templatePreview() string {
	return "Hi {attendee},\nThis is a friendly reminder of your upcoming one-on-one meeting scheduled for {Date} from {Start} to {End}."
}

func noMeetingsText(days int) string {
	return fmt.Sprintf("No Upcoming Meetings Scheduled\n\nYour calendar for the next %s is as clear as the sky on a perfect summer's day!\nEnjoy the freedom to focus on what truly matters to you!", windowLabel(days))
}

// dispatchSummary describes a finished dispatch batch.
func dispatchSummary(results []reminder.DispatchResult) (string, bool) {
	sent, failed := workflow.Summarize(results)
	if failed > 0 {
		return fmt.Sprintf("Sent %d reminders, %d failed", sent, failed), true
	}
	return fmt.Sprintf("Sent %d reminders", sent), false
}
