// Package meeting holds the typed meeting model and the one-on-one filter.
package meeting

import (
	"fmt"
	"time"
)

// oneOnOneAttendees is the attendee count of a one-on-one meeting.
const oneOnOneAttendees = 2

// WindowChoices are the look-ahead lengths, in days, a user can pick from.
var WindowChoices = []int{1, 7, 15, 30}

// Window is the half-open time span [Start, End) meetings are fetched for.
type Window struct {
	Start time.Time
	End   time.Time
	Days  int
}

// ValidWindow reports whether days is one of WindowChoices.
func ValidWindow(days int) bool {
	for _, d := range WindowChoices {
		if d == days {
			return true
		}
	}
	return false
}

// NewWindow returns the window starting at now (in UTC) and lasting days.
func NewWindow(now time.Time, days int) (Window, error) {
	if !ValidWindow(days) {
		return Window{}, fmt.Errorf("look-ahead of %d days is not one of %v", days, WindowChoices)
	}
	start := now.UTC()
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, days),
		Days:  days,
	}, nil
}

// Contains reports whether the event overlaps the window. An event without
// a positive duration is treated as an instant.
func (w Window) Contains(ev RawEvent) bool {
	if !ev.End.After(ev.Start) {
		return !ev.Start.Before(w.Start) && ev.Start.Before(w.End)
	}
	return ev.Start.Before(w.End) && ev.End.After(w.Start)
}

// Filter keeps the one-on-one meetings of events that fall inside window.
// The relative order of events is preserved.
func Filter(events []RawEvent, window Window) []Meeting {
	meetings := []Meeting{}
	for _, ev := range events {
		if len(ev.Attendees) != oneOnOneAttendees {
			continue
		}
		if ev.Start.IsZero() || !window.Contains(ev) {
			continue
		}
		attendees := make([]Attendee, len(ev.Attendees))
		copy(attendees, ev.Attendees)
		meetings = append(meetings, Meeting{
			ID:        ev.ID,
			Summary:   ev.Summary,
			Start:     ev.Start,
			End:       ev.End,
			AllDay:    ev.AllDay,
			Attendees: attendees,
		})
	}
	return meetings
}
