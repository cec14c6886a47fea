package meeting

import "time"

// DateLayout is the date format shown to users.
const DateLayout = "2006-01-02"

// Attendee is a single participant of a calendar event.
type Attendee struct {
	Email       string
	DisplayName string
	Organizer   bool
}

// RawEvent is a calendar event as returned by the Meeting Source, already
// mapped out of the API representation. All-day events carry their calendar
// dates at midnight UTC and set AllDay.
type RawEvent struct {
	ID        string
	Summary   string
	Start     time.Time
	End       time.Time
	AllDay    bool
	Attendees []Attendee
}

// Meeting is a one-on-one meeting: an event with exactly two attendees.
type Meeting struct {
	ID        string
	Summary   string
	Start     time.Time
	End       time.Time
	AllDay    bool
	Attendees []Attendee
}

// Date returns the meeting date in loc. All-day meetings keep their calendar
// date whatever the location.
func (m Meeting) Date(loc *time.Location) string {
	if m.AllDay {
		return m.Start.UTC().Format(DateLayout)
	}
	return m.Start.In(loc).Format(DateLayout)
}

// Emails returns the attendee addresses in source order.
func (m Meeting) Emails() []string {
	emails := make([]string, 0, len(m.Attendees))
	for _, a := range m.Attendees {
		emails = append(emails, a.Email)
	}
	return emails
}
