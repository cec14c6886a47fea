// Package reminder composes reminder emails for one-on-one meetings and
// dispatches them through a mail sink.
package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/bassamadnan/meetingmate/meeting"
)

const (
	DefaultSubject   = "Reminder: Upcoming One-on-One Meeting"
	DefaultSignature = "The H7 Accelerator Team"

	timeLayout = "03:04 PM"
)

// RecipientPolicy decides which attendees of a meeting get a reminder.
type RecipientPolicy string

const (
	// AllAttendees addresses every attendee, organizer included.
	AllAttendees RecipientPolicy = "all"
	// NonOrganizers skips attendees flagged as the event organizer.
	NonOrganizers RecipientPolicy = "non-organizer"
)

// ParseRecipientPolicy maps a settings value onto a policy. Empty means AllAttendees.
func ParseRecipientPolicy(s string) (RecipientPolicy, error) {
	switch RecipientPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", AllAttendees:
		return AllAttendees, nil
	case NonOrganizers:
		return NonOrganizers, nil
	}
	return "", fmt.Errorf("unknown recipient policy %q", s)
}

// Message is a composed reminder for a single attendee.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Composer renders reminder bodies. The zero value is usable: it addresses
// all attendees and renders times in UTC. config.Settings.Composer sets
// Location to the configured zone, the local zone when none is set.
type Composer struct {
	Policy    RecipientPolicy
	Subject   string
	Signature string
	Location  *time.Location
}

// Compose returns one message per addressed attendee, in attendee order.
func (c Composer) Compose(m meeting.Meeting, note string) []Message {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	subject := c.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	signature := c.Signature
	if signature == "" {
		signature = DefaultSignature
	}

	seen := make(map[string]bool, len(m.Attendees))
	var msgs []Message
	for _, a := range m.Attendees {
		addr := strings.TrimSpace(a.Email)
		if addr == "" || seen[strings.ToLower(addr)] {
			continue
		}
		if c.Policy == NonOrganizers && a.Organizer {
			continue
		}
		seen[strings.ToLower(addr)] = true
		msgs = append(msgs, Message{
			To:      addr,
			Subject: subject,
			Body:    renderBody(a, m, note, signature, loc),
		})
	}
	return msgs
}

func renderBody(a meeting.Attendee, m meeting.Meeting, note, signature string, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greetingName(a))
	if m.AllDay {
		fmt.Fprintf(&b, "This is a friendly reminder of your upcoming one-on-one meeting scheduled for %s (all day).\n\n",
			m.Date(loc))
	} else {
		fmt.Fprintf(&b, "This is a friendly reminder of your upcoming one-on-one meeting scheduled for %s from %s to %s.\n\n",
			m.Date(loc), m.Start.In(loc).Format(timeLayout), m.End.In(loc).Format(timeLayout))
	}
	if note = strings.TrimSpace(note); note != "" {
		b.WriteString(note)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Best regards,\n%s", signature)
	return b.String()
}

// greetingName prefers the display name, then the local part of the address.
func greetingName(a meeting.Attendee) string {
	if name := strings.TrimSpace(a.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(a.Email, "@"); at > 0 {
		return a.Email[:at]
	}
	return a.Email
}
