// Package calendar is the Meeting Source backed by Google Calendar.
package calendar

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/bassamadnan/meetingmate/meeting"
)

const (
	primaryCalendar = "primary"
	pageSize        = 250
)

// Scope is the OAuth scope the source needs.
const Scope = calendar.CalendarReadonlyScope

// Client lists events of the user's primary calendar.
type Client struct {
	srv *calendar.Service
}

// NewClient creates a Calendar client on top of an authorized HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// ListEvents returns the events of the primary calendar between start and
// end, recurring events expanded into single instances, ordered by start time.
func (c *Client) ListEvents(ctx context.Context, start, end time.Time) ([]meeting.RawEvent, error) {
	call := c.srv.Events.List(primaryCalendar).
		TimeMin(start.UTC().Format(time.RFC3339)).
		TimeMax(end.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(pageSize)

	var events []meeting.RawEvent
	err := call.Pages(ctx, func(page *calendar.Events) error {
		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			events = append(events, toRawEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("events.List failed: %w", err)
	}
	log.Printf("Calendar: fetched %d events", len(events))
	return events, nil
}

// Owner returns the ID of the primary calendar, which is the account address.
func (c *Client) Owner(ctx context.Context) (string, error) {
	entry, err := c.srv.CalendarList.Get(primaryCalendar).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendarList.Get failed: %w", err)
	}
	return entry.Id, nil
}

func toRawEvent(item *calendar.Event) meeting.RawEvent {
	ev := meeting.RawEvent{
		ID:      item.Id,
		Summary: item.Summary,
	}
	ev.Start, ev.AllDay = parseEventTime(item.Start)
	ev.End, _ = parseEventTime(item.End)

	for _, a := range item.Attendees {
		if a == nil {
			continue
		}
		ev.Attendees = append(ev.Attendees, meeting.Attendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			Organizer:   a.Organizer,
		})
	}
	return ev
}

// parseEventTime reads either a timed or an all-day boundary. All-day dates
// are placed at midnight UTC and flagged so renderers keep the calendar date.
func parseEventTime(t *calendar.EventDateTime) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	if t.DateTime != "" {
		parsed, err := time.Parse(time.RFC3339, t.DateTime)
		if err != nil {
			log.Printf("Calendar: could not parse event time %q: %v", t.DateTime, err)
			return time.Time{}, false
		}
		return parsed, false
	}
	if t.Date != "" {
		parsed, err := time.Parse(meeting.DateLayout, t.Date)
		if err != nil {
			log.Printf("Calendar: could not parse event date %q: %v", t.Date, err)
			return time.Time{}, true
		}
		return parsed, true
	}
	return time.Time{}, false
}
