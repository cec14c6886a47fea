package reminder

import (
	"context"
	"fmt"
	"log"
)

// MailSink sends a single plain-text email.
type MailSink interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Outcome is the result of a single send attempt.
type Outcome int

const (
	Sent Outcome = iota
	Failed
)

func (o Outcome) String() string {
	if o == Sent {
		return "sent"
	}
	return "failed"
}

// DispatchResult records what happened to one attendee's reminder.
type DispatchResult struct {
	AttendeeEmail string
	Outcome       Outcome
	Reason        string
}

// Dispatcher sends composed reminders one by one. A failure for one
// attendee never stops the remaining sends and nothing is retried.
type Dispatcher struct {
	sink     MailSink
	notifier Notifier
}

// NewDispatcher returns a Dispatcher. A nil notifier logs notices.
func NewDispatcher(sink MailSink, notifier Notifier) *Dispatcher {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Dispatcher{sink: sink, notifier: notifier}
}

// Dispatch attempts every message exactly once, in order.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []Message) []DispatchResult {
	results := make([]DispatchResult, 0, len(msgs))
	for _, msg := range msgs {
		err := d.sink.Send(ctx, msg.To, msg.Subject, msg.Body)
		if err != nil {
			log.Printf("Dispatcher: send to %s failed: %v", msg.To, err)
			results = append(results, DispatchResult{AttendeeEmail: msg.To, Outcome: Failed, Reason: err.Error()})
			d.notifier.Notify(Notice{
				Level: LevelError,
				Text:  fmt.Sprintf("An error occurred while sending email to %s: %v", msg.To, err),
			})
			continue
		}
		log.Printf("Dispatcher: reminder sent to %s", msg.To)
		results = append(results, DispatchResult{AttendeeEmail: msg.To, Outcome: Sent})
		d.notifier.Notify(Notice{
			Level: LevelSuccess,
			Text:  fmt.Sprintf("Reminder email sent to %s", msg.To),
		})
	}
	return results
}
