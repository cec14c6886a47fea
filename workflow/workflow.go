// Package workflow drives the meeting selection and reminder dispatch cycle.
//
// A Workflow is single-actor: the UI calls it from one goroutine at a time
// and it holds no locks.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
)

// State is a stage of the selection cycle.
type State int

const (
	Idle State = iota
	MeetingsLoaded
	SelectionMade
	Dispatching
)

func (s State) String() string {
	switch s {
	case MeetingsLoaded:
		return "meetings loaded"
	case SelectionMade:
		return "selection made"
	case Dispatching:
		return "dispatching"
	default:
		return "idle"
	}
}

var (
	// ErrEmptySelection is returned by Send when no meeting is selected.
	ErrEmptySelection = errors.New("please select at least one meeting")
	// ErrBusy is returned when an action arrives while a dispatch is running.
	ErrBusy = errors.New("a dispatch is already in progress")
)

// SourceError wraps a failure of the Meeting Source.
type SourceError struct {
	Err error
}

func (e *SourceError) Error() string { return fmt.Sprintf("unable to fetch meetings: %v", e.Err) }
func (e *SourceError) Unwrap() error { return e.Err }

// Source lists raw calendar events in [start, end).
type Source interface {
	ListEvents(ctx context.Context, start, end time.Time) ([]meeting.RawEvent, error)
}

// Composer builds the reminders for one meeting.
type Composer interface {
	Compose(m meeting.Meeting, note string) []reminder.Message
}

// Dispatcher sends a batch of reminders.
type Dispatcher interface {
	Dispatch(ctx context.Context, msgs []reminder.Message) []reminder.DispatchResult
}

// Workflow is the selection state machine sitting between the UI and the
// filter, composer and dispatcher.
type Workflow struct {
	source      Source
	composer    Composer
	dispatcher  Dispatcher
	now         func() time.Time
	defaultNote string

	state    State
	window   meeting.Window
	meetings []meeting.Meeting
	selected []bool
	note     string
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithDefaultNote sets the note used when the user leaves the note blank.
func WithDefaultNote(note string) Option {
	return func(w *Workflow) { w.defaultNote = note }
}

// New returns an idle Workflow.
func New(source Source, composer Composer, dispatcher Dispatcher, opts ...Option) *Workflow {
	w := &Workflow{
		source:     source,
		composer:   composer,
		dispatcher: dispatcher,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.note = w.defaultNote
	return w
}

func (w *Workflow) State() State                { return w.state }
func (w *Workflow) Window() meeting.Window      { return w.window }
func (w *Workflow) Note() string                { return w.note }
func (w *Workflow) DefaultNote() string         { return w.defaultNote }
func (w *Workflow) Meetings() []meeting.Meeting { return w.meetings }

// Load fetches the one-on-one meetings of the next days and resets the
// selection. On a source failure the meetings are cleared and the workflow
// returns to Idle.
func (w *Workflow) Load(ctx context.Context, days int) error {
	if w.state == Dispatching {
		return ErrBusy
	}
	window, err := meeting.NewWindow(w.now(), days)
	if err != nil {
		return err
	}

	log.Printf("Workflow: loading meetings from %s to %s", window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
	events, err := w.source.ListEvents(ctx, window.Start, window.End)
	if err != nil {
		w.meetings = nil
		w.selected = nil
		w.state = Idle
		return &SourceError{Err: err}
	}

	w.window = window
	w.meetings = meeting.Filter(events, window)
	w.selected = make([]bool, len(w.meetings))
	w.state = MeetingsLoaded
	log.Printf("Workflow: %d of %d events are one-on-one meetings", len(w.meetings), len(events))
	return nil
}

// Toggle flips the selection of the meeting at index i.
func (w *Workflow) Toggle(i int) error {
	if err := w.requireLoaded(); err != nil {
		return err
	}
	if i < 0 || i >= len(w.meetings) {
		return fmt.Errorf("meeting index %d out of range [0,%d)", i, len(w.meetings))
	}
	w.selected[i] = !w.selected[i]
	w.updateSelectionState()
	return nil
}

// ClearSelection unselects every meeting.
func (w *Workflow) ClearSelection() {
	for i := range w.selected {
		w.selected[i] = false
	}
	w.updateSelectionState()
}

// IsSelected reports whether the meeting at index i is selected.
func (w *Workflow) IsSelected(i int) bool {
	return i >= 0 && i < len(w.selected) && w.selected[i]
}

// Selected returns the selected meetings in table order.
func (w *Workflow) Selected() []meeting.Meeting {
	var out []meeting.Meeting
	for i, m := range w.meetings {
		if w.selected[i] {
			out = append(out, m)
		}
	}
	return out
}

// SetComposer replaces the composer used by later sends.
func (w *Workflow) SetComposer(c Composer) error {
	if w.state == Dispatching {
		return ErrBusy
	}
	w.composer = c
	return nil
}

// SetNote stores the free-text note added to every reminder.
func (w *Workflow) SetNote(note string) {
	w.note = note
}

// Send composes and dispatches reminders for every selected meeting. An
// empty selection is rejected before any mail is sent. Every attendee of
// the batch is attempted; per-attendee failures are reported in the results.
func (w *Workflow) Send(ctx context.Context) ([]reminder.DispatchResult, error) {
	if w.state == Dispatching {
		return nil, ErrBusy
	}
	selected := w.Selected()
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	note := w.note
	if strings.TrimSpace(note) == "" {
		note = w.defaultNote
	}

	w.state = Dispatching
	var results []reminder.DispatchResult
	for _, m := range selected {
		msgs := w.composer.Compose(m, note)
		log.Printf("Workflow: dispatching %d reminders for meeting %s", len(msgs), m.ID)
		results = append(results, w.dispatcher.Dispatch(ctx, msgs)...)
	}

	for i := range w.selected {
		w.selected[i] = false
	}
	w.state = MeetingsLoaded
	return results, nil
}

func (w *Workflow) requireLoaded() error {
	switch w.state {
	case MeetingsLoaded, SelectionMade:
		return nil
	case Dispatching:
		return ErrBusy
	}
	return errors.New("no meetings loaded")
}

func (w *Workflow) updateSelectionState() {
	if w.state == Idle || w.state == Dispatching {
		return
	}
	w.state = MeetingsLoaded
	for _, s := range w.selected {
		if s {
			w.state = SelectionMade
			return
		}
	}
}

// Summarize counts sent and failed results.
func Summarize(results []reminder.DispatchResult) (sent, failed int) {
	for _, r := range results {
		if r.Outcome == reminder.Sent {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}
